// Package function implements the scalar string/math/regex/json/
// date-time families plus the conditional helpers COALESCE/IFNULL/
// NULLIF/GREATEST/LEAST (spec §4.4, SPEC_FULL.md §4), all registered
// through one FunctionRegistry mechanism (SPEC_FULL.md §4
// "FunctionRegistry... generalizes spec §4.4's lookup order into one
// mechanism").
package function

import (
	"strings"

	"github.com/tessera-sql/sqlengine/udf"
	"github.com/tessera-sql/sqlengine/value"
)

// Entry is one registered callable: its arity (validated the same way
// parser.builtinArity validates built-ins) and its implementation.
type Entry struct {
	Arity udf.Arity
	Fn    func(args []value.SqlValue) (value.SqlValue, error)
}

// Registry is a case-insensitive name -> Entry table. Every built-in
// family below owns one Registry; user-defined functions are not kept
// in a Registry: the expression package looks them up as udf.Function
// values in row.Context.Functions, after every built-in family.
type Registry struct {
	entries map[string]Entry
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Entry)}
}

// Register adds or replaces name (case-insensitively).
func (r *Registry) Register(name string, arity udf.Arity, fn func(args []value.SqlValue) (value.SqlValue, error)) {
	r.entries[strings.ToUpper(name)] = Entry{Arity: arity, Fn: fn}
}

// Lookup finds name case-insensitively.
func (r *Registry) Lookup(name string) (Entry, bool) {
	e, ok := r.entries[strings.ToUpper(name)]
	return e, ok
}

func arity(min, max int) udf.Arity { m := max; return udf.Arity{Min: min, Max: &m} }
func variadic(min int) udf.Arity   { return udf.Arity{Min: min} }

// Arity and Variadic are the exported equivalents, for registrations
// from other packages in this family (e.g. expression/function/spatial).
func Arity(min, max int) udf.Arity { return arity(min, max) }
func Variadic(min int) udf.Arity   { return variadic(min) }

// StringFamily, MathFamily, RegexFamily, JSONFamily, DateTimeFamily,
// ConditionalFamily and SpatialFamily are the built-in registries the
// evaluator consults in spec §4.4's fixed lookup order (aggregate
// registry first, handled separately by the expression package, then
// these).
var (
	StringFamily      = NewRegistry()
	MathFamily        = NewRegistry()
	RegexFamily       = NewRegistry()
	JSONFamily        = NewRegistry()
	DateTimeFamily    = NewRegistry()
	ConditionalFamily = NewRegistry()
	SpatialFamily     = NewRegistry()
)
