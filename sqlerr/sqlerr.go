// Package sqlerr defines the structured error taxonomy raised by every
// phase of the engine (spec §4.7, §7): ParseError during tokenization
// and parsing, ExecutionError during planning and execution. Both carry
// a source position range and, for execution errors, an optional
// 1-based row index.
package sqlerr

import (
	"fmt"

	goerrors "gopkg.in/src-d/go-errors.v1"

	"github.com/tessera-sql/sqlengine/pos"
)

// ParseError is raised by the tokenizer or parser. Parsing fails fast:
// the first ParseError aborts the parse (spec §7).
type ParseError struct {
	Range   pos.Range
	message string
	cause   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (at %d:%d)", e.message, e.Range.Start, e.Range.End)
}

func (e *ParseError) Unwrap() error { return e.cause }

// NewParseError builds a ParseError at r. kind is a go-errors.v1 Kind
// (see Kinds below) instantiated with format args; this mirrors the
// teacher's errors.NewKind / .New pattern (auth/auth.go), with the
// position attached by this wrapper rather than by the Kind itself.
func NewParseError(kind *goerrors.Kind, r pos.Range, args ...interface{}) *ParseError {
	err := kind.New(args...)
	return &ParseError{Range: r, message: err.Error(), cause: err}
}

// ExecutionError is raised while planning or evaluating a query, lazily,
// at the point the caller next reads from the result stream (spec §7).
type ExecutionError struct {
	Range    pos.Range
	RowIndex *int64 // 1-based; nil when not row-scoped
	message  string
	cause    error
}

func (e *ExecutionError) Error() string {
	if e.RowIndex != nil {
		return fmt.Sprintf("%s (at %d:%d, row %d)", e.message, e.Range.Start, e.Range.End, *e.RowIndex)
	}
	return fmt.Sprintf("%s (at %d:%d)", e.message, e.Range.Start, e.Range.End)
}

func (e *ExecutionError) Unwrap() error { return e.cause }

// NewExecutionError builds an ExecutionError at r, optionally scoped to
// rowIndex (pass nil when the error is not associated with a single row).
func NewExecutionError(kind *goerrors.Kind, r pos.Range, rowIndex *int64, args ...interface{}) *ExecutionError {
	err := kind.New(args...)
	return &ExecutionError{Range: r, RowIndex: rowIndex, message: err.Error(), cause: err}
}

// Kinds. Declared once, per the teacher's convention of module-level
// errors.Kind vars (auth/auth.go: ErrNotAuthorized, ErrNoPermission).
var (
	KindUnexpectedChar    = goerrors.NewKind("unexpected character %q")
	KindUnterminatedStr   = goerrors.NewKind("unterminated string literal")
	KindUnterminatedIdent = goerrors.NewKind("unterminated quoted identifier")
	KindInvalidNumber     = goerrors.NewKind("invalid number literal %q")
	KindBigIntParse       = goerrors.NewKind("invalid bigint literal %q")
	KindMustStartWithSelect = goerrors.NewKind("queries must start with SELECT or WITH")

	KindUnexpectedToken = goerrors.NewKind("expected %s, got %s")
	KindExpectedAfter   = goerrors.NewKind("expected %s after %q, got %s")
	KindUnknownFunction = goerrors.NewKind("unknown function %s")
	KindWrongArity      = goerrors.NewKind("function %s expects %s, got %d")
	KindStarNotAllowed  = goerrors.NewKind("* is only allowed as the sole argument to COUNT")
	KindFilterNotAgg    = goerrors.NewKind("FILTER is only allowed on aggregate functions")
	KindAggregateNotAllowed = goerrors.NewKind("aggregate function %s not allowed in %s")

	KindColumnNotFound   = goerrors.NewKind("column %q not found, available columns: %s")
	KindTableNotFound    = goerrors.NewKind("table %q not found")
	KindUnknownCallable  = goerrors.NewKind("unknown function %s")
	KindUnsupportedCast  = goerrors.NewKind("cannot cast %s to %s")
	KindInvalidArgument  = goerrors.NewKind("invalid argument to %s: %s")
	KindStandaloneInterval = goerrors.NewKind("INTERVAL may only be used in a date +/- interval expression")
	KindAggregateMisuse  = goerrors.NewKind("aggregate function used outside of a group context")
	KindJSONParse        = goerrors.NewKind("invalid JSON in %s: %s")
	KindDataSourceContract = goerrors.NewKind("data source %q applied limit/offset without applying the where clause")
)
