// Package engine is the embeddable entry point (spec §6 "executeSql",
// §8): it owns the table/UDF registry, wires the planner and executor
// together through row.Context.PlanAndRun (breaking the import cycle
// plan/exec would otherwise have with row, see DESIGN.md), and attaches
// logging, tracing, cancellation and a query ID to every run.
package engine

import (
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
	uuid "github.com/satori/go.uuid"

	"github.com/tessera-sql/sqlengine/ast"
	"github.com/tessera-sql/sqlengine/cancel"
	"github.com/tessera-sql/sqlengine/exec"
	"github.com/tessera-sql/sqlengine/parser"
	"github.com/tessera-sql/sqlengine/plan"
	"github.com/tessera-sql/sqlengine/row"
	"github.com/tessera-sql/sqlengine/udf"
)

// Engine holds the registries an embedder populates once (tables,
// user-defined functions) and reuses across many ExecuteSQL calls.
type Engine struct {
	Config    *Config
	Logger    *logrus.Logger
	Tracer    opentracing.Tracer
	tables    map[string]row.DataSource
	functions map[string]udf.Function
}

// New builds an Engine with no registered tables or functions, a
// no-op tracer and a logrus logger at warn level, the teacher's own
// default verbosity for library consumers.
func New(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return &Engine{
		Config:    cfg,
		Logger:    logger,
		Tracer:    opentracing.NoopTracer{},
		tables:    make(map[string]row.DataSource),
		functions: make(map[string]udf.Function),
	}
}

// RegisterTable exposes ds under name to subsequent queries.
func (e *Engine) RegisterTable(name string, ds row.DataSource) {
	e.tables[name] = ds
}

// RegisterFunction exposes fn under name (case-insensitively, like
// every other callable family) to subsequent queries, per spec §6
// "caller-supplied functions".
func (e *Engine) RegisterFunction(name string, fn udf.Function) {
	e.functions[strings.ToUpper(name)] = fn
}

// Options carries the per-call knobs ExecuteSQL accepts beyond the
// query text itself (spec §6 "executeSql({query, functions, signal})").
// Functions here are merged over (and take precedence on name clash
// with) the Engine's registered functions, for a one-off override.
type Options struct {
	Query     string
	Functions map[string]udf.Function
	Signal    cancel.Handle
}

// Result is the public handle an ExecuteSQL caller pulls rows from. It
// closes over the query's internal row.Context so callers never need to
// construct or thread one themselves.
type Result struct {
	iter row.Iter
	ctx  *row.Context
}

// Next returns the next output row, or (nil, nil) at end of stream.
func (res *Result) Next() (*row.Row, error) { return res.iter.Next(res.ctx) }

// Close releases any resources held by the plan's operators. Safe to
// call even if Next was never called to exhaustion.
func (res *Result) Close() error { return res.iter.Close(res.ctx) }

// QueryID is the UUID minted for this run, present in every log line
// and trace span it produced.
func (res *Result) QueryID() string { return res.ctx.QueryID }

// ExecuteSQL parses, plans and begins executing query, returning a lazy
// Result the caller pulls rows from (spec §6). Planning happens eagerly
// (parse + validate), rows stream lazily thereafter.
func (e *Engine) ExecuteSQL(opts Options) (*Result, error) {
	stmt, err := parser.ParseSql(parser.Options{Query: opts.Query, Functions: e.mergedFunctions(opts.Functions)})
	if err != nil {
		return nil, err
	}

	signal := opts.Signal
	if signal == nil {
		signal = cancel.None
	}
	id, err := uuid.NewV4()
	queryID := ""
	if err == nil {
		queryID = id.String()
	}

	ctx := &row.Context{
		QueryID:           queryID,
		Tables:            e.tables,
		Functions:         e.mergedFunctions(opts.Functions),
		Signal:            signal,
		Logger:            e.Logger.WithField("query_id", queryID),
		Tracer:            e.Tracer,
		NullsFirstDefault: e.Config.NullsFirstDefault,
	}
	ctx.PlanAndRun = func(rc *row.Context, s *ast.SelectStatement) (row.Iter, error) {
		p, err := plan.Build(s)
		if err != nil {
			return nil, err
		}
		return exec.Build(p, rc)
	}

	e.Logger.WithField("query_id", queryID).Debug("query starting")
	p, err := plan.Build(stmt)
	if err != nil {
		e.Logger.WithField("query_id", queryID).WithError(err).Warn("plan failed")
		return nil, err
	}
	it, err := exec.Build(p, ctx)
	if err != nil {
		e.Logger.WithField("query_id", queryID).WithError(err).Warn("exec build failed")
		return nil, err
	}
	traced := &tracedIter{inner: it, ctx: ctx, queryID: queryID, logger: e.Logger}
	return &Result{iter: traced, ctx: ctx}, nil
}

func (e *Engine) mergedFunctions(override map[string]udf.Function) map[string]udf.Function {
	if len(override) == 0 {
		return e.functions
	}
	merged := make(map[string]udf.Function, len(e.functions)+len(override))
	for k, v := range e.functions {
		merged[k] = v
	}
	for k, v := range override {
		merged[strings.ToUpper(k)] = v
	}
	return merged
}

// tracedIter wraps the top-level row.Iter with an opentracing span per
// Next call and logs query completion at Debug and errors at Warn; a
// cancelled query ends its stream and is logged as finished (spec §8
// "the engine logs query start/finish/error; nothing logs from the hot
// expression-evaluation path").
type tracedIter struct {
	inner   row.Iter
	ctx     *row.Context
	queryID string
	logger  *logrus.Logger
	rows    int64
	done    bool
}

func (it *tracedIter) Next(ctx *row.Context) (*row.Row, error) {
	span := it.ctx.Tracer.StartSpan("row.Next")
	defer span.Finish()

	r, err := it.inner.Next(ctx)
	if err != nil {
		it.logger.WithField("query_id", it.queryID).WithError(err).Warn("query failed")
		return nil, err
	}
	if r == nil && !it.done {
		it.done = true
		it.logger.WithField("query_id", it.queryID).WithField("rows", it.rows).Debug("query finished")
		return nil, nil
	}
	if r != nil {
		it.rows++
	}
	return r, nil
}

func (it *tracedIter) Close(ctx *row.Context) error { return it.inner.Close(ctx) }
