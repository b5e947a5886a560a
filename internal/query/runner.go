package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/leandrosousa110490/new-sql/internal/events"
	"github.com/leandrosousa110490/new-sql/internal/session"
)

var (
	// ErrInvalidPage is returned when page_number*page_size is
	// negative or overflows.
	ErrInvalidPage = errors.New("invalid page request")

	// ErrBusy is returned when a Run is submitted while another is
	// still in flight on the same session.
	ErrBusy = errors.New("a query is already running in this session")
)

// Result is a fully materialized engine result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Executor runs one SQL string against the engine.
type Executor interface {
	Query(ctx context.Context, sql string) (Result, error)
}

// Page is one bounded, counted slice of a query result. TotalCount is
// the exact row count of the unpaginated query, or -1 when the result
// was not paginated and no further pages exist.
type Page struct {
	Columns    []string
	Rows       [][]any
	TotalCount int64
	Page       int
	PageSize   int
}

// Outcome is the tagged result of one pipeline run. Exactly one of the
// three concrete types is returned; callers switch on the type instead
// of inspecting error messages.
type Outcome interface{ isOutcome() }

// ContextChanged reports that the buffer consisted only of context
// switches; nothing was executed.
type ContextChanged struct {
	Context session.Context
}

// Executed carries the delivered page.
type Executed struct {
	Page Page
}

// Failed carries a terminal error for this run.
type Failed struct {
	Err error
}

func (ContextChanged) isOutcome() {}
func (Executed) isOutcome()       {}
func (Failed) isOutcome()         {}

// Runner drives the pipeline for one session: split, intercept,
// qualify, plan, execute. It owns nothing but references; the session
// context is the only mutable state.
type Runner struct {
	exec     Executor
	catalog  Catalog
	sess     *session.Context
	notifier *events.Notifier
	logger   *slog.Logger

	// One run in flight per session: the interceptor's writes and the
	// qualifier's reads of the session context must not interleave
	// across two pipelines.
	gate *semaphore.Weighted
}

// NewRunner creates a Runner for sess. notifier and logger may be nil.
func NewRunner(exec Executor, catalog Catalog, sess *session.Context, notifier *events.Notifier, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		exec:     exec,
		catalog:  catalog,
		sess:     sess,
		notifier: notifier,
		logger:   logger,
		gate:     semaphore.NewWeighted(1),
	}
}

// Session returns the session context the runner mutates.
func (r *Runner) Session() *session.Context {
	return r.sess
}

// ConnectionDetached resets the session context when the currently
// active connection is detached, so no later run resolves against a
// connection that is no longer attached.
func (r *Runner) ConnectionDetached(name string) {
	if r.sess.Connection.String() == name {
		r.logger.Debug("active connection detached, resetting context", "connection", name)
		r.sess.Reset()
	}
}

// Run executes buffer as one pipeline pass for the requested page.
func (r *Runner) Run(ctx context.Context, buffer string, page, pageSize int) Outcome {
	if !r.gate.TryAcquire(1) {
		return Failed{Err: ErrBusy}
	}
	defer r.gate.Release(1)

	stmts := Split(buffer)
	remaining, switches := Intercept(ctx, stmts, r.sess, r.catalog)
	for _, sw := range switches {
		r.logger.Info("context switched", "connection", sw.Connection.String(), "schema", sw.Schema.String())
		r.notifier.Publish(events.ContextSwitched{
			Connection: sw.Connection.String(),
			Schema:     sw.Schema.String(),
		})
	}

	if len(remaining) == 0 {
		if len(switches) == 0 {
			return Failed{Err: fmt.Errorf("no statements to execute")}
		}
		return ContextChanged{Context: *r.sess}
	}

	sql := Qualify(strings.Join(remaining, "; "), r.sess)

	plan, err := Plan(sql, PageRequest{Page: page, PageSize: pageSize})
	if err != nil {
		return Failed{Err: err}
	}

	pg, err := r.execute(ctx, plan, page, pageSize)
	if err != nil {
		r.notifier.Publish(events.QueryFailed{Message: err.Error()})
		return Failed{Err: err}
	}

	r.notifier.Publish(events.PageReady{
		Page:       pg.Page,
		Rows:       len(pg.Rows),
		Columns:    pg.Columns,
		TotalCount: pg.TotalCount,
	})
	return Executed{Page: pg}
}

// execute runs the planned queries. A failing count query falls back
// silently to the original, unpaginated statement with TotalCount -1:
// not every SELECT/WITH-looking statement nests safely as a count
// subquery.
func (r *Runner) execute(ctx context.Context, plan PagePlan, page, pageSize int) (Page, error) {
	if !plan.Paginated {
		r.notifier.Publish(events.Progress{Phase: events.PhaseExecuting})
		res, err := r.exec.Query(ctx, plan.Query)
		if err != nil {
			return Page{}, err
		}
		return Page{
			Columns:    res.Columns,
			Rows:       res.Rows,
			TotalCount: int64(len(res.Rows)),
			Page:       page,
			PageSize:   pageSize,
		}, nil
	}

	r.notifier.Publish(events.Progress{Phase: events.PhaseCounting})
	total, err := r.count(ctx, plan.CountQuery)
	if err != nil {
		r.logger.Debug("count query failed, falling back to unpaginated execution", "error", err)
		r.notifier.Publish(events.Progress{Phase: events.PhaseExecuting})
		res, execErr := r.exec.Query(ctx, plan.Source)
		if execErr != nil {
			return Page{}, execErr
		}
		return Page{
			Columns:    res.Columns,
			Rows:       res.Rows,
			TotalCount: -1,
			Page:       page,
			PageSize:   pageSize,
		}, nil
	}

	r.notifier.Publish(events.Progress{Phase: events.PhaseExecuting})
	res, err := r.exec.Query(ctx, plan.Query)
	if err != nil {
		return Page{}, err
	}
	return Page{
		Columns:    res.Columns,
		Rows:       res.Rows,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

func (r *Runner) count(ctx context.Context, countQuery string) (int64, error) {
	res, err := r.exec.Query(ctx, countQuery)
	if err != nil {
		return 0, err
	}
	if len(res.Rows) == 0 || len(res.Rows[0]) == 0 {
		return 0, fmt.Errorf("count query returned no rows")
	}
	return toInt64(res.Rows[0][0])
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case uint64:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", v)
	}
}
