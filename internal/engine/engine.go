// Package engine wraps the embedded DuckDB database: executing SQL,
// listing catalogs, and attaching external data sources through
// DuckDB's mysql and postgres extensions.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver

	"github.com/leandrosousa110490/new-sql/internal/query"
)

// Engine owns the single DuckDB connection of a session.
type Engine struct {
	db     *sql.DB
	logger *slog.Logger
}

// Config holds engine configuration.
type Config struct {
	// Path is the DuckDB database file (empty for in-memory).
	Path string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Open opens the DuckDB database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping duckdb: %w", err)
	}

	logger.Debug("duckdb opened", "path", path)
	return &Engine{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	e.logger.Debug("closing duckdb")
	return e.db.Close()
}

// Exec executes a statement that returns no rows.
func (e *Engine) Exec(ctx context.Context, sqlStr string) error {
	if e.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if _, err := e.db.ExecContext(ctx, sqlStr); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query executes sqlStr and materializes the full result. Engine error
// messages are preserved verbatim for the user.
func (e *Engine) Query(ctx context.Context, sqlStr string) (query.Result, error) {
	if e.db == nil {
		return query.Result{}, fmt.Errorf("database connection not established")
	}

	rows, err := e.db.QueryContext(ctx, sqlStr)
	if err != nil {
		return query.Result{}, err
	}
	defer func() { _ = rows.Close() }()

	return materialize(rows)
}

func materialize(rows *sql.Rows) (query.Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return query.Result{}, err
	}

	result := query.Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return query.Result{}, err
		}
		for i, v := range values {
			// Convert []byte to string for readability.
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, err
	}
	return result, nil
}

// Ensure Engine satisfies the pipeline's executor contract.
var _ query.Executor = (*Engine)(nil)
