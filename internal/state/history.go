package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AppendHistory records one query submission. A zero ID is filled in.
func (s *SQLiteStore) AppendHistory(entry HistoryEntry) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(`
		INSERT INTO query_history
			(id, sql, connection, schema, page, row_count, total_count, duration_ms, error, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.SQL, entry.Connection, entry.Schema, entry.Page,
		entry.RowCount, entry.TotalCount, entry.Duration.Milliseconds(),
		entry.Error, entry.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

// RecentHistory returns the most recent entries, newest first.
func (s *SQLiteStore) RecentHistory(limit int) ([]HistoryEntry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(`
		SELECT id, sql, connection, schema, page, row_count, total_count, duration_ms, error, started_at
		FROM query_history ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var durationMs int64
		if err := rows.Scan(&e.ID, &e.SQL, &e.Connection, &e.Schema, &e.Page,
			&e.RowCount, &e.TotalCount, &durationMs, &e.Error, &e.StartedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
