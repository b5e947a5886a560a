package state

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a named connection does not exist.
var ErrNotFound = errors.New("connection not found")

// SaveConnection inserts or replaces a connection definition.
func (s *SQLiteStore) SaveConnection(def ConnectionDef) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO connections
			(name, type, host, port, database, user, password, ssl_ca, ssl_cert, ssl_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		def.Name, def.Type, def.Host, def.Port, def.Database,
		def.User, def.Password, def.SSLCA, def.SSLCert, def.SSLKey,
	)
	if err != nil {
		return fmt.Errorf("failed to save connection %s: %w", def.Name, err)
	}
	return nil
}

// DeleteConnection removes a connection definition.
func (s *SQLiteStore) DeleteConnection(name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.Exec("DELETE FROM connections WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

// ListConnections returns all saved definitions in name order.
func (s *SQLiteStore) ListConnections() ([]ConnectionDef, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(`
		SELECT name, type, host, port, database, user, password, ssl_ca, ssl_cert, ssl_key
		FROM connections ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var defs []ConnectionDef
	for rows.Next() {
		var d ConnectionDef
		if err := rows.Scan(&d.Name, &d.Type, &d.Host, &d.Port, &d.Database,
			&d.User, &d.Password, &d.SSLCA, &d.SSLCert, &d.SSLKey); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// GetConnection returns one definition by name.
func (s *SQLiteStore) GetConnection(name string) (*ConnectionDef, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var d ConnectionDef
	err := s.db.QueryRow(`
		SELECT name, type, host, port, database, user, password, ssl_ca, ssl_cert, ssl_key
		FROM connections WHERE name = ?`, name).
		Scan(&d.Name, &d.Type, &d.Host, &d.Port, &d.Database,
			&d.User, &d.Password, &d.SSLCA, &d.SSLCert, &d.SSLKey)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection %s: %w", name, err)
	}
	return &d, nil
}
