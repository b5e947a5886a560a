// Package state persists workbench state in SQLite: saved connection
// definitions and the query history log.
package state

import "time"

// ConnectionDef is a saved external connection definition. The secret
// is stored alongside the definition, as the original tool did; it is
// never written to logs.
type ConnectionDef struct {
	Name     string
	Type     string // "mysql", "mariadb", "postgres"
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLCA    string
	SSLCert  string
	SSLKey   string
}

// HistoryEntry is one executed query submission.
type HistoryEntry struct {
	ID         string
	SQL        string
	Connection string
	Schema     string
	Page       int
	RowCount   int
	TotalCount int64
	Duration   time.Duration
	Error      string
	StartedAt  time.Time
}

// Store is the persistence contract consumed by the registry and CLI.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	SaveConnection(def ConnectionDef) error
	DeleteConnection(name string) error
	ListConnections() ([]ConnectionDef, error)
	GetConnection(name string) (*ConnectionDef, error)

	AppendHistory(entry HistoryEntry) error
	RecentHistory(limit int) ([]HistoryEntry, error)
}
