package engine

import (
	"context"
	"fmt"

	"github.com/leandrosousa110490/new-sql/internal/session"
)

// systemSchemas are filtered out of catalog listings; the original
// sources expose the same set across mysql and duckdb attachments.
var systemSchemas = map[string]struct{}{
	"information_schema": {},
	"pg_catalog":         {},
	"mysql":              {},
	"performance_schema": {},
	"sys":                {},
}

// SchemasOf lists the user schemas visible under a connection. Pass
// session.LocalName for the primary embedded database.
func (e *Engine) SchemasOf(ctx context.Context, connection string) ([]string, error) {
	var q string
	if connection == session.LocalName {
		q = "SELECT schema_name FROM information_schema.schemata WHERE catalog_name = current_database()"
	} else {
		q = fmt.Sprintf("SELECT schema_name FROM %s.information_schema.schemata", connection)
	}

	res, err := e.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas of %s: %w", connection, err)
	}

	var schemas []string
	for _, row := range res.Rows {
		name, ok := row[0].(string)
		if !ok {
			continue
		}
		if _, system := systemSchemas[name]; system {
			continue
		}
		schemas = append(schemas, name)
	}
	return schemas, nil
}

// TablesOf lists the base tables of a schema under a connection, for
// completion and tree listings.
func (e *Engine) TablesOf(ctx context.Context, connection, schema string) ([]string, error) {
	var q string
	if connection == session.LocalName {
		q = fmt.Sprintf("SELECT table_name FROM information_schema.tables WHERE table_schema = '%s' ORDER BY table_name", schema)
	} else {
		q = fmt.Sprintf("SELECT table_name FROM %s.information_schema.tables WHERE table_schema = '%s' ORDER BY table_name", connection, schema)
	}

	res, err := e.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables of %s.%s: %w", connection, schema, err)
	}

	var tables []string
	for _, row := range res.Rows {
		if name, ok := row[0].(string); ok {
			tables = append(tables, name)
		}
	}
	return tables, nil
}
