package query

import (
	"context"
	"strings"

	"github.com/leandrosousa110490/new-sql/internal/session"
)

// Catalog resolves which attached connection, if any, owns a schema.
// Implemented by the connection registry backed by the engine's
// information_schema.
type Catalog interface {
	// AttachedConnections returns the names of currently attached
	// connections in registration order.
	AttachedConnections(ctx context.Context) []string

	// SchemasOf lists the schema names visible under a connection.
	// Use session.LocalName for the primary embedded database.
	SchemasOf(ctx context.Context, connection string) ([]string, error)
}

// Switch records one processed context switch, for reporting to the
// embedding application.
type Switch struct {
	Connection session.Name
	Schema     session.Name
}

// Intercept consumes USE pseudo-statements from stmts, mutating sess
// for each one, and returns the statements that remain to be executed
// together with the switches that were applied, in order.
//
// A statement is a pseudo-statement iff its case-insensitive prefix is
// the keyword USE followed by whitespace. Pseudo-statements are never
// forwarded to the engine.
func Intercept(ctx context.Context, stmts []string, sess *session.Context, cat Catalog) (remaining []string, switches []Switch) {
	for _, stmt := range stmts {
		target, ok := useTarget(stmt)
		if !ok {
			remaining = append(remaining, stmt)
			continue
		}

		sess.Schema = session.NameOf(target)
		sess.Connection = resolveConnection(ctx, target, cat)
		switches = append(switches, Switch{Connection: sess.Connection, Schema: sess.Schema})
	}
	return remaining, switches
}

// useTarget extracts the target name from a USE statement, or reports
// that stmt is not one. The name is truncated at the first semicolon,
// newline or carriage return; the splitter normally removes semicolons
// already, so this mainly protects against embedded newlines.
func useTarget(stmt string) (string, bool) {
	trimmed := strings.TrimSpace(stmt)
	if len(trimmed) < 4 || !strings.EqualFold(trimmed[:3], "USE") {
		return "", false
	}
	rest := trimmed[3:]
	if rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '\r' {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if i := strings.IndexAny(rest, ";\n\r"); i >= 0 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// resolveConnection finds the connection that exposes a schema named
// target by probing the catalog: the primary embedded database first,
// then attached connections in registration order. First match wins;
// when no connection exposes the schema the name is assumed local.
func resolveConnection(ctx context.Context, target string, cat Catalog) session.Name {
	if cat == nil {
		return session.Local()
	}

	if hasSchema(ctx, cat, session.LocalName, target) {
		return session.Local()
	}
	for _, conn := range cat.AttachedConnections(ctx) {
		if hasSchema(ctx, cat, conn, target) {
			return session.NameOf(conn)
		}
	}
	return session.Local()
}

func hasSchema(ctx context.Context, cat Catalog, connection, schema string) bool {
	schemas, err := cat.SchemasOf(ctx, connection)
	if err != nil {
		// A connection whose catalog cannot be listed simply does not
		// claim the schema; resolution falls through to the next one.
		return false
	}
	for _, s := range schemas {
		if s == schema {
			return true
		}
	}
	return false
}
