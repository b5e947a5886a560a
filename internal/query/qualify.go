package query

import (
	"regexp"
	"strings"

	"github.com/leandrosousa110490/new-sql/internal/session"
)

// tableRef matches a dotted identifier in table position: immediately
// after FROM, JOIN, INTO or UPDATE. Group 1 is the keyword, group 2 the
// identifier.
var tableRef = regexp.MustCompile(`(?i)\b(FROM|JOIN|INTO|UPDATE)\s+([a-zA-Z_][a-zA-Z0-9_.]*)`)

// Qualify rewrites unqualified and partially-qualified table references
// in sql so they resolve against the session context. It is a no-op
// when the active schema is local.
//
// Per matched identifier, by dot count:
//   - bare name: prefixed with connection.schema when an attached
//     connection is active, left alone otherwise;
//   - schema.table: left alone when the schema part is "local" or the
//     reference already starts with the active connection, otherwise
//     promoted to connection.schema.table;
//   - connection.schema.table: treated as fully qualified, untouched.
//
// This is a lexical rewrite, not a parse: it does not know about
// subqueries, aliases, CTE names or string literals, and can misfire
// on a keyword followed by a dotted token inside a literal. See
// TestQualifyStringLiteralMisfire.
func Qualify(sql string, sess *session.Context) string {
	if sess.Schema.IsLocal() {
		return sql
	}

	matches := tableRef.FindAllStringSubmatchIndex(sql, -1)

	// Replace right-to-left so earlier offsets stay valid.
	for i := len(matches) - 1; i >= 0; i-- {
		m := matches[i]
		start, end := m[4], m[5]
		ref := sql[start:end]

		// The identifier must end the token: a following '(' means a
		// table function, a quote means the keyword sat inside other
		// syntax. Same boundary set the reference position accepts.
		if end < len(sql) && !isRefBoundary(sql[end]) {
			continue
		}

		rewritten := qualifyRef(ref, sess)
		if rewritten == ref {
			continue
		}
		sql = sql[:start] + rewritten + sql[end:]
	}
	return sql
}

func isRefBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', ';', ',', ')':
		return true
	}
	return false
}

func qualifyRef(ref string, sess *session.Context) string {
	switch strings.Count(ref, ".") {
	case 0:
		if sess.Connection.IsLocal() {
			// Bare names already resolve against the local database.
			return ref
		}
		return sess.TablePrefix() + "." + ref

	case 1:
		schemaPart := ref[:strings.Index(ref, ".")]
		if schemaPart == session.LocalName {
			// Explicit reference to the primary database.
			return ref
		}
		if sess.Connection.IsLocal() {
			return ref
		}
		if strings.HasPrefix(ref, sess.Connection.String()+".") {
			return ref
		}
		return sess.Connection.String() + "." + ref

	default:
		// Already connection.schema.table.
		return ref
	}
}
