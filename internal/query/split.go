// Package query implements the context resolution and pagination
// pipeline: a submitted buffer is split into statements, USE
// pseudo-statements are intercepted into the session context, table
// references are qualified against that context, and read queries are
// planned into counted pages before they reach the engine.
package query

import "strings"

// Split splits a raw multi-statement buffer on the ';' separator.
// Each piece is trimmed of surrounding whitespace; pieces that are
// empty after trimming are dropped. Order is preserved.
//
// The split is a plain character split: a ';' inside a string literal
// or comment terminates the statement anyway. This matches the lexical
// model of Qualify, which does not understand literal spans either;
// see TestSplitSemicolonInLiteral.
func Split(buffer string) []string {
	var stmts []string
	for _, piece := range strings.Split(buffer, ";") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		stmts = append(stmts, piece)
	}
	return stmts
}
