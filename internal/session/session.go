// Package session holds the mutable query context of an interactive
// session: which connection and which schema unqualified table names
// resolve against.
package session

// LocalName is the sentinel identifying the primary embedded database.
const LocalName = "local"

// Name is a connection or schema identifier. The zero value refers to
// the primary embedded database.
type Name struct {
	value string
}

// NameOf returns the Name for the given identifier. The literal string
// "local" maps to the local sentinel.
func NameOf(s string) Name {
	if s == LocalName {
		return Name{}
	}
	return Name{value: s}
}

// Local returns the sentinel Name for the primary embedded database.
func Local() Name {
	return Name{}
}

// IsLocal reports whether n refers to the primary embedded database.
func (n Name) IsLocal() bool {
	return n.value == ""
}

// String returns the identifier, or "local" for the sentinel.
func (n Name) String() string {
	if n.value == "" {
		return LocalName
	}
	return n.value
}

// Context is the active query context of a session. Exactly one Context
// exists per interactive session; it is read by every pipeline stage
// and mutated only by the context-switch interceptor and by
// connect/disconnect notifications.
type Context struct {
	Connection Name
	Schema     Name
}

// NewContext returns a context pointing at the primary embedded database.
func NewContext() *Context {
	return &Context{}
}

// IsDefault reports whether the context still points at the primary
// embedded database with no schema selected.
func (c *Context) IsDefault() bool {
	return c.Connection.IsLocal() && c.Schema.IsLocal()
}

// Reset returns the context to the primary embedded database. Called
// when the active connection is detached.
func (c *Context) Reset() {
	c.Connection = Local()
	c.Schema = Local()
}

// TablePrefix returns the qualification prefix for bare table names:
// "connection.schema" for an attached connection, "schema" otherwise.
// Empty when the schema is local (bare names already resolve locally).
func (c *Context) TablePrefix() string {
	if c.Schema.IsLocal() {
		return ""
	}
	if c.Connection.IsLocal() {
		return c.Schema.String()
	}
	return c.Connection.String() + "." + c.Schema.String()
}

// String renders the context as "connection.schema".
func (c *Context) String() string {
	return c.Connection.String() + "." + c.Schema.String()
}
