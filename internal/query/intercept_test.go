package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrosousa110490/new-sql/internal/session"
)

// fakeCatalog maps connection name -> schemas, with a fixed probe
// order for attached connections.
type fakeCatalog struct {
	order   []string
	schemas map[string][]string
	errs    map[string]error
	probed  []string
}

func (f *fakeCatalog) AttachedConnections(_ context.Context) []string {
	return f.order
}

func (f *fakeCatalog) SchemasOf(_ context.Context, connection string) ([]string, error) {
	f.probed = append(f.probed, connection)
	if err := f.errs[connection]; err != nil {
		return nil, err
	}
	return f.schemas[connection], nil
}

func TestInterceptConsumesUse(t *testing.T) {
	sess := session.NewContext()
	cat := &fakeCatalog{
		order:   []string{"mysrv"},
		schemas: map[string][]string{"mysrv": {"sales"}},
	}

	remaining, switches := Intercept(context.Background(), []string{"USE sales", "SELECT * FROM t"}, sess, cat)

	assert.Equal(t, []string{"SELECT * FROM t"}, remaining)
	require.Len(t, switches, 1)
	assert.Equal(t, "sales", sess.Schema.String())
	assert.Equal(t, "mysrv", sess.Connection.String())
}

func TestInterceptProbesLocalFirst(t *testing.T) {
	sess := session.NewContext()
	// Both local and an attached connection expose "sales"; local wins.
	cat := &fakeCatalog{
		order: []string{"mysrv"},
		schemas: map[string][]string{
			session.LocalName: {"sales"},
			"mysrv":           {"sales"},
		},
	}

	_, _ = Intercept(context.Background(), []string{"USE sales"}, sess, cat)

	assert.True(t, sess.Connection.IsLocal())
	assert.Equal(t, []string{session.LocalName}, cat.probed)
}

func TestInterceptProbeOrderAndFirstMatch(t *testing.T) {
	sess := session.NewContext()
	cat := &fakeCatalog{
		order: []string{"a", "b", "c"},
		schemas: map[string][]string{
			"b": {"reports"},
			"c": {"reports"},
		},
	}

	_, _ = Intercept(context.Background(), []string{"USE reports"}, sess, cat)

	assert.Equal(t, "b", sess.Connection.String())
	assert.Equal(t, []string{session.LocalName, "a", "b"}, cat.probed)
}

func TestInterceptUnknownSchemaAssumedLocal(t *testing.T) {
	sess := session.NewContext()
	cat := &fakeCatalog{order: []string{"mysrv"}}

	_, switches := Intercept(context.Background(), []string{"USE nowhere"}, sess, cat)

	require.Len(t, switches, 1)
	assert.True(t, sess.Connection.IsLocal())
	assert.Equal(t, "nowhere", sess.Schema.String())
}

func TestInterceptSkipsFailingConnections(t *testing.T) {
	sess := session.NewContext()
	cat := &fakeCatalog{
		order:   []string{"down", "up"},
		schemas: map[string][]string{"up": {"sales"}},
		errs:    map[string]error{"down": assert.AnError},
	}

	_, _ = Intercept(context.Background(), []string{"USE sales"}, sess, cat)

	assert.Equal(t, "up", sess.Connection.String())
}

func TestInterceptCaseInsensitiveKeyword(t *testing.T) {
	for _, stmt := range []string{"use sales", "Use sales", "USE\tsales"} {
		sess := session.NewContext()
		remaining, switches := Intercept(context.Background(), []string{stmt}, sess, nil)
		assert.Empty(t, remaining, stmt)
		assert.Len(t, switches, 1, stmt)
		assert.Equal(t, "sales", sess.Schema.String(), stmt)
	}
}

func TestInterceptNotAUseStatement(t *testing.T) {
	tests := []string{
		"USERS",                    // no whitespace after keyword
		"USER_TABLE selected",      // different word
		"SELECT * FROM use_counts", // USE not a prefix
		"USE",                      // no target
		"USE   ",                   // blank target
	}

	for _, stmt := range tests {
		sess := session.NewContext()
		remaining, switches := Intercept(context.Background(), []string{stmt}, sess, nil)
		assert.Equal(t, []string{stmt}, remaining, stmt)
		assert.Empty(t, switches, stmt)
		assert.True(t, sess.IsDefault(), stmt)
	}
}

func TestInterceptTargetTruncation(t *testing.T) {
	sess := session.NewContext()

	_, switches := Intercept(context.Background(), []string{"USE sales\nSELECT 1"}, sess, nil)

	require.Len(t, switches, 1)
	assert.Equal(t, "sales", sess.Schema.String())
}

func TestInterceptMultipleSwitchesLastWins(t *testing.T) {
	sess := session.NewContext()
	cat := &fakeCatalog{
		order: []string{"mysrv"},
		schemas: map[string][]string{
			"mysrv": {"sales", "archive"},
		},
	}

	remaining, switches := Intercept(context.Background(), []string{"USE sales", "USE archive"}, sess, cat)

	assert.Empty(t, remaining)
	require.Len(t, switches, 2)
	assert.Equal(t, "archive", sess.Schema.String())
	assert.Equal(t, "mysrv", sess.Connection.String())
}
