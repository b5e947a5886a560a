package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrosousa110490/new-sql/internal/testutil"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate())
	return store
}

func sampleDef(name string) ConnectionDef {
	return ConnectionDef{
		Name:     name,
		Type:     "mysql",
		Host:     "db.example.com",
		Port:     3306,
		Database: "shop",
		User:     "reader",
		Password: "s3cret",
	}
}

func TestConnectionRoundTrip(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveConnection(sampleDef("mysrv")))

	got, err := store.GetConnection("mysrv")
	require.NoError(t, err)
	assert.Equal(t, sampleDef("mysrv"), *got)
}

func TestSaveConnectionReplaces(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveConnection(sampleDef("mysrv")))

	updated := sampleDef("mysrv")
	updated.Host = "replica.example.com"
	require.NoError(t, store.SaveConnection(updated))

	got, err := store.GetConnection("mysrv")
	require.NoError(t, err)
	assert.Equal(t, "replica.example.com", got.Host)

	defs, err := store.ListConnections()
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestListConnectionsOrdered(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, store.SaveConnection(sampleDef(name)))
	}

	defs, err := store.ListConnections()
	require.NoError(t, err)
	require.Len(t, defs, 3)
	assert.Equal(t, "alpha", defs[0].Name)
	assert.Equal(t, "mid", defs[1].Name)
	assert.Equal(t, "zeta", defs[2].Name)
}

func TestGetConnectionNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetConnection("nowhere")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteConnection(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.SaveConnection(sampleDef("mysrv")))
	require.NoError(t, store.DeleteConnection("mysrv"))

	_, err := store.GetConnection("mysrv")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteConnection("mysrv"), ErrNotFound)
}

func TestAppendHistoryFillsDefaults(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AppendHistory(HistoryEntry{
		SQL:        "SELECT 1",
		Connection: "local",
		Schema:     "main",
		RowCount:   1,
		TotalCount: 1,
		Duration:   42 * time.Millisecond,
	}))

	entries, err := store.RecentHistory(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.NotEmpty(t, e.ID)
	assert.False(t, e.StartedAt.IsZero())
	assert.Equal(t, "SELECT 1", e.SQL)
	assert.Equal(t, 42*time.Millisecond, e.Duration)
}

func TestRecentHistoryNewestFirst(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.AppendHistory(HistoryEntry{
			SQL:       "SELECT " + string(rune('0'+i)),
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.RecentHistory(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "SELECT 2", entries[0].SQL)
	assert.Equal(t, "SELECT 1", entries[1].SQL)
}

func TestRecentHistoryRecordsFailures(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.AppendHistory(HistoryEntry{
		SQL:        "SELECT * FROM nope",
		TotalCount: -1,
		Error:      "Catalog Error: Table with name nope does not exist",
	}))

	entries, err := store.RecentHistory(1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "nope")
	assert.Equal(t, int64(-1), entries[0].TotalCount)
}

func TestStoreNotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)

	assert.Error(t, store.SaveConnection(sampleDef("x")))
	_, err := store.ListConnections()
	assert.Error(t, err)
	assert.Error(t, store.AppendHistory(HistoryEntry{SQL: "SELECT 1"}))
}
