package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrosousa110490/new-sql/internal/query"
)

func samplePage() query.Page {
	return query.Page{
		Columns:    []string{"id", "name"},
		Rows:       [][]any{{int64(1), "alice"}, {int64(2), nil}},
		TotalCount: 2,
		Page:       0,
		PageSize:   100,
	}
}

func TestPageFooter(t *testing.T) {
	tests := []struct {
		name string
		pg   query.Page
		want string
	}{
		{
			name: "counted first page",
			pg:   query.Page{Rows: make([][]any, 1000), TotalCount: 5230, Page: 0, PageSize: 1000},
			want: "(rows 1-1000 of 5230)",
		},
		{
			name: "counted later page",
			pg:   query.Page{Rows: make([][]any, 230), TotalCount: 5230, Page: 5, PageSize: 1000},
			want: "(rows 5001-5230 of 5230)",
		},
		{
			name: "unknown total",
			pg:   query.Page{Rows: make([][]any, 42), TotalCount: -1, PageSize: 1000},
			want: "(42 rows)",
		},
		{
			name: "pagination disabled",
			pg:   query.Page{Rows: make([][]any, 3), TotalCount: 3, PageSize: 0},
			want: "(3 rows)",
		},
		{
			name: "empty result",
			pg:   query.Page{TotalCount: 0, PageSize: 1000},
			want: "(0 rows)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageFooter(tt.pg))
		})
	}
}

func TestRenderTableFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPage(&buf, samplePage(), "table"))

	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "NULL")
	assert.Contains(t, out, "(rows 1-2 of 2)")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPage(&buf, samplePage(), "json"))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "alice", decoded[0]["name"])
	assert.Nil(t, decoded[1]["name"])
	assert.NotContains(t, buf.String(), "rows 1-2", "footer is table-only")
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	pg := query.Page{
		Columns: []string{"id", "note"},
		Rows:    [][]any{{int64(1), `say "hi", ok`}},
	}
	require.NoError(t, renderPage(&buf, pg, "csv"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,note", lines[0])
	assert.Equal(t, `1,"say ""hi"", ok"`, lines[1])
}

func TestRenderMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderPage(&buf, samplePage(), "md"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "| id | name |", lines[0])
	assert.Equal(t, "| --- | --- |", lines[1])
	assert.Equal(t, "| 1 | alice |", lines[2])
	assert.Equal(t, "| 2 | NULL |", lines[3])
}

func TestRenderEmptyResult(t *testing.T) {
	var buf bytes.Buffer
	pg := query.Page{Columns: []string{"id"}, TotalCount: 0, PageSize: 100}
	require.NoError(t, renderPage(&buf, pg, "table"))
	assert.Equal(t, "(0 rows)\n", buf.String())
}

func TestEscapeCSV(t *testing.T) {
	tests := []struct{ in, want string }{
		{"plain", "plain"},
		{"a,b", `"a,b"`},
		{`quote"inside`, `"quote""inside"`},
		{"line\nbreak", "\"line\nbreak\""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeCSV(tt.in), tt.in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	long := strings.Repeat("x", 80)
	got := truncate(long, 60)
	assert.Len(t, got, 60)
	assert.True(t, strings.HasSuffix(got, "..."))
}
