package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameOf(t *testing.T) {
	assert.True(t, NameOf("local").IsLocal())
	assert.True(t, Local().IsLocal())
	assert.False(t, NameOf("sales").IsLocal())
	assert.Equal(t, "sales", NameOf("sales").String())
	assert.Equal(t, "local", Local().String())
}

func TestNameCaseSensitivity(t *testing.T) {
	// Only the exact sentinel spelling is local.
	assert.False(t, NameOf("Local").IsLocal())
	assert.False(t, NameOf("LOCAL").IsLocal())
}

func TestContextTablePrefix(t *testing.T) {
	tests := []struct {
		name       string
		connection string
		schema     string
		want       string
	}{
		{"default context", "local", "local", ""},
		{"local connection with schema", "local", "sales", "sales"},
		{"attached connection", "mysrv", "sales", "mysrv.sales"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &Context{
				Connection: NameOf(tt.connection),
				Schema:     NameOf(tt.schema),
			}
			assert.Equal(t, tt.want, ctx.TablePrefix())
		})
	}
}

func TestContextReset(t *testing.T) {
	ctx := &Context{Connection: NameOf("mysrv"), Schema: NameOf("sales")}
	assert.False(t, ctx.IsDefault())

	ctx.Reset()
	assert.True(t, ctx.IsDefault())
	assert.Equal(t, "local.local", ctx.String())
}
