package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leandrosousa110490/new-sql/internal/state"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "", cfg.DatabasePath)
	assert.Equal(t, DefaultStateFile, cfg.StatePath)
	assert.Equal(t, DefaultConnectionsFile, cfg.ConnectionsFile)
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.False(t, cfg.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 250\nformat: json\n"), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.PageSize)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, DefaultStateFile, cfg.StatePath, "unset keys keep defaults")
}

func TestLoadFindsConfigFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("format: csv\n"), 0o644))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 250\n"), 0o644))
	t.Setenv("NEWSQL_PAGE_SIZE", "500")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.PageSize)
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("page-size", DefaultPageSize, "")
	fs.String("format", DefaultFormat, "")
	return fs
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEWSQL_PAGE_SIZE", "500")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--page-size", "25"}))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.PageSize)
}

func TestLoadUnchangedFlagKeepsLowerLayers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("NEWSQL_FORMAT", "md")

	fs := newFlagSet()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, "md", cfg.Format, "flag defaults must not mask env vars")
}

func TestConnectionsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "connections.yaml")
	defs := []state.ConnectionDef{
		{
			Name:     "mysrv",
			Type:     "mysql",
			Host:     "db.example.com",
			Port:     3306,
			Database: "shop",
			User:     "reader",
			Password: "s3cret",
		},
		{
			Name: "pg",
			Type: "postgres",
			Host: "pg.example.com",
			Port: 5432,
		},
	}

	require.NoError(t, WriteConnectionsFile(path, defs))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "credentials file must not be world-readable")

	got, err := LoadConnectionsFile(path)
	require.NoError(t, err)
	assert.Equal(t, defs, got)
}

func TestLoadConnectionsFileMissing(t *testing.T) {
	defs, err := LoadConnectionsFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, defs)
}

func TestLoadConnectionsFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connections: [\n"), 0o644))

	_, err := LoadConnectionsFile(path)
	assert.Error(t, err)
}
