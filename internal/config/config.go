// Package config provides configuration management for the newsql CLI.
// Precedence (highest to lowest): flags > env vars > config file >
// defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Default values.
const (
	DefaultStateFile       = ".newsql/state.db"
	DefaultConnectionsFile = ".newsql/connections.yaml"
	DefaultPageSize        = 1000
	DefaultFormat          = "table"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "newsql.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "newsql.yml"

// envPrefix is the prefix for environment variable overrides,
// e.g. NEWSQL_PAGE_SIZE=500.
const envPrefix = "NEWSQL_"

// Config holds all CLI configuration options.
type Config struct {
	// DatabasePath is the DuckDB database file (empty for in-memory).
	DatabasePath string `koanf:"database"`
	// StatePath is the SQLite state database (connections, history).
	StatePath string `koanf:"state_path"`
	// ConnectionsFile optionally seeds connection definitions from a
	// yaml file in addition to the state store.
	ConnectionsFile string `koanf:"connections_file"`
	// PageSize is the default page size; zero disables pagination.
	PageSize int `koanf:"page_size"`
	// Format is the default output format: table, json, csv, md.
	Format  string `koanf:"format"`
	Verbose bool   `koanf:"verbose"`
}

// Load loads configuration. cfgFile may be empty, in which case
// newsql.yaml / newsql.yml in the working directory are tried. flags
// may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database":         "",
		"state_path":       DefaultStateFile,
		"connections_file": DefaultConnectionsFile,
		"page_size":        DefaultPageSize,
		"format":           DefaultFormat,
		"verbose":          false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// NEWSQL_PAGE_SIZE=500 -> page_size=500
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flag names use dashes (--page-size); config keys use underscores.
	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > newsql.yaml > newsql.yml.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}
