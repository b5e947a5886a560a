// Package commands implements the newsql subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leandrosousa110490/new-sql/internal/config"
	"github.com/leandrosousa110490/new-sql/internal/engine"
	"github.com/leandrosousa110490/new-sql/internal/events"
	"github.com/leandrosousa110490/new-sql/internal/query"
	"github.com/leandrosousa110490/new-sql/internal/registry"
	"github.com/leandrosousa110490/new-sql/internal/session"
	"github.com/leandrosousa110490/new-sql/internal/state"
)

type configKey struct{}

type cmdConfig struct {
	cfg    *config.Config
	logger *slog.Logger
}

// SetConfig attaches the loaded configuration and logger to the
// command's context. Called from the root PersistentPreRun with the
// executing command; cobra has already copied the root context onto it
// by then, so the value must be set here and not on the root.
func SetConfig(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) {
	cmd.SetContext(context.WithValue(cmd.Context(), configKey{}, &cmdConfig{cfg: cfg, logger: logger}))
}

// configFrom returns the configuration attached by SetConfig, or
// defaults when the command runs outside the root (tests).
func configFrom(cmd *cobra.Command) (*config.Config, *slog.Logger) {
	if v, ok := cmd.Context().Value(configKey{}).(*cmdConfig); ok {
		return v.cfg, v.logger
	}
	return &config.Config{
		StatePath: config.DefaultStateFile,
		PageSize:  config.DefaultPageSize,
		Format:    config.DefaultFormat,
	}, slog.New(slog.DiscardHandler)
}

// Workbench bundles the open resources of one interactive session.
type Workbench struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Store    *state.SQLiteStore
	Registry *registry.Registry
	Session  *session.Context
	Runner   *query.Runner
	Notifier *events.Notifier
}

// openWorkbench opens the engine and state store and wires the
// registry, session and runner together. Definitions found in the
// connections file are merged into the store before anything runs.
func openWorkbench(cmd *cobra.Command) (*Workbench, error) {
	cfg, logger := configFrom(cmd)
	ctx := cmd.Context()

	eng, err := engine.Open(ctx, engine.Config{Path: cfg.DatabasePath, Logger: logger})
	if err != nil {
		return nil, err
	}

	store := state.NewSQLiteStore(logger)
	if err := os.MkdirAll(filepath.Dir(cfg.StatePath), 0o755); err != nil {
		_ = eng.Close()
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	if err := store.Open(cfg.StatePath); err != nil {
		_ = eng.Close()
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		_ = eng.Close()
		return nil, err
	}

	reg := registry.New(eng, store, logger)
	if defs, err := config.LoadConnectionsFile(cfg.ConnectionsFile); err != nil {
		logger.Warn("skipping connections file", "error", err)
	} else {
		for _, def := range defs {
			if err := reg.Add(def); err != nil {
				logger.Warn("skipping connection from file", "name", def.Name, "error", err)
			}
		}
	}

	sess := session.NewContext()
	notifier := events.New()
	runner := query.NewRunner(eng, reg, sess, notifier, logger)
	reg.OnDetach(runner.ConnectionDetached)

	return &Workbench{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Store:    store,
		Registry: reg,
		Session:  sess,
		Runner:   runner,
		Notifier: notifier,
	}, nil
}

// Close releases the workbench's resources.
func (w *Workbench) Close() {
	if w.Store != nil {
		_ = w.Store.Close()
	}
	if w.Engine != nil {
		_ = w.Engine.Close()
	}
}
