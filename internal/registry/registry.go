// Package registry tracks named external connections: their saved
// definitions, whether each is currently attached to the engine, and
// which schemas each one exposes. It is the catalog the query pipeline
// probes when resolving a USE target.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leandrosousa110490/new-sql/internal/engine"
	"github.com/leandrosousa110490/new-sql/internal/query"
	"github.com/leandrosousa110490/new-sql/internal/session"
	"github.com/leandrosousa110490/new-sql/internal/state"
)

// ErrNotAttached is returned when detaching a connection that is not
// attached.
var ErrNotAttached = errors.New("connection not attached")

// DetachListener is notified after a connection is detached, so the
// session owner can reset an active context pointing at it.
type DetachListener func(name string)

// Registry manages connection definitions and attach state.
type Registry struct {
	engine *engine.Engine
	store  state.Store
	logger *slog.Logger

	mu        sync.Mutex
	attached  []string // attach order, drives probe order
	listeners []DetachListener
}

// New creates a registry over the engine and persistence store.
func New(eng *engine.Engine, store state.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{engine: eng, store: store, logger: logger}
}

// OnDetach registers a listener called after every detach.
func (r *Registry) OnDetach(fn DetachListener) {
	r.mu.Lock()
	r.listeners = append(r.listeners, fn)
	r.mu.Unlock()
}

// Add saves a connection definition. The name "local" is reserved for
// the primary embedded database.
func (r *Registry) Add(def state.ConnectionDef) error {
	if def.Name == session.LocalName {
		return fmt.Errorf("connection name %q is reserved", session.LocalName)
	}
	if _, err := extensionType(def.Type); err != nil {
		return err
	}
	if err := r.store.SaveConnection(def); err != nil {
		return err
	}
	r.logger.Info("connection saved", "name", def.Name, "type", def.Type, "host", def.Host)
	return nil
}

// Remove detaches (if needed) and deletes a connection definition.
func (r *Registry) Remove(ctx context.Context, name string) error {
	if r.IsAttached(name) {
		if err := r.Detach(ctx, name); err != nil {
			return err
		}
	}
	return r.store.DeleteConnection(name)
}

// Attach pings the external database with its native driver, then
// attaches it to the engine. The preflight turns bad credentials into
// a driver-grade error before DuckDB ever sees the connection.
func (r *Registry) Attach(ctx context.Context, name string) error {
	def, err := r.store.GetConnection(name)
	if err != nil {
		return err
	}
	if r.IsAttached(name) {
		return nil
	}

	if err := preflight(ctx, *def); err != nil {
		return fmt.Errorf("preflight check for %s failed: %w", name, err)
	}

	if err := r.engine.Attach(ctx, engine.AttachSpec{
		Name:     def.Name,
		Type:     def.Type,
		Host:     def.Host,
		Port:     def.Port,
		Database: def.Database,
		User:     def.User,
		Password: def.Password,
		SSLCA:    def.SSLCA,
		SSLCert:  def.SSLCert,
		SSLKey:   def.SSLKey,
	}); err != nil {
		return err
	}

	r.mu.Lock()
	r.attached = append(r.attached, name)
	r.mu.Unlock()
	return nil
}

// Detach detaches the connection from the engine and notifies
// listeners. Listeners run after the attach list is updated, so a
// session reset never observes the connection as still attached.
func (r *Registry) Detach(ctx context.Context, name string) error {
	if !r.IsAttached(name) {
		return fmt.Errorf("%w: %s", ErrNotAttached, name)
	}

	if err := r.engine.Detach(ctx, name); err != nil {
		return err
	}

	r.mu.Lock()
	for i, n := range r.attached {
		if n == name {
			r.attached = append(r.attached[:i], r.attached[i+1:]...)
			break
		}
	}
	listeners := make([]DetachListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(name)
	}
	return nil
}

// IsAttached reports whether name is currently attached.
func (r *Registry) IsAttached(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.attached {
		if n == name {
			return true
		}
	}
	return false
}

// AttachedConnections returns attached connection names in attach
// order.
func (r *Registry) AttachedConnections(_ context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.attached))
	copy(out, r.attached)
	return out
}

// SchemasOf lists the schemas a connection exposes, by probing the
// engine's catalog.
func (r *Registry) SchemasOf(ctx context.Context, connection string) ([]string, error) {
	return r.engine.SchemasOf(ctx, connection)
}

// Definitions returns all saved connection definitions.
func (r *Registry) Definitions() ([]state.ConnectionDef, error) {
	return r.store.ListConnections()
}

var _ query.Catalog = (*Registry)(nil)
