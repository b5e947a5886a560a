package engine

import (
	"context"
	"fmt"
	"strings"
)

// AttachSpec describes an external data source to attach through a
// DuckDB extension.
type AttachSpec struct {
	Name     string
	Type     string // "mysql", "mariadb" or "postgres"
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLCA    string
	SSLCert  string
	SSLKey   string
}

// extensionFor maps a connection type to the DuckDB extension name.
func extensionFor(connType string) (string, error) {
	switch strings.ToLower(connType) {
	case "mysql", "mariadb":
		return "mysql", nil
	case "postgres", "postgresql":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported connection type %q", connType)
	}
}

// Attach installs the extension for spec's type and attaches the
// external database under spec.Name.
func (e *Engine) Attach(ctx context.Context, spec AttachSpec) error {
	ext, err := extensionFor(spec.Type)
	if err != nil {
		return err
	}

	if err := e.Exec(ctx, "INSTALL "+ext); err != nil {
		return fmt.Errorf("failed to install %s extension: %w", ext, err)
	}
	if err := e.Exec(ctx, "LOAD "+ext); err != nil {
		return fmt.Errorf("failed to load %s extension: %w", ext, err)
	}

	attach := fmt.Sprintf("ATTACH '%s' AS %s (TYPE %s)", attachString(spec), spec.Name, ext)
	if err := e.Exec(ctx, attach); err != nil {
		return fmt.Errorf("failed to attach %s: %w", spec.Name, err)
	}

	e.logger.Info("attached connection", "name", spec.Name, "type", spec.Type, "host", spec.Host)
	return nil
}

// Detach detaches a previously attached database.
func (e *Engine) Detach(ctx context.Context, name string) error {
	if err := e.Exec(ctx, "DETACH "+name); err != nil {
		return fmt.Errorf("failed to detach %s: %w", name, err)
	}
	e.logger.Info("detached connection", "name", name)
	return nil
}

// attachString builds the key-value connection string the extensions
// expect. The password never appears in logs; only this string carries
// it.
func attachString(spec AttachSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, "host=%s port=%d user=%s", spec.Host, spec.Port, spec.User)
	if spec.Database != "" {
		fmt.Fprintf(&b, " database=%s", spec.Database)
	}
	if spec.Password != "" {
		fmt.Fprintf(&b, " password=%s", spec.Password)
	}
	if spec.SSLCA != "" {
		fmt.Fprintf(&b, " sslca=%s", spec.SSLCA)
	}
	if spec.SSLCert != "" {
		fmt.Fprintf(&b, " sslcert=%s", spec.SSLCert)
	}
	if spec.SSLKey != "" {
		fmt.Fprintf(&b, " sslkey=%s", spec.SSLKey)
	}
	return b.String()
}
