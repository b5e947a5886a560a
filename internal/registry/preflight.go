package registry

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql preflight driver
	_ "github.com/jackc/pgx/v5/stdlib" // pgx preflight driver

	"github.com/leandrosousa110490/new-sql/internal/state"
)

const preflightTimeout = 10 * time.Second

// extensionType maps a connection type to the driver used for the
// preflight ping. Mirrors the engine's extension mapping.
func extensionType(connType string) (string, error) {
	switch strings.ToLower(connType) {
	case "mysql", "mariadb":
		return "mysql", nil
	case "postgres", "postgresql":
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported connection type %q", connType)
	}
}

// preflight opens a short-lived native connection and pings it.
func preflight(ctx context.Context, def state.ConnectionDef) error {
	driver, err := extensionType(def.Type)
	if err != nil {
		return err
	}

	dsn, err := preflightDSN(driver, def)
	if err != nil {
		return err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", def.Type, err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(ctx, preflightTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to reach %s at %s: %w", def.Type, net.JoinHostPort(def.Host, strconv.Itoa(def.Port)), err)
	}
	return nil
}

func preflightDSN(driver string, def state.ConnectionDef) (string, error) {
	switch driver {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s)/%s",
			def.User, def.Password,
			net.JoinHostPort(def.Host, strconv.Itoa(def.Port)),
			def.Database), nil
	case "pgx":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(def.User, def.Password),
			Host:   net.JoinHostPort(def.Host, strconv.Itoa(def.Port)),
			Path:   "/" + def.Database,
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("no DSN format for driver %q", driver)
	}
}
