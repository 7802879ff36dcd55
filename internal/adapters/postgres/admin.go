package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx driver
	"github.com/felixgeelhaar/flowprep/internal/ports"
)

// Admin implements ports.DatabaseAdmin against a PostgreSQL server using
// the pgx stdlib driver. The primary connection targets the maintenance
// database; extension statements open a short-lived connection to the
// database they operate on, since CREATE EXTENSION applies to the current
// database only.
type Admin struct {
	cfg Config
	db  *sql.DB
}

// Open connects to the maintenance database and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Admin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	db, err := open(ctx, cfg, cfg.MaintenanceDB)
	if err != nil {
		return nil, err
	}

	return &Admin{cfg: cfg, db: db}, nil
}

// open dials a single database and pings it within the configured timeout.
func open(ctx context.Context, cfg Config, database string) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DSN(database))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", database, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", database, err)
	}

	return db, nil
}

// Close releases the administrative connection.
func (a *Admin) Close() error {
	return a.db.Close()
}

// DatabaseExists reports whether a database with the given name exists.
func (a *Admin) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := a.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", name,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query pg_database: %w", err)
	}
	return exists, nil
}

// CreateDatabase creates a database, optionally owned by the given role.
// Identifiers cannot be bound as statement parameters, so they are
// sanitized with pgx's identifier quoting instead of string concatenation.
func (a *Admin) CreateDatabase(ctx context.Context, name, owner string) error {
	stmt := "CREATE DATABASE " + pgx.Identifier{name}.Sanitize()
	if owner != "" {
		stmt += " OWNER " + pgx.Identifier{owner}.Sanitize()
	}

	if _, err := a.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create database %s: %w", name, err)
	}
	return nil
}

// ExtensionExists reports whether the extension is installed in the given
// database.
func (a *Admin) ExtensionExists(ctx context.Context, database, extension string) (bool, error) {
	db, err := open(ctx, a.cfg, database)
	if err != nil {
		return false, err
	}
	defer func() { _ = db.Close() }()

	var exists bool
	err = db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = $1)", extension,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query pg_extension: %w", err)
	}
	return exists, nil
}

// CreateExtension installs an extension into the given database.
func (a *Admin) CreateExtension(ctx context.Context, database, extension string) error {
	db, err := open(ctx, a.cfg, database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	stmt := "CREATE EXTENSION IF NOT EXISTS " + pgx.Identifier{extension}.Sanitize()
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("create extension %s in %s: %w", extension, database, err)
	}
	return nil
}

// Ensure Admin implements ports.DatabaseAdmin.
var _ ports.DatabaseAdmin = (*Admin)(nil)
