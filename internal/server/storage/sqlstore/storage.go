// Package sqlstore implements the refresh token store and the bundled
// identity store on database/sql, for SQLite and PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/FamilySync/Services-Authentication/internal/server/storage"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// Driver selects the SQL dialect.
type Driver string

// Supported drivers
const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Config configures a Storage.
type Config struct {
	Driver Driver
	// DSN is a file path (or ":memory:") for SQLite and a connection URL for PostgreSQL
	DSN string
	// RefreshTokenTTL defaults to storage.DefaultRefreshTokenTTL
	RefreshTokenTTL time.Duration
}

// Storage represents SQL storage implementation
type Storage struct {
	db         *sql.DB
	now        func() time.Time
	driver     Driver
	refreshTTL time.Duration
}

var (
	_ storage.RefreshTokenStorage = (*Storage)(nil)
	_ storage.IdentityGateway     = (*Storage)(nil)
)

// New opens the database, applies pragmas and runs the embedded migrations.
// Use ":memory:" with DriverSQLite for an in-memory database (useful for testing).
func New(ctx context.Context, cfg Config) (*Storage, error) {
	driverName, err := cfg.Driver.sqlDriverName()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// SQLite с WAL mode может поддерживать несколько читателей, но только одного писателя
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		pragmas := []string{
			"PRAGMA journal_mode = WAL;",
			"PRAGMA synchronous = NORMAL;",
			"PRAGMA foreign_keys = ON;",
			"PRAGMA busy_timeout = 5000;",
		}
		for _, pragma := range pragmas {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to set pragma: %w", err)
			}
		}
	}

	s := NewWithDB(db, cfg.Driver, cfg.RefreshTokenTTL)

	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// NewWithDB wraps an already opened database without running migrations.
func NewWithDB(db *sql.DB, driver Driver, refreshTTL time.Duration) *Storage {
	if refreshTTL <= 0 {
		refreshTTL = storage.DefaultRefreshTokenTTL
	}
	return &Storage{
		db:         db,
		driver:     driver,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// Migrate applies pending migrations for the configured dialect.
func (s *Storage) Migrate(ctx context.Context) error {
	migrations, err := fs.Sub(embedMigrations, s.driver.migrationsDir())
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	provider, err := goose.NewProvider(s.driver.gooseDialect(), s.db, migrations)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up failed: %w", err)
	}

	return nil
}

// Ping verifies the database is reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for testing purposes
func (s *Storage) DB() *sql.DB {
	return s.db
}

// rebind rewrites '?' placeholders into the dialect's form.
func (s *Storage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Driver) sqlDriverName() (string, error) {
	switch d {
	case DriverSQLite:
		return "sqlite", nil
	case DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", d)
	}
}

func (d Driver) gooseDialect() goose.Dialect {
	if d == DriverPostgres {
		return goose.DialectPostgres
	}
	return goose.DialectSQLite3
}

func (d Driver) migrationsDir() string {
	if d == DriverPostgres {
		return "migrations/postgres"
	}
	return "migrations/sqlite"
}

// isUniqueViolation reports whether err is a unique constraint failure.
func (s *Storage) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation reports whether err is a foreign key failure.
func (s *Storage) isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
