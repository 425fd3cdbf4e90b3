// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codr1/courtbook/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

type DB struct {
	*sql.DB
	Queries *Queries
	Dialect Dialect
}

// New opens a SQLite database for the given data source name, applies the
// embedded migrations and returns a DB with queries bound to the connection.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", sqliteDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return open(sqlDB, DialectSQLite)
}

// NewFromConfig opens the configured database ("sqlite" or "postgres"),
// applies migrations and returns a DB with queries bound to it.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		return New(cfg.Database.Filename)

	case config.DriverPostgres:
		sqlDB, err := sql.Open("pgx", cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("error opening database: %w", err)
		}
		return open(sqlDB, DialectPostgres)

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

func open(sqlDB *sql.DB, dialect Dialect) (*DB, error) {
	if err := runMigrations(sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Queries: NewQueries(sqlDB, dialect),
		Dialect: dialect,
	}, nil
}

// sqliteDSN enables foreign keys, waits on a locked database instead of
// failing fast, and starts transactions with BEGIN IMMEDIATE so concurrent
// writers serialize at the database.
func sqliteDSN(dataSourceName string) string {
	dataSourceName = ensureDSNParam(dataSourceName, "_fk", "1")
	dataSourceName = ensureDSNParam(dataSourceName, "_busy_timeout", "5000")
	dataSourceName = ensureDSNParam(dataSourceName, "_journal_mode", "WAL")
	return ensureDSNParam(dataSourceName, "_txlock", "immediate")
}

// ensureDSNParam appends key=value unless the DSN already sets key.
func ensureDSNParam(dataSourceName, key, value string) string {
	if strings.Contains(dataSourceName, key+"=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&" + key + "=" + value
	}
	return dataSourceName + "?" + key + "=" + value
}

// runMigrations applies the embedded migrations for the dialect. A "no
// change" result is not treated as an error.
func runMigrations(db *sql.DB, dialect Dialect) error {
	m, err := newMigrator(db, dialect)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func newMigrator(db *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	var (
		driver     database.Driver
		driverName string
		err        error
	)
	switch dialect {
	case DialectSQLite:
		driverName = "sqlite3"
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case DialectPostgres:
		driverName = "pgx5"
		driver, err = migratepgx.WithInstance(db, &migratepgx.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driverName, driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// OpenMigrator connects to the database named by driver and dsn without
// applying anything, for explicit up/down/version control. Closing the
// migrator closes the connection.
func OpenMigrator(driver, dsn string) (*migrate.Migrate, error) {
	var (
		sqlDB   *sql.DB
		dialect Dialect
		err     error
	)
	switch driver {
	case config.DriverSQLite:
		dialect = DialectSQLite
		sqlDB, err = sql.Open("sqlite3", sqliteDSN(dsn))
	case config.DriverPostgres:
		dialect = DialectPostgres
		sqlDB, err = sql.Open("pgx", dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	m, err := newMigrator(sqlDB, dialect)
	if err != nil {
		sqlDB.Close()
		return nil, err
	}
	return m, nil
}

// WithTx creates a new DB instance with the given transaction
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{
		DB:      db.DB,
		Queries: db.Queries.WithTx(tx),
		Dialect: db.Dialect,
	}
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return tx, nil
}

// RunInTx runs the given function in a transaction
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txDB := db.WithTx(tx)
	if err := fn(txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", classify(err))
	}

	return nil
}
