package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	// ErrUniqueViolation is returned when a write collides with a unique
	// constraint, such as a second reservation for the same court and start.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing
	// row or a delete is blocked by dependent rows.
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// classify tags driver constraint errors with the package sentinels while
// keeping the driver error in the chain.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		case sqlite3.ErrConstraintTrigger:
			// ON DELETE RESTRICT is enforced as a trigger constraint.
			if strings.Contains(sqliteErr.Error(), "FOREIGN KEY") {
				return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
			}
		}
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKeyViolation, err)
		}
	}

	return err
}
