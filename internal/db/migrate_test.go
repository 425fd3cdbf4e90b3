package db_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/golang-migrate/migrate/v4"

	"github.com/codr1/courtbook/internal/db"
)

func TestOpenMigrator(t *testing.T) {
	m, err := db.OpenMigrator("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open migrator: %v", err)
	}
	t.Cleanup(func() { m.Close() })

	if _, _, err := m.Version(); !errors.Is(err, migrate.ErrNilVersion) {
		t.Fatalf("expected no version on a fresh database, got %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("up: %v", err)
	}
	version, dirty, err := m.Version()
	if err != nil || dirty || version != 1 {
		t.Fatalf("version = %d dirty=%v err=%v", version, dirty, err)
	}
	if err := m.Up(); !errors.Is(err, migrate.ErrNoChange) {
		t.Fatalf("expected no change on second up, got %v", err)
	}
	if err := m.Down(); err != nil {
		t.Fatalf("down: %v", err)
	}
}

func TestOpenMigratorUnknownDriver(t *testing.T) {
	if _, err := db.OpenMigrator("mysql", "x"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}
