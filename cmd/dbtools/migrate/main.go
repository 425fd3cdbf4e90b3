// cmd/dbtools/migrate/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
)

func main() {
	var (
		driver  = flag.String("driver", config.DriverSQLite, "Database driver (sqlite, postgres)")
		dsn     = flag.String("db", "", "SQLite database path or Postgres URL")
		command = flag.String("command", "", "Command to run (up, down, steps, version)")
		steps   = flag.Int("n", 0, "Number of steps for the steps command; negative rolls back")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *dsn == "" || *command == "" {
		flag.Usage()
		os.Exit(1)
	}

	m, err := db.OpenMigrator(*driver, *dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration init failed")
	}
	defer m.Close()

	if err := runCommand(m, *command, *steps); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("Migration failed")
	}
}

func runCommand(m *migrate.Migrate, command string, steps int) error {
	switch command {
	case "up":
		return ignoreNoChange(m.Up())
	case "down":
		return ignoreNoChange(m.Down())
	case "steps":
		if steps == 0 {
			return fmt.Errorf("steps command requires -n")
		}
		return ignoreNoChange(m.Steps(steps))
	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			fmt.Println("Version: none")
			return nil
		}
		if err != nil {
			return fmt.Errorf("get version: %w", err)
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
