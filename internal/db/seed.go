package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
)

// PasswordHasher turns a plain password into the stored hash.
type PasswordHasher func(password string) (string, error)

// Seed creates the configured courts when the courts table is empty and
// ensures the configured admin account exists with the admin role. It is
// safe to run on every start.
func (db *DB) Seed(ctx context.Context, cfg *config.Config, hash PasswordHasher) error {
	return db.RunInTx(ctx, func(tx *DB) error {
		if err := tx.seedCourts(ctx, cfg.Seed.Courts); err != nil {
			return err
		}
		return tx.seedAdmin(ctx, cfg.Seed.Admin, hash)
	})
}

func (db *DB) seedCourts(ctx context.Context, courts []config.SeedCourt) error {
	count, err := db.Queries.CountCourts(ctx)
	if err != nil {
		return fmt.Errorf("count courts: %w", err)
	}
	if count > 0 {
		return nil
	}

	now := time.Now()
	for _, c := range courts {
		created, err := db.Queries.CreateCourt(ctx, CreateCourtParams{
			Name:      strings.TrimSpace(c.Name),
			Type:      strings.TrimSpace(c.Type),
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("seed court %q: %w", c.Name, err)
		}
		log.Info().Int64("court_id", created.ID).Str("name", created.Name).Msg("Seeded court")
	}
	return nil
}

func (db *DB) seedAdmin(ctx context.Context, admin config.SeedAdmin, hash PasswordHasher) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" || admin.Password == "" {
		return nil
	}

	existing, err := db.Queries.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Role == models.RoleAdmin {
			return nil
		}
		if _, err := db.Queries.UpdateUserRole(ctx, existing.ID, models.RoleAdmin); err != nil {
			return fmt.Errorf("promote admin: %w", err)
		}
		log.Info().Int64("user_id", existing.ID).Msg("Promoted configured admin")
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("lookup admin: %w", err)
	}

	passwordHash, err := hash(admin.Password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	created, err := db.Queries.CreateUser(ctx, CreateUserParams{
		Name:         admin.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("Seeded admin account")
	return nil
}
