package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/models"
)

func requireAdmin(who models.Identity) error {
	if who.ID <= 0 {
		return apperr.Unauthenticated("authentication required")
	}
	if !who.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}

func (s *Service) ListUsers(ctx context.Context, who models.Identity) ([]models.User, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, apperr.Transient("could not list users", err)
	}
	return users, nil
}

// SetUserRole changes a user's role. Admins cannot change their own role.
func (s *Service) SetUserRole(ctx context.Context, who models.Identity, userID int64, role models.Role) (models.User, error) {
	if err := requireAdmin(who); err != nil {
		return models.User{}, err
	}
	if userID == who.ID {
		return models.User{}, apperr.Forbidden("admins cannot change their own role")
	}

	user, err := s.store.UpdateUserRole(ctx, userID, role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return models.User{}, apperr.Transient("could not update user", err)
	}

	log.Ctx(ctx).Info().
		Str("component", "auth").
		Int64("user_id", userID).
		Str("role", string(role)).
		Int64("by_user_id", who.ID).
		Msg("User role changed")
	return user, nil
}

// DeleteUser removes a user and their reservations. Admins cannot delete
// themselves.
func (s *Service) DeleteUser(ctx context.Context, who models.Identity, userID int64) error {
	if err := requireAdmin(who); err != nil {
		return err
	}
	if userID == who.ID {
		return apperr.Forbidden("admins cannot delete their own account")
	}

	deleted, err := s.store.DeleteUser(ctx, userID)
	if err != nil {
		return apperr.Transient("could not delete user", err)
	}
	if deleted == 0 {
		return apperr.NotFound("user not found")
	}

	log.Ctx(ctx).Info().Str("component", "auth").Int64("user_id", userID).Int64("by_user_id", who.ID).Msg("User deleted")
	return nil
}
