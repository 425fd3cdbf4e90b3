package booking

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
)

const (
	maxCourtNameLength = 100
	maxCourtTypeLength = 50
)

type CourtInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (in CourtInput) normalize() (CourtInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if in.Name == "" {
		return in, apperr.Validation("name", "is required")
	}
	if utf8.RuneCountInString(in.Name) > maxCourtNameLength {
		return in, apperr.Validation("name", "must be at most 100 characters")
	}
	if utf8.RuneCountInString(in.Type) > maxCourtTypeLength {
		return in, apperr.Validation("type", "must be at most 50 characters")
	}
	return in, nil
}

func (s *Service) ListCourts(ctx context.Context) ([]models.Court, error) {
	courts, err := s.store.ListCourts(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list courts", err)
	}
	return courts, nil
}

// DefaultCourt is the first court, used when a schedule request names none.
func (s *Service) DefaultCourt(ctx context.Context) (models.Court, error) {
	courts, err := s.ListCourts(ctx)
	if err != nil {
		return models.Court{}, err
	}
	if len(courts) == 0 {
		return models.Court{}, apperr.NotFound("no courts are configured")
	}
	return courts[0], nil
}

func (s *Service) CreateCourt(ctx context.Context, who models.Identity, in CourtInput) (models.Court, error) {
	if err := requireAdmin(who); err != nil {
		return models.Court{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Court{}, err
	}

	court, err := s.store.CreateCourt(ctx, db.CreateCourtParams{Name: in.Name, Type: in.Type, CreatedAt: s.now()})
	if err != nil {
		return models.Court{}, storeFailure(ctx, "create court", err)
	}
	log.Ctx(ctx).Info().Str("component", "booking").Int64("court_id", court.ID).Msg("Court created")
	return court, nil
}

func (s *Service) UpdateCourt(ctx context.Context, who models.Identity, id int64, in CourtInput) (models.Court, error) {
	if err := requireAdmin(who); err != nil {
		return models.Court{}, err
	}
	in, err := in.normalize()
	if err != nil {
		return models.Court{}, err
	}

	court, err := s.store.UpdateCourt(ctx, db.UpdateCourtParams{ID: id, Name: in.Name, Type: in.Type})
	if errors.Is(err, sql.ErrNoRows) {
		return models.Court{}, apperr.NotFound("court not found")
	}
	if err != nil {
		return models.Court{}, storeFailure(ctx, "update court", err)
	}
	return court, nil
}

// DeleteCourt removes a court. Courts that still have reservations are kept
// and the call reports a conflict.
func (s *Service) DeleteCourt(ctx context.Context, who models.Identity, id int64) error {
	if err := requireAdmin(who); err != nil {
		return err
	}

	deleted, err := s.store.DeleteCourt(ctx, id)
	if errors.Is(err, db.ErrForeignKeyViolation) {
		return apperr.Conflict(apperr.CodeConflict, "court has reservations", err)
	}
	if err != nil {
		return storeFailure(ctx, "delete court", err)
	}
	if deleted == 0 {
		return apperr.NotFound("court not found")
	}
	log.Ctx(ctx).Info().Str("component", "booking").Int64("court_id", id).Msg("Court deleted")
	return nil
}

func requireAdmin(who models.Identity) error {
	if err := requireIdentity(who); err != nil {
		return err
	}
	if !who.IsAdmin() {
		return apperr.Forbidden("admin role required")
	}
	return nil
}
