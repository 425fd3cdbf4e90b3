// Package booking holds the reservation core: availability of slots on a
// court, claiming a slot and the lifecycle of existing reservations.
//
// The invariant that no two reservations share a court and start is held by
// the store's unique constraint, not by anything in this package.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/slots"
)

// Store is the persistence the booking core needs. *db.Queries satisfies it.
type Store interface {
	GetCourt(ctx context.Context, id int64) (models.Court, error)
	ListCourts(ctx context.Context) ([]models.Court, error)
	CreateCourt(ctx context.Context, arg db.CreateCourtParams) (models.Court, error)
	UpdateCourt(ctx context.Context, arg db.UpdateCourtParams) (models.Court, error)
	DeleteCourt(ctx context.Context, id int64) (int64, error)

	ListReservationsForCourtInRange(ctx context.Context, courtID int64, from, to time.Time) ([]models.Reservation, error)
	InsertReservation(ctx context.Context, arg db.InsertReservationParams) (models.Reservation, error)
	GetReservation(ctx context.Context, id int64) (models.Reservation, error)
	DeleteReservation(ctx context.Context, id int64) (int64, error)
	ListReservationsByUser(ctx context.Context, userID int64) ([]models.Reservation, error)
	ListAllReservations(ctx context.Context) ([]models.Reservation, error)
}

type Options struct {
	Window   slots.Window
	Location *time.Location
	// AllowPast lets slots that already started be booked.
	AllowPast bool
	// MaxAdvanceDays limits how far ahead a slot may be booked. Zero means
	// no limit.
	MaxAdvanceDays int
	// Now is the service clock. Defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	store          Store
	window         slots.Window
	grid           []slots.TimeOfDay
	loc            *time.Location
	allowPast      bool
	maxAdvanceDays int
	now            func() time.Time
}

func NewService(store Store, opts Options) (*Service, error) {
	if err := opts.Window.Validate(); err != nil {
		return nil, err
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:          store,
		window:         opts.Window,
		grid:           slots.Generate(opts.Window),
		loc:            opts.Location,
		allowPast:      opts.AllowPast,
		maxAdvanceDays: opts.MaxAdvanceDays,
		now:            opts.Now,
	}, nil
}

func (s *Service) Window() slots.Window {
	return s.window
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) Now() time.Time {
	return s.now()
}

// Today is the current calendar day in the service location.
func (s *Service) Today() slots.Day {
	return slots.DayOf(s.now().In(s.loc))
}

// lookupCourt resolves a court id for an operation. Unknown ids are the
// caller's mistake, not a missing resource.
func (s *Service) lookupCourt(ctx context.Context, courtID int64) (models.Court, error) {
	if courtID <= 0 {
		return models.Court{}, apperr.Validation("court_id", "must be a positive integer")
	}
	court, err := s.store.GetCourt(ctx, courtID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Court{}, apperr.Validation("court_id", "does not match a court")
	}
	if err != nil {
		return models.Court{}, storeFailure(ctx, "load court", err)
	}
	return court, nil
}

// storeFailure reports an unclassified store error as transient.
func storeFailure(ctx context.Context, op string, err error) error {
	log.Ctx(ctx).Error().Err(err).Str("component", "booking").Str("op", op).Msg("Store operation failed")
	return apperr.Transient("the reservation store is unavailable", err)
}

func requireIdentity(who models.Identity) error {
	if who.ID <= 0 {
		return apperr.Unauthenticated("authentication required")
	}
	return nil
}
