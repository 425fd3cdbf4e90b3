package booking

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/slots"
)

// CreateRequest is the client input for claiming a slot.
type CreateRequest struct {
	CourtID int64  `json:"court_id"`
	Date    string `json:"date"`
	Slot    string `json:"slot"`
}

// CreateReservation claims a slot for the caller. Everything that can be
// checked without writing is checked first; the claim itself is a single
// insert whose uniqueness the store enforces.
func (s *Service) CreateReservation(ctx context.Context, who models.Identity, req CreateRequest) (models.Reservation, error) {
	if err := requireIdentity(who); err != nil {
		return models.Reservation{}, err
	}

	if req.CourtID <= 0 {
		return models.Reservation{}, apperr.Validation("court_id", "must be a positive integer")
	}
	day, err := slots.ParseDay(req.Date)
	if err != nil {
		return models.Reservation{}, apperr.Validation("date", "must be YYYY-MM-DD")
	}
	tod, err := slots.ParseTimeOfDay(req.Slot)
	if err != nil {
		return models.Reservation{}, apperr.Validation("slot", "must be HH:MM")
	}
	if !s.window.OnGrid(tod) {
		return models.Reservation{}, apperr.Validation("slot", "is not a bookable slot start")
	}

	startsAt := day.At(tod, s.loc)
	now := s.now()
	if !s.allowPast && startsAt.Before(now) {
		return models.Reservation{}, apperr.Validation("slot", "has already started")
	}
	if s.maxAdvanceDays > 0 {
		last := s.Today().AddDays(s.maxAdvanceDays)
		if day.Start(s.loc).After(last.Start(s.loc)) {
			return models.Reservation{}, apperr.Validation("date", "is too far in advance")
		}
	}

	court, err := s.lookupCourt(ctx, req.CourtID)
	if err != nil {
		return models.Reservation{}, err
	}

	reservation, err := s.store.InsertReservation(ctx, db.InsertReservationParams{
		UserID:    who.ID,
		CourtID:   court.ID,
		StartTime: startsAt,
		EndTime:   startsAt.Add(s.window.Duration),
		CreatedAt: now,
	})
	switch {
	case errors.Is(err, db.ErrUniqueViolation):
		return models.Reservation{}, apperr.Conflict(apperr.CodeSlotTaken, "slot already taken", err)
	case errors.Is(err, db.ErrForeignKeyViolation):
		// The court or the caller was removed after the checks above.
		return models.Reservation{}, apperr.Validation("court_id", "does not match a court")
	case err != nil:
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.Reservation{}, apperr.Transient("request cancelled before the reservation was stored", ctxErr)
		}
		return models.Reservation{}, storeFailure(ctx, "insert reservation", err)
	}

	reservation.CourtName = court.Name
	reservation.UserName = who.Name
	reservation.StartTime = reservation.StartTime.In(s.loc)
	reservation.EndTime = reservation.EndTime.In(s.loc)

	log.Ctx(ctx).Info().
		Str("component", "booking").
		Int64("reservation_id", reservation.ID).
		Int64("court_id", court.ID).
		Int64("user_id", who.ID).
		Time("start_time", startsAt).
		Msg("Reservation created")

	return reservation, nil
}
