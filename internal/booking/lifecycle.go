package booking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/models"
)

// ListOwn returns the caller's reservations, most recent start first.
func (s *Service) ListOwn(ctx context.Context, who models.Identity) ([]models.Reservation, error) {
	if err := requireIdentity(who); err != nil {
		return nil, err
	}
	reservations, err := s.store.ListReservationsByUser(ctx, who.ID)
	if err != nil {
		return nil, storeFailure(ctx, "list own reservations", err)
	}
	return s.localize(reservations), nil
}

// ListAll returns every reservation, most recent start first. Admin only.
func (s *Service) ListAll(ctx context.Context, who models.Identity) ([]models.Reservation, error) {
	if err := requireAdmin(who); err != nil {
		return nil, err
	}
	reservations, err := s.store.ListAllReservations(ctx)
	if err != nil {
		return nil, storeFailure(ctx, "list all reservations", err)
	}
	return s.localize(reservations), nil
}

// Cancel hard-deletes a reservation. Existence is checked before ownership,
// so an unknown id is NotFound for every caller. Only the holder or an admin
// may cancel.
func (s *Service) Cancel(ctx context.Context, who models.Identity, reservationID int64) error {
	if err := requireIdentity(who); err != nil {
		return err
	}
	if reservationID <= 0 {
		return apperr.NotFound("reservation not found")
	}

	reservation, err := s.store.GetReservation(ctx, reservationID)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("reservation not found")
	}
	if err != nil {
		return storeFailure(ctx, "load reservation", err)
	}

	if reservation.UserID != who.ID && !who.IsAdmin() {
		return apperr.Forbidden("only the holder or an admin can cancel this reservation")
	}

	deleted, err := s.store.DeleteReservation(ctx, reservationID)
	if err != nil {
		return storeFailure(ctx, "delete reservation", err)
	}
	if deleted == 0 {
		// Removed by someone else between the lookup and the delete.
		return apperr.NotFound("reservation not found")
	}

	log.Ctx(ctx).Info().
		Str("component", "booking").
		Int64("reservation_id", reservationID).
		Int64("by_user_id", who.ID).
		Msg("Reservation cancelled")
	return nil
}

func (s *Service) localize(reservations []models.Reservation) []models.Reservation {
	for i := range reservations {
		reservations[i].StartTime = reservations[i].StartTime.In(s.loc)
		reservations[i].EndTime = reservations[i].EndTime.In(s.loc)
	}
	return reservations
}
