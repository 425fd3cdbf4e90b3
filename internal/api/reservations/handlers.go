// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/api/authz"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/models"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
)

const reservationQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

func loadService(w http.ResponseWriter, r *http.Request) *booking.Service {
	if service == nil {
		apiutil.WriteError(w, r, errors.New("reservation handlers not initialized"))
		return nil
	}
	return service
}

type reservationResponse struct {
	Reservation models.Reservation `json:"reservation"`
}

type reservationsResponse struct {
	Reservations []models.Reservation `json:"reservations"`
}

// POST /api/reservations
func HandleReservationCreate(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}

	var req booking.CreateRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	created, err := svc.CreateReservation(ctx, authz.Caller(r.Context()), req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, reservationResponse{Reservation: created}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write reservation response")
	}
}

// GET /api/reservations/mine
func HandleReservationsMine(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	list, err := svc.ListOwn(ctx, authz.Caller(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, reservationsResponse{Reservations: list}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write reservations response")
	}
}

// GET /api/reservations
func HandleReservationsList(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	list, err := svc.ListAll(ctx, authz.Caller(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, reservationsResponse{Reservations: list}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write reservations response")
	}
}

// DELETE /api/reservations/{id}
func HandleReservationCancel(w http.ResponseWriter, r *http.Request) {
	svc := loadService(w, r)
	if svc == nil {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	if err := svc.Cancel(ctx, authz.Caller(r.Context()), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
