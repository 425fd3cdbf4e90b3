// internal/api/courts/handlers.go
package courts

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

const courtsQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type courtResponse struct {
	Court models.Court `json:"court"`
}

type courtsResponse struct {
	Courts []models.Court `json:"courts"`
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		apiutil.WriteError(w, r, errors.New("court handlers not initialized"))
		return false
	}
	return true
}

// GET /api/courts
func HandleCourtsList(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	list, err := service.ListCourts(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, courtsResponse{Courts: list}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write courts response")
	}
}

// POST /api/courts
func HandleCourtCreate(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}

	var in booking.CourtInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := service.CreateCourt(ctx, authz.Caller(r.Context()), in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusCreated, courtResponse{Court: court}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write court response")
	}
}

// PUT /api/courts/{id}
func HandleCourtUpdate(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	var in booking.CourtInput
	if err := apiutil.DecodeJSON(r, &in); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	court, err := service.UpdateCourt(ctx, authz.Caller(r.Context()), id, in)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, courtResponse{Court: court}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write court response")
	}
}

// DELETE /api/courts/{id}
func HandleCourtDelete(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}

	id, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), courtsQueryTimeout)
	defer cancel()

	if err := service.DeleteCourt(ctx, authz.Caller(r.Context()), id); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
