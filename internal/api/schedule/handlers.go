// internal/api/schedule/handlers.go
package schedule

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/api/authz"
	"github.com/codr1/courtbook/internal/api/htmx"
	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/slots"
	scheduletempl "github.com/codr1/courtbook/internal/templates/components/schedule"
	"github.com/codr1/courtbook/internal/templates/layouts"
)

var (
	service     *booking.Service
	serviceOnce sync.Once
)

const scheduleQueryTimeout = 5 * time.Second

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(svc *booking.Service) {
	if svc == nil {
		return
	}
	serviceOnce.Do(func() {
		service = svc
	})
}

type scheduleRequest struct {
	day     slots.Day
	courtID int64
}

// parseScheduleRequest reads ?date=YYYY-MM-DD and ?court_id=N. A missing date
// means today; a missing court means the first configured court.
func parseScheduleRequest(ctx context.Context, r *http.Request) (scheduleRequest, error) {
	req := scheduleRequest{day: service.Today()}

	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		day, err := slots.ParseDay(raw)
		if err != nil {
			return req, apperr.Validation("date", "must be a date in YYYY-MM-DD format")
		}
		req.day = day
	}

	courtID, err := apiutil.OptionalQueryID(r, "court_id")
	if err != nil {
		return req, err
	}
	if courtID == 0 {
		court, err := service.DefaultCourt(ctx)
		if err != nil {
			return req, err
		}
		courtID = court.ID
	}
	req.courtID = courtID
	return req, nil
}

func ready(w http.ResponseWriter, r *http.Request) bool {
	if service == nil {
		apiutil.WriteError(w, r, errors.New("schedule handlers not initialized"))
		return false
	}
	return true
}

// GET /api/schedule
func HandleSchedule(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	req, err := parseScheduleRequest(ctx, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	availability, err := service.ResolveAvailability(ctx, req.day, req.courtID, authz.Caller(r.Context()).ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, availability); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write schedule response")
	}
}

// GET /api/schedule/week
func HandleScheduleWeek(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	req, err := parseScheduleRequest(ctx, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	week, err := service.ResolveWeek(ctx, req.day, req.courtID, authz.Caller(r.Context()).ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, week); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write week response")
	}
}

// GET /api/schedule/courts
func HandleScheduleAllCourts(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	day := service.Today()
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := slots.ParseDay(raw)
		if err != nil {
			apiutil.WriteError(w, r, apperr.Validation("date", "must be a date in YYYY-MM-DD format"))
			return
		}
		day = parsed
	}

	all, err := service.ResolveAllCourts(ctx, day, authz.Caller(r.Context()).ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"date": day, "courts": all}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write schedule response")
	}
}

// GET /schedule
// htmx requests receive only the grid fragment.
func HandleSchedulePage(w http.ResponseWriter, r *http.Request) {
	if !ready(w, r) {
		return
	}
	logger := log.Ctx(r.Context())
	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	req, err := parseScheduleRequest(ctx, r)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	week, err := service.ResolveWeek(ctx, req.day, req.courtID, authz.Caller(r.Context()).ID)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	courts, err := service.ListCourts(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	data := scheduletempl.NewWeekData(week, courts, service.Now())
	component := scheduletempl.WeekGrid(data)
	if !htmx.WantsFragment(r) {
		component = layouts.Base("Court schedule", component)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		logger.Error().Err(err).Msg("Failed to render schedule page")
	}
}
