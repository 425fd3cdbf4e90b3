// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api"
	"github.com/codr1/courtbook/internal/api/auth"
	"github.com/codr1/courtbook/internal/api/courts"
	"github.com/codr1/courtbook/internal/api/reservations"
	"github.com/codr1/courtbook/internal/api/schedule"
	"github.com/codr1/courtbook/internal/config"
)

func newServer(cfg *config.Config, svcs services) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      newHandler(cfg, svcs),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(cfg *config.Config, svcs services) http.Handler {
	auth.InitHandlers(svcs.auth, cfg)
	courts.InitHandlers(svcs.booking)
	reservations.InitHandlers(svcs.booking)
	schedule.InitHandlers(svcs.booking)

	router := http.NewServeMux()
	registerRoutes(router)

	// Applied inside out: request id is outermost so every later layer logs
	// with it.
	return api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)
}

func registerRoutes(mux *http.ServeMux) {
	user := func(h http.HandlerFunc) http.Handler { return api.RequireUser(h) }
	admin := func(h http.HandlerFunc) http.Handler { return api.RequireAdmin(h) }

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/schedule", http.StatusSeeOther)
	})

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write health response")
		}
	})

	// Schedule
	mux.HandleFunc("GET /schedule", schedule.HandleSchedulePage)
	mux.HandleFunc("GET /api/schedule", schedule.HandleSchedule)
	mux.HandleFunc("GET /api/schedule/week", schedule.HandleScheduleWeek)
	mux.HandleFunc("GET /api/schedule/courts", schedule.HandleScheduleAllCourts)

	// Accounts
	mux.HandleFunc("POST /api/register", auth.HandleRegister)
	mux.HandleFunc("POST /api/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/logout", auth.HandleLogout)
	mux.HandleFunc("GET /api/me", auth.HandleMe)
	mux.Handle("GET /api/users", admin(auth.HandleListUsers))
	mux.Handle("PUT /api/users/{id}/role", admin(auth.HandleSetUserRole))
	mux.Handle("DELETE /api/users/{id}", admin(auth.HandleDeleteUser))

	// Courts
	mux.HandleFunc("GET /api/courts", courts.HandleCourtsList)
	mux.Handle("POST /api/courts", admin(courts.HandleCourtCreate))
	mux.Handle("PUT /api/courts/{id}", admin(courts.HandleCourtUpdate))
	mux.Handle("DELETE /api/courts/{id}", admin(courts.HandleCourtDelete))

	// Reservations
	mux.Handle("POST /api/reservations", user(reservations.HandleReservationCreate))
	mux.Handle("GET /api/reservations/mine", user(reservations.HandleReservationsMine))
	mux.Handle("GET /api/reservations", admin(reservations.HandleReservationsList))
	mux.Handle("DELETE /api/reservations/{id}", user(reservations.HandleReservationCancel))
}
