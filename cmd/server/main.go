// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/courtbook/internal/api/auth"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/ratelimit"
	"github.com/codr1/courtbook/internal/scheduler"
)

const shutdownTimeout = 30 * time.Second

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func main() {
	configPath := flag.String("config", "config/app.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg.App.Environment)

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

type services struct {
	booking *booking.Service
	auth    *auth.Service
}

func buildServices(cfg *config.Config, database *db.DB, limiter *ratelimit.Limiter) (services, error) {
	loc, err := cfg.Location()
	if err != nil {
		return services{}, err
	}
	window, err := cfg.Window()
	if err != nil {
		return services{}, err
	}

	bookingService, err := booking.NewService(database.Queries, booking.Options{
		Window:         window,
		Location:       loc,
		AllowPast:      cfg.Booking.AllowPast,
		MaxAdvanceDays: cfg.Booking.MaxAdvanceDays,
	})
	if err != nil {
		return services{}, fmt.Errorf("booking service: %w", err)
	}

	authService := auth.NewService(database.Queries, auth.Options{
		SecretKey:   cfg.App.SecretKey,
		TokenTTL:    cfg.Auth.TokenTTL.Std(),
		PhoneRegion: cfg.Auth.PhoneRegion,
		Limiter:     limiter,
	})

	return services{booking: bookingService, auth: authService}, nil
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if err := database.Seed(ctx, cfg, auth.HashPassword); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	limiter := ratelimit.New(&ratelimit.Config{
		MaxAttempts:  cfg.Auth.LoginMaxAttempts,
		Lockout:      cfg.Auth.LoginLockout.Std(),
		MaxIPPerHour: ratelimit.DefaultConfig().MaxIPPerHour,
	})
	defer limiter.Close()

	svcs, err := buildServices(cfg, database, limiter)
	if err != nil {
		return err
	}

	jobs, err := scheduler.New()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	if cfg.Jobs.TokenPurgeCron != "" {
		if err := scheduler.RegisterTokenPurge(jobs, cfg.Jobs.TokenPurgeCron, svcs.auth); err != nil {
			return fmt.Errorf("register token purge: %w", err)
		}
	}
	jobs.Start()
	defer func() {
		if err := jobs.Stop(); err != nil {
			log.Error().Err(err).Msg("Failed to stop scheduler")
		}
	}()

	server := newServer(cfg, svcs)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Int("port", cfg.App.Port).
			Str("environment", cfg.App.Environment).
			Str("database", cfg.Database.Driver).
			Msg("Starting server")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	return g.Wait()
}
