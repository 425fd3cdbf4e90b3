// internal/api/middleware.go
package api

import (
	"context"
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/api/auth"
	"github.com/codr1/courtbook/internal/api/authz"
	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/models"
)

type Middleware func(http.Handler) http.Handler

type requestIDKey struct{}

// RequestID returns the id assigned by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func ChainMiddleware(h http.Handler, middleware ...Middleware) http.Handler {
	for _, m := range middleware {
		h = m(h)
	}
	return h
}

func WithLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		wrapped := wrapResponseWriter(w)

		next.ServeHTTP(wrapped, r)
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.status).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	})
}

func WithRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger := log.Ctx(r.Context())
				// Log the full stack trace
				stack := debug.Stack()
				logger.Error().
					Interface("error", err).
					Str("stack", string(stack)).
					Msg("Panic recovered")

				apiutil.WriteError(w, r, errors.New("panic"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func WithRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()

		// Create a logger with the request ID
		logger := log.With().Str("request_id", requestID).Logger()

		// Add both the request ID and logger to context
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		ctx = logger.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithAuth attaches the caller's identity when the request carries a valid
// token. Requests without one continue anonymously. When the token cannot be
// checked because the store is failing, public routes still run anonymously
// while routes behind RequireUser or RequireAdmin answer with that failure.
func WithAuth(next http.Handler) http.Handler {
	return withIdentity(auth.IdentityFromRequest, next)
}

type identityResolver func(r *http.Request) (*models.Identity, error)

func withIdentity(resolve identityResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := resolve(r)
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Failed to resolve caller identity")
			if errors.Is(err, apperr.ErrTransientStore) {
				r = r.WithContext(authz.ContextWithLookupError(r.Context(), err))
			}
			next.ServeHTTP(w, r)
			return
		}

		if identity != nil {
			r = r.WithContext(authz.ContextWithIdentity(r.Context(), identity))
			logger := log.Ctx(r.Context()).With().Int64("user_id", identity.ID).Logger()
			r = r.WithContext(logger.WithContext(r.Context()))
		}

		next.ServeHTTP(w, r)
	})
}

// RequireUser rejects anonymous requests with 401.
func RequireUser(next http.Handler) http.Handler {
	return requireRole(models.RoleUser, next)
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(models.RoleAdmin, next)
}

func requireRole(role models.Role, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := authz.RequireRole(r.Context(), role); err != nil {
			event := log.Ctx(r.Context()).Warn().Str("required_role", string(role))
			switch {
			case errors.Is(err, apperr.ErrTransientStore):
				event.Msg("Access check failed: identity lookup unavailable")
			case errors.Is(err, apperr.ErrUnauthenticated):
				event.Msg("Access denied: unauthenticated")
			default:
				event.Msg("Access denied: forbidden")
			}
			apiutil.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// responseWriter wrapper to capture status code
type responseWriter struct {
	http.ResponseWriter
	status int
}

func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
