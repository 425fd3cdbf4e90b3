package auth

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/api/authz"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/ratelimit"
)

var (
	service       *Service
	limiter       *rate.Limiter
	secureCookies bool
	trustProxy    bool
	initOnce      sync.Once
)

// InitHandlers wires the package handlers. Only the first call has effect.
func InitHandlers(svc *Service, cfg *config.Config) {
	initOnce.Do(func() {
		service = svc
		limiter = rate.NewLimiter(rate.Limit(100), 10) // More restrictive for auth
		secureCookies = !cfg.IsDevelopment()
		trustProxy = cfg.Auth.TrustProxy
	})
}

// IdentityFromRequest resolves the caller from the bearer token or auth
// cookie. Anonymous requests yield nil.
func IdentityFromRequest(r *http.Request) (*models.Identity, error) {
	if service == nil {
		return nil, errors.New("auth handlers not initialized")
	}
	return service.CurrentIdentity(r.Context(), TokenFromRequest(r))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      models.Identity `json:"user"`
}

type userResponse struct {
	User *models.Identity `json:"user"`
}

func allowAuthRequest(w http.ResponseWriter, r *http.Request) bool {
	if limiter.Allow() {
		return true
	}
	w.Header().Set("Retry-After", "1")
	apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: "too many requests"})
	return false
}

// POST /api/register
func HandleRegister(w http.ResponseWriter, r *http.Request) {
	if !allowAuthRequest(w, r) {
		return
	}

	var req RegisterRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}

	user, err := service.Register(r.Context(), req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusCreated, map[string]any{"user": user}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write register response")
	}
}

// POST /api/login
func HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !allowAuthRequest(w, r) {
		return
	}
	logger := log.Ctx(r.Context())

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}
	if req.Email == "" || req.Password == "" {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "email", Reason: "and password are required"})
		return
	}

	user, err := service.Authenticate(r.Context(), req.Email, req.Password, ratelimit.GetClientIP(r, trustProxy))
	var limited *RateLimitError
	if errors.As(err, &limited) {
		w.Header().Set("Retry-After", strconv.Itoa(int(limited.RetryAfter.Seconds())+1))
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: limited.Error(), Err: err})
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	identity := user.Identity()
	token, expiresAt, err := service.IssueToken(identity)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	setAuthCookie(w, token, expiresAt, secureCookies)

	logger.Info().Str("component", "auth").Int64("user_id", user.ID).Msg("User logged in")
	if err := apiutil.WriteJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt, User: identity}); err != nil {
		logger.Error().Err(err).Msg("Failed to write login response")
	}
}

// POST /api/logout
func HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := service.Logout(r.Context(), TokenFromRequest(r)); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	clearAuthCookie(w, secureCookies)
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/me
func HandleMe(w http.ResponseWriter, r *http.Request) {
	if err := authz.LookupError(r.Context()); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, userResponse{User: authz.IdentityFromContext(r.Context())}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write me response")
	}
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// GET /api/users
func HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := service.ListUsers(r.Context(), authz.Caller(r.Context()))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"users": users}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write users response")
	}
}

// PUT /api/users/{id}/role
func HandleSetUserRole(w http.ResponseWriter, r *http.Request) {
	userID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	var req setRoleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("invalid request body: %v", err))
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "role", Reason: "must be user or admin"})
		return
	}

	user, err := service.SetUserRole(r.Context(), authz.Caller(r.Context()), userID, role)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"user": user}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write user response")
	}
}

// DELETE /api/users/{id}
func HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := apiutil.PathID(r, "id")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if err := service.DeleteUser(r.Context(), authz.Caller(r.Context()), userID); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
