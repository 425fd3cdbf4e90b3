package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/ratelimit"
)

// ErrInvalidCredentials is the cause of every failed password login, so
// callers cannot tell a wrong password from an unknown email.
var ErrInvalidCredentials = errors.New("invalid email or password")

// bcrypt only considers the first 72 bytes.
const maxPasswordBytes = 72

// Store is the persistence auth needs. *db.Queries satisfies it.
type Store interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id int64, role models.Role) (models.User, error)
	DeleteUser(ctx context.Context, id int64) (int64, error)

	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	PurgeRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

// RateLimitError is returned when login attempts are throttled.
type RateLimitError struct {
	RetryAfter time.Duration
	Reason     string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

type Options struct {
	SecretKey   string
	TokenTTL    time.Duration
	PhoneRegion string
	Limiter     *ratelimit.Limiter
	Now         func() time.Time
}

type Service struct {
	store       Store
	tokens      *TokenManager
	limiter     *ratelimit.Limiter
	phoneRegion string
	now         func() time.Time
}

func NewService(store Store, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.New(nil)
	}
	return &Service{
		store:       store,
		tokens:      NewTokenManager(opts.SecretKey, opts.TokenTTL, opts.Now),
		limiter:     opts.Limiter,
		phoneRegion: opts.PhoneRegion,
		now:         opts.Now,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone returns the E.164 form of a phone number. Numbers without
// a country prefix are read in region.
func NormalizePhone(raw, region string) (string, error) {
	num, err := phonenumbers.Parse(strings.TrimSpace(raw), region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// Register creates a user account with the user role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := NormalizeEmail(req.Email)

	if name == "" {
		return models.User{}, apperr.Validation("name", "is required")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return models.User{}, apperr.Validation("email", "must be a valid email address")
	}
	if len(req.Password) < MinPasswordLength {
		return models.User{}, apperr.Validation("password", "must be at least 8 characters")
	}
	if len(req.Password) > maxPasswordBytes {
		return models.User{}, apperr.Validation("password", "must be at most 72 bytes")
	}

	var phone string
	if strings.TrimSpace(req.Phone) != "" {
		normalized, err := NormalizePhone(req.Phone, s.phoneRegion)
		if err != nil {
			return models.User{}, apperr.Validation("phone", "must be a valid phone number")
		}
		phone = normalized
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, db.CreateUserParams{
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         models.RoleUser,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, db.ErrUniqueViolation) {
		return models.User{}, apperr.Conflict(apperr.CodeConflict, "email is already registered", err)
	}
	if err != nil {
		return models.User{}, apperr.Transient("could not create account", err)
	}

	log.Ctx(ctx).Info().Str("component", "auth").Int64("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Authenticate checks an email and password. ip feeds the login limiter.
func (s *Service) Authenticate(ctx context.Context, email, password, ip string) (models.User, error) {
	email = NormalizeEmail(email)
	if result := s.limiter.CheckLogin(email, ip); !result.Allowed {
		ratelimit.LogRateLimitExceeded(email, ip, result.Reason)
		return models.User{}, &RateLimitError{RetryAfter: result.RetryAfter, Reason: result.Reason}
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, apperr.Transient("could not verify credentials", err)
	}
	if err != nil || !VerifyPassword(user.PasswordHash, password) {
		if s.limiter.RecordLoginFailure(email, ip) {
			log.Ctx(ctx).Warn().
				Str("component", "auth").
				Str("identifier", ratelimit.SanitizeIdentifier(email)).
				Msg("Login locked out after repeated failures")
		}
		return models.User{}, &apperr.Error{
			Kind:    apperr.ErrUnauthenticated,
			Code:    apperr.CodeUnauthenticated,
			Message: ErrInvalidCredentials.Error(),
			Err:     ErrInvalidCredentials,
		}
	}

	s.limiter.ResetLogin(email)
	return user, nil
}

// IssueToken returns a signed access token for identity and its expiry.
func (s *Service) IssueToken(identity models.Identity) (string, time.Time, error) {
	token, claims, err := s.tokens.Issue(identity)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// CurrentIdentity resolves a token to the caller. Malformed, expired or
// revoked tokens, and tokens of deleted users, resolve to nil with no error.
// The role is read from the store so role changes apply immediately.
func (s *Service) CurrentIdentity(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Ignoring invalid access token")
		return nil, nil
	}

	revoked, err := s.store.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperr.Transient("could not verify token", err)
	}
	if revoked {
		return nil, nil
	}

	userID, err := claims.UserID()
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Ignoring access token without a user")
		return nil, nil
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Transient("could not load user", err)
	}

	identity := user.Identity()
	return &identity, nil
}

// Logout revokes the token until it would have expired. Invalid tokens are
// ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.store.RevokeToken(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperr.Transient("could not revoke token", err)
	}
	return nil
}

// PurgeRevokedTokens drops revocations of tokens that are expired anyway.
func (s *Service) PurgeRevokedTokens(ctx context.Context) (int64, error) {
	return s.store.PurgeRevokedTokens(ctx, s.now())
}
