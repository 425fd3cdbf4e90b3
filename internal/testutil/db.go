package testutil

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/codr1/courtbook/internal/api/authz"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/slots"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// CreateUser inserts a user with a placeholder password hash.
func CreateUser(t *testing.T, database *db.DB, name, email string, role models.Role) models.User {
	t.Helper()

	user, err := database.Queries.CreateUser(context.Background(), db.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func CreateCourt(t *testing.T, database *db.DB, name string) models.Court {
	t.Helper()

	court, err := database.Queries.CreateCourt(context.Background(), db.CreateCourtParams{
		Name:      name,
		Type:      "padel",
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("create court %s: %v", name, err)
	}
	return court
}

// NewBookingService builds a booking service over database using the default
// window in UTC, with the clock fixed at now.
func NewBookingService(t *testing.T, database *db.DB, now time.Time) *booking.Service {
	t.Helper()

	svc, err := booking.NewService(database.Queries, booking.Options{
		Window:   slots.DefaultWindow(),
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("create booking service: %v", err)
	}
	return svc
}

// AsUser attaches identity to the request context the way the auth
// middleware does.
func AsUser(r *http.Request, identity models.Identity) *http.Request {
	return r.WithContext(authz.ContextWithIdentity(r.Context(), &identity))
}
