package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/models"
)

func TestRequireAuthenticatedAnonymous(t *testing.T) {
	_, err := RequireAuthenticated(context.Background())
	if !errors.Is(err, apperr.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if Caller(context.Background()).ID != 0 {
		t.Fatal("expected zero caller for anonymous context")
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		caller  *models.Identity
		role    models.Role
		wantErr error
	}{
		{"anonymous", nil, models.RoleUser, apperr.ErrUnauthenticated},
		{"user as user", &models.Identity{ID: 1, Role: models.RoleUser}, models.RoleUser, nil},
		{"user as admin", &models.Identity{ID: 1, Role: models.RoleUser}, models.RoleAdmin, apperr.ErrForbidden},
		{"admin as admin", &models.Identity{ID: 2, Role: models.RoleAdmin}, models.RoleAdmin, nil},
		{"admin as user", &models.Identity{ID: 2, Role: models.RoleAdmin}, models.RoleUser, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.caller != nil {
				ctx = ContextWithIdentity(ctx, tt.caller)
			}

			identity, err := RequireRole(ctx, tt.role)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected nil, got %v", err)
			}
			if identity.ID != tt.caller.ID {
				t.Fatalf("identity = %+v, want %+v", identity, *tt.caller)
			}
		})
	}
}

func TestRequireAuthenticatedLookupFailure(t *testing.T) {
	lookupErr := apperr.Transient("could not verify token", errors.New("database is closed"))
	ctx := ContextWithLookupError(context.Background(), lookupErr)

	if _, err := RequireRole(ctx, models.RoleUser); !errors.Is(err, apperr.ErrTransientStore) {
		t.Fatalf("expected ErrTransientStore, got %v", err)
	}
	if Caller(ctx).ID != 0 {
		t.Fatal("lookup failure should leave the caller anonymous")
	}

	// A resolved identity wins over a stale lookup error.
	ctx = ContextWithIdentity(ctx, &models.Identity{ID: 3, Role: models.RoleUser})
	if _, err := RequireRole(ctx, models.RoleUser); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}
