// Package authz carries the verified caller through a request context and
// answers role questions about it.
package authz

import (
	"context"

	"github.com/codr1/courtbook/internal/apperr"
	"github.com/codr1/courtbook/internal/models"
)

type identityContextKey struct{}

type lookupErrorContextKey struct{}

func ContextWithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext retrieves the identity stored in ctx.
// It returns nil for anonymous requests.
func IdentityFromContext(ctx context.Context) *models.Identity {
	if ctx == nil {
		return nil
	}
	identity, ok := ctx.Value(identityContextKey{}).(*models.Identity)
	if !ok {
		return nil
	}
	return identity
}

// ContextWithLookupError records that the request presented credentials
// that could not be checked, so routes that need a caller fail with err
// instead of treating the request as anonymous.
func ContextWithLookupError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, lookupErrorContextKey{}, err)
}

// LookupError returns the error stored by ContextWithLookupError, or nil.
func LookupError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	err, _ := ctx.Value(lookupErrorContextKey{}).(error)
	return err
}

// Caller returns the identity in ctx, or the zero identity when anonymous.
func Caller(ctx context.Context) models.Identity {
	if identity := IdentityFromContext(ctx); identity != nil {
		return *identity
	}
	return models.Identity{}
}

func RequireAuthenticated(ctx context.Context) (models.Identity, error) {
	identity := IdentityFromContext(ctx)
	if identity == nil || identity.ID <= 0 {
		if err := LookupError(ctx); err != nil {
			return models.Identity{}, err
		}
		return models.Identity{}, apperr.Unauthenticated("authentication required")
	}
	return *identity, nil
}

// RequireRole checks the caller holds role. Admins satisfy every role.
func RequireRole(ctx context.Context, role models.Role) (models.Identity, error) {
	identity, err := RequireAuthenticated(ctx)
	if err != nil {
		return models.Identity{}, err
	}
	if identity.Role != role && !identity.IsAdmin() {
		return models.Identity{}, apperr.Forbidden(string(role) + " role required")
	}
	return identity, nil
}
