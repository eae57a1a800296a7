package authz

import (
	"context"
	"errors"

	"github.com/RaZoom-Team/prod-team-final-2025-sub000/internal/models"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
)

type AuthUser struct {
	ID    int64
	Email string
	Role  models.Role
}

func (u *AuthUser) IsStaff() bool {
	return u != nil && u.Role.IsStaff()
}

func (u *AuthUser) IsOwner() bool {
	return u != nil && u.Role == models.RoleOwner
}

type userContextKey struct{}

func ContextWithUser(ctx context.Context, user *AuthUser) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext retrieves the AuthUser stored in ctx.
// It returns nil if ctx is nil, if no user is stored, or if the stored value has a different type.
func UserFromContext(ctx context.Context) *AuthUser {
	if ctx == nil {
		return nil
	}

	user, ok := ctx.Value(userContextKey{}).(*AuthUser)
	if !ok {
		return nil
	}

	return user
}

// RequireUser returns the authenticated user or ErrUnauthenticated.
func RequireUser(ctx context.Context) (*AuthUser, error) {
	user := UserFromContext(ctx)
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequireStaff allows admins and owners.
func RequireStaff(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsStaff() {
		return ErrForbidden
	}
	return nil
}

// RequireOwner allows owners only.
func RequireOwner(ctx context.Context) error {
	user := UserFromContext(ctx)
	if user == nil {
		return ErrUnauthenticated
	}
	if !user.IsOwner() {
		return ErrForbidden
	}
	return nil
}

// CanActOnVisit reports whether user may cancel or reschedule a visit owned
// by ownerID. Staff may act on any visit.
func CanActOnVisit(user *AuthUser, ownerID int64) error {
	if user == nil {
		return ErrUnauthenticated
	}
	if user.IsStaff() || user.ID == ownerID {
		return nil
	}
	return ErrForbidden
}

// CanChangeRole reports whether requester may set target's role. Only owners
// manage roles and an owner may not demote themselves.
func CanChangeRole(requester *AuthUser, targetID int64, newRole models.Role) error {
	if requester == nil {
		return ErrUnauthenticated
	}
	if !requester.IsOwner() {
		return ErrForbidden
	}
	if requester.ID == targetID && newRole != models.RoleOwner {
		return ErrForbidden
	}
	return nil
}
