package domain

import (
	"context"
	"errors"
)

// User is the authenticated principal attached to a request.
type User struct {
	ID   string
	Name string
	Role Role
}

// Role represents a user's access level
type Role string

const (
	// RoleAdmin has full access to all operations
	RoleAdmin Role = "admin"

	// RoleOwner is the clinic owner; same ledger rights as admin
	RoleOwner Role = "owner"

	// RoleCashier operates the till
	RoleCashier Role = "cashier"
)

var validRoles = map[Role]bool{
	RoleAdmin:   true,
	RoleOwner:   true,
	RoleCashier: true,
}

// IsValid checks if the role is a valid role
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanOperateLedger reports whether the role may open/close shifts and post transactions.
func (r Role) CanOperateLedger() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleCashier
}

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)

type userContextKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	return user, ok && user != nil
}

// ActorFromContext returns the acting user id, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok && user.ID != "" {
		return user.ID
	}
	return SystemActor
}
