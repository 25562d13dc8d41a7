// Package actor provides the explicit actor identity passed into every core
// operation that needs attribution. Nothing in the domain reads ambient
// session state; the actor always arrives through context set by the
// auth middleware (or directly in tests).
package actor

import (
	"context"
)

// Role is the coarse permission level of a user.
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleInternalEmployee Role = "INTERNAL_EMPLOYEE"
	RoleContractor       Role = "CONTRACTOR"
)

// Actor identifies who performed an operation.
type Actor struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// IsZero reports whether the actor carries no identity.
func (a Actor) IsZero() bool {
	return a.UserID == ""
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type actorKey struct{}

// WithActor adds the actor to context.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// FromContext returns the actor from context, or a zero actor.
func FromContext(ctx context.Context) Actor {
	if a, ok := ctx.Value(actorKey{}).(Actor); ok {
		return a
	}
	return Actor{}
}

// UserID returns the acting user id from context or empty string.
func UserID(ctx context.Context) string {
	return FromContext(ctx).UserID
}

// HasRole checks if the context actor has the given role.
func HasRole(ctx context.Context, role Role) bool {
	return FromContext(ctx).Role == role
}
