package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
)

// TokenValidator validates an access token and returns the actor it
// identifies. Implemented by auth.JWTService.
type TokenValidator interface {
	ValidateToken(tokenString string) (actor.Actor, error)
}

// Auth middleware validates the bearer token and puts the actor on the
// request context for the domain layer.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		a, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		ctx := actor.WithActor(c.Request.Context(), a)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", a.UserID)
		c.Set("role", string(a.Role))

		c.Next()
	}
}

// RequireRole allows the request through only for actors holding one of
// the given roles. Admins pass every role check.
func RequireRole(roles ...actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		a := actor.FromContext(c.Request.Context())
		if a.IsZero() {
			abortUnauthorized(c, "authentication required")
			return
		}

		if a.IsAdmin() {
			c.Next()
			return
		}

		for _, required := range roles {
			if a.Role == required {
				c.Next()
				return
			}
		}

		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		_ = c.Error(
			apperror.NewForbidden("insufficient permissions").
				WithDetail("required_roles", names),
		)
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
