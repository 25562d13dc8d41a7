// Package auth provides authentication: user accounts, password login
// with lockout, and JWT access/refresh tokens.
package auth

import (
	"context"
	"strings"
	"time"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/apperror"
	"aurotex/internal/core/id"
)

// User is a system account. Roles are a fixed enum, not a table: the
// backoffice has admins, internal employees and contractor logins.
type User struct {
	ID           id.ID      `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Name         string     `db:"name" json:"name,omitempty"`
	Role         actor.Role `db:"role" json:"role"`

	// ContractorID links a contractor login to its catalog record.
	ContractorID *id.ID `db:"contractor_id" json:"contractorId,omitempty"`

	IsActive    bool       `db:"is_active" json:"isActive"`
	LastLoginAt *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`

	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Version   int       `db:"version" json:"version"`
}

// NewUser creates an active user account.
func NewUser(email, passwordHash string, role actor.Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		Version:      1,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	switch u.Role {
	case actor.RoleAdmin, actor.RoleInternalEmployee, actor.RoleContractor:
	default:
		return apperror.NewValidation("unknown role").WithDetail("role", string(u.Role))
	}
	if u.Role == actor.RoleContractor && u.ContractorID == nil {
		return apperror.NewValidation("contractor login needs a contractor record").
			WithDetail("field", "contractorId")
	}
	return nil
}

// IsLocked reports whether the account is in a lockout window.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && time.Now().Before(*u.LockedUntil)
}

// CanLogin checks account state before password verification.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin counts a failed attempt and locks past the limit.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockedUntil = &until
	}
}

// RecordSuccessfulLogin clears the failure counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now().UTC()
	u.LastLoginAt = &now
}

// Actor converts the user into the identity carried through contexts.
func (u *User) Actor() actor.Actor {
	return actor.Actor{
		UserID: u.ID.String(),
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
	}
}

// RefreshToken is a stored, hashed refresh token.
type RefreshToken struct {
	ID            id.ID      `db:"id"`
	UserID        id.ID      `db:"user_id"`
	TokenHash     string     `db:"token_hash"`
	ExpiresAt     time.Time  `db:"expires_at"`
	CreatedAt     time.Time  `db:"created_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	RevokedReason string     `db:"revoked_reason"`
}

// IsValid reports whether the token may still be exchanged.
func (t *RefreshToken) IsValid() bool {
	return t.RevokedAt == nil && time.Now().Before(t.ExpiresAt)
}

// TokenPair is the login/refresh response payload.
type TokenPair struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	TokenType    string    `json:"tokenType"`
}

// Credentials for login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest for account creation by an admin.
type RegisterRequest struct {
	Email        string     `json:"email"`
	Password     string     `json:"password"`
	Name         string     `json:"name,omitempty"`
	Role         actor.Role `json:"role"`
	ContractorID *id.ID     `json:"contractorId,omitempty"`
}
