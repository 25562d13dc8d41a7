package dto

import (
	"time"

	"aurotex/internal/core/actor"
	"aurotex/internal/core/id"
	"aurotex/internal/domain/auth"
)

// RegisterRequest creates a user account. Admin only.
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	Name         string `json:"name"`
	Role         string `json:"role" binding:"required"`
	ContractorID string `json:"contractorId"`
}

// ToAuthRequest converts the request to the domain form.
func (r RegisterRequest) ToAuthRequest() (auth.RegisterRequest, error) {
	req := auth.RegisterRequest{
		Email:    r.Email,
		Password: r.Password,
		Name:     r.Name,
		Role:     actor.Role(r.Role),
	}
	if r.ContractorID != "" {
		contractorID, err := id.Parse(r.ContractorID)
		if err != nil {
			return auth.RegisterRequest{}, err
		}
		req.ContractorID = &contractorID
	}
	return req, nil
}

// LoginRequest for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts the request to domain credentials.
func (r LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{Email: r.Email, Password: r.Password}
}

// RefreshTokenRequest exchanges a refresh token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// SetActiveRequest enables or disables an account.
type SetActiveRequest struct {
	Active bool `json:"active"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name,omitempty"`
	Role         string     `json:"role"`
	ContractorID *string    `json:"contractorId,omitempty"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// FromUser creates UserResponse from a domain user.
func FromUser(u *auth.User) UserResponse {
	resp := UserResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
	if u.ContractorID != nil {
		s := u.ContractorID.String()
		resp.ContractorID = &s
	}
	return resp
}

// LoginResponse bundles tokens with the authenticated user.
type LoginResponse struct {
	Tokens *auth.TokenPair `json:"tokens"`
	User   UserResponse    `json:"user"`
}
