// Package dto holds request and response bodies of the HTTP API.
package dto

import (
	"time"

	"postboard/internal/domain/auth"
)

// RegisterEmailRequest is the body of POST /auth/register/email.
type RegisterEmailRequest struct {
	Nickname string `json:"nickname" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ToAuthRequest converts to the domain request.
func (r RegisterEmailRequest) ToAuthRequest() auth.RegisterRequest {
	return auth.RegisterRequest{
		Nickname: r.Nickname,
		Email:    r.Email,
		Password: r.Password,
	}
}

// TokenResponse carries a token pair.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// FromTokenPair converts a domain token pair.
func FromTokenPair(p *auth.TokenPair) TokenResponse {
	return TokenResponse{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
}

// AccessTokenResponse is returned by POST /auth/token/access.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// RefreshTokenResponse is returned by POST /auth/token/refresh.
type RefreshTokenResponse struct {
	RefreshToken string `json:"refreshToken"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        int64     `json:"id"`
	Nickname  string    `json:"nickname"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromUser converts a domain user.
func FromUser(u *auth.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Nickname:  u.Nickname,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
