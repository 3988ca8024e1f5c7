// Package auth provides user registration, login and token handling.
package auth

import (
	"net/mail"
	"time"
	"unicode/utf8"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
)

// Role is a user's authorization level.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Field limits for registration.
const (
	NicknameMinLen = 1
	NicknameMaxLen = 20
	PasswordMinLen = 3
	PasswordMaxLen = 8
)

// User is a registered account.
type User struct {
	ID           id.ID     `db:"id" json:"id"`
	Nickname     string    `db:"nickname" json:"nickname"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates an unsaved user with the default role.
func NewUser(nickname, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Nickname:     nickname,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TokenType distinguishes access from refresh tokens.
type TokenType string

const (
	TokenAccess  TokenType = "access"
	TokenRefresh TokenType = "refresh"
)

// TokenPair is returned by register and login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Credentials for login.
type Credentials struct {
	Email    string
	Password string
}

// RegisterRequest for email registration.
type RegisterRequest struct {
	Nickname string
	Email    string
	Password string
}

// Validate checks field lengths and the email format.
func (r RegisterRequest) Validate() error {
	if n := utf8.RuneCountInString(r.Nickname); n < NicknameMinLen || n > NicknameMaxLen {
		return apperror.NewValidation("nickname must be 1 to 20 characters").WithDetail("field", "nickname")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil || r.Email == "" {
		return apperror.NewValidation("email is not valid").WithDetail("field", "email")
	}
	if n := utf8.RuneCountInString(r.Password); n < PasswordMinLen || n > PasswordMaxLen {
		return apperror.NewValidation("password must be 3 to 8 characters").WithDetail("field", "password")
	}
	return nil
}
