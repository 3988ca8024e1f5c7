package auth

import (
	"context"

	"postboard/internal/core/id"
)

// UserRepository defines user storage operations.
type UserRepository interface {
	// Create inserts user and sets its ID.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves user by ID.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetByEmail retrieves user by email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// ExistsByNickname checks if nickname is taken.
	ExistsByNickname(ctx context.Context, nickname string) (bool, error)
}
