package memory

import (
	"context"
	"time"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	store *Store
}

// NewUserRepo creates a user repository over store.
func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{store: store}
}

// Create inserts a user; email and nickname are unique.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	defer r.store.lockWrite(ctx)()

	for _, u := range r.store.users {
		if u.Email == user.Email {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		if u.Nickname == user.Nickname {
			return apperror.NewDuplicate("user", "nickname", user.Nickname)
		}
	}

	user.ID = r.store.nextID("users")
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	user.UpdatedAt = user.CreatedAt
	r.store.users[user.ID] = *user
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(_ context.Context, userID id.ID) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	return &u, nil
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

// ExistsByEmail checks if email is taken.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ExistsByNickname checks if nickname is taken.
func (r *UserRepo) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}
