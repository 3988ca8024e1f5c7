// Package auth_repo provides PostgreSQL implementations for auth repositories.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/internal/domain/auth"
	"postboard/internal/infrastructure/storage/postgres"
)

const usersTable = "users"

var userColumns = postgres.ExtractDBColumns[auth.User]()

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *postgres.TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *postgres.TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

// Create inserts a user and sets its ID.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	sql, args, err := postgres.Builder().
		Insert(usersTable).
		SetMap(postgres.StructToMap(user, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&user.ID); err != nil {
		return postgres.MapError("insert user", "user", err)
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"email": email}, email)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*auth.User, error) {
	sql, args, err := postgres.Builder().
		Select(userColumns...).
		From(usersTable).
		Where(where).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, postgres.MapError("get user", "user", err)
	}
	return &user, nil
}

// ExistsByEmail checks if email is taken.
func (r *UserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"email": email})
}

// ExistsByNickname checks if nickname is taken.
func (r *UserRepo) ExistsByNickname(ctx context.Context, nickname string) (bool, error) {
	return r.exists(ctx, squirrel.Eq{"nickname": nickname})
}

func (r *UserRepo) exists(ctx context.Context, where squirrel.Eq) (bool, error) {
	sub := postgres.Builder().Select("1").From(usersTable).Where(where)
	sql, args, err := postgres.Builder().
		Select().
		Column(squirrel.Expr("EXISTS (?)", sub)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, postgres.MapError("user exists", "user", err)
	}
	return exists, nil
}
