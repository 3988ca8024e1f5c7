package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
	"postboard/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	// HashCost is the bcrypt cost (HASH_ROUNDS).
	HashCost int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{HashCost: 10}
}

// Service registers and authenticates users.
type Service struct {
	users  UserRepository
	tokens *JWTService
	config ServiceConfig
}

// NewService creates a new auth service.
func NewService(users UserRepository, tokens *JWTService, config ServiceConfig) *Service {
	if config.HashCost < bcrypt.MinCost || config.HashCost > bcrypt.MaxCost {
		config.HashCost = bcrypt.DefaultCost
	}
	return &Service{users: users, tokens: tokens, config: config}
}

// RegisterWithEmail creates an account and logs it in.
func (s *Service) RegisterWithEmail(ctx context.Context, req RegisterRequest) (*TokenPair, error) {
	user, err := s.createUser(ctx, req, RoleUser)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "user registered", "user_id", user.ID, "email", user.Email)
	return s.tokens.IssuePair(user)
}

// EnsureAdmin creates an ADMIN account unless req.Email is already registered.
// It reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, req RegisterRequest) (*User, bool, error) {
	existing, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return existing, false, nil
	}
	if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	user, err := s.createUser(ctx, req, RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	logger.Info(ctx, "admin created", "user_id", user.ID, "email", user.Email)
	return user, true, nil
}

func (s *Service) createUser(ctx context.Context, req RegisterRequest, role Role) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByNickname(ctx, req.Nickname)
	if err != nil {
		return nil, fmt.Errorf("check nickname exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "nickname", req.Nickname)
	}

	exists, err = s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.HashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(req.Nickname, req.Email, string(hash))
	user.Role = role
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginWithEmail verifies credentials and issues tokens.
func (s *Service) LoginWithEmail(ctx context.Context, creds Credentials) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, creds)
	if err != nil {
		return nil, err
	}
	return s.tokens.IssuePair(user)
}

// LoginWithBasic logs in from an "Authorization: Basic ..." header value.
func (s *Service) LoginWithBasic(ctx context.Context, header string) (*TokenPair, error) {
	token, err := ExtractToken(header, SchemeBasic)
	if err != nil {
		return nil, err
	}
	creds, err := DecodeBasic(token)
	if err != nil {
		return nil, err
	}
	return s.LoginWithEmail(ctx, creds)
}

// Authenticate returns the user owning creds.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*User, error) {
	user, err := s.users.GetByEmail(ctx, creds.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("user does not exist")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Warn(ctx, "login failed", "user_id", user.ID)
			return nil, apperror.NewUnauthorized("wrong password")
		}
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return user, nil
}

// RotateToken reissues a token of type to from a "Bearer <refresh>" header value.
func (s *Service) RotateToken(header string, to TokenType) (string, error) {
	token, err := ExtractToken(header, SchemeBearer)
	if err != nil {
		return "", err
	}
	return s.tokens.Rotate(token, to)
}

// GetUser returns the user with userID.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, userID)
}
