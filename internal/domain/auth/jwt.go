package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"postboard/internal/core/apperror"
	appctx "postboard/internal/core/context"
	"postboard/internal/core/id"
)

// JWTConfig holds JWT configuration.
type JWTConfig struct {
	Secret          string
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// DefaultJWTConfig returns 5 minute access and 1 hour refresh tokens.
func DefaultJWTConfig(secret string) JWTConfig {
	return JWTConfig{
		Secret:          secret,
		Issuer:          "postboard",
		AccessTokenTTL:  300 * time.Second,
		RefreshTokenTTL: 3600 * time.Second,
	}
}

// Claims is the token payload: email, sub (user id) and type.
type Claims struct {
	jwt.RegisteredClaims
	Email string    `json:"email"`
	Type  TokenType `json:"type"`
}

// UserID parses the subject claim.
func (c *Claims) UserID() (id.ID, error) {
	return id.Parse(c.Subject)
}

// JWTService signs and verifies tokens.
type JWTService struct {
	config JWTConfig
	now    func() time.Time
}

// NewJWTService creates a new JWT service.
func NewJWTService(config JWTConfig) *JWTService {
	return &JWTService{config: config, now: time.Now}
}

// Sign issues a token of the given type for user.
func (s *JWTService) Sign(userID id.ID, email string, typ TokenType) (string, error) {
	ttl := s.config.AccessTokenTTL
	if typ == TokenRefresh {
		ttl = s.config.RefreshTokenTTL
	}
	now := s.now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.config.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: email,
		Type:  typ,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// IssuePair signs an access and a refresh token for user.
func (s *JWTService) IssuePair(user *User) (*TokenPair, error) {
	access, err := s.Sign(user.ID, user.Email, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Sign(user.ID, user.Email, TokenRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify checks signature and expiry and returns the claims.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token").WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperror.NewUnauthorized("invalid token claims")
	}
	if claims.Type != TokenAccess && claims.Type != TokenRefresh {
		return nil, apperror.NewUnauthorized("unknown token type")
	}
	return claims, nil
}

// Rotate issues a new token of type to from a refresh token.
func (s *JWTService) Rotate(tokenString string, to TokenType) (string, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Type != TokenRefresh {
		return "", apperror.NewUnauthorized("tokens can only be reissued with a refresh token")
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", apperror.NewUnauthorized("invalid token subject")
	}
	return s.Sign(userID, claims.Email, to)
}

// ValidateToken verifies a token of the expected type and returns the request user.
func (s *JWTService) ValidateToken(tokenString string, expected TokenType) (*appctx.UserContext, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Type != expected {
		return nil, apperror.NewUnauthorized(fmt.Sprintf("%s token required", expected))
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid token subject")
	}
	return &appctx.UserContext{
		UserID:    userID,
		Email:     claims.Email,
		TokenType: string(claims.Type),
	}, nil
}
