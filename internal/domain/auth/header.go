package auth

import (
	"encoding/base64"
	"strings"

	"postboard/internal/core/apperror"
)

// Scheme is an Authorization header scheme.
type Scheme string

const (
	SchemeBasic  Scheme = "Basic"
	SchemeBearer Scheme = "Bearer"
)

// ExtractToken returns the credential part of "<scheme> <token>".
func ExtractToken(header string, scheme Scheme) (string, error) {
	if header == "" {
		return "", apperror.NewUnauthorized("authorization header is missing")
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != string(scheme) || parts[1] == "" {
		return "", apperror.NewUnauthorized("malformed token").WithDetail("scheme", string(scheme))
	}
	return parts[1], nil
}

// DecodeBasic decodes base64("email:password").
func DecodeBasic(token string) (Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Credentials{}, apperror.NewUnauthorized("malformed basic token").WithCause(err)
	}
	parts := strings.Split(string(raw), ":")
	if len(parts) != 2 {
		return Credentials{}, apperror.NewUnauthorized("malformed basic token")
	}
	return Credentials{Email: parts[0], Password: parts[1]}, nil
}
