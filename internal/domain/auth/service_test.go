package auth

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/core/apperror"
	"postboard/internal/core/id"
)

type fakeUsers struct {
	byID map[id.ID]*User
	next id.ID
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[id.ID]*User{}}
}

func (f *fakeUsers) Create(_ context.Context, u *User) error {
	f.next++
	u.ID = f.next
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, userID id.ID) (*User, error) {
	if u, ok := f.byID[userID]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(ctx, email)
	return err == nil, nil
}

func (f *fakeUsers) ExistsByNickname(_ context.Context, nickname string) (bool, error) {
	for _, u := range f.byID {
		if u.Nickname == nickname {
			return true, nil
		}
	}
	return false, nil
}

func newTestService() (*Service, *JWTService) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(newFakeUsers(), jwtSvc, ServiceConfig{HashCost: bcrypt.MinCost}), jwtSvc
}

func basic(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func TestService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, jwtSvc := newTestService()

	pair, err := svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "alice", Email: "alice@example.com", Password: "secret"})
	require.NoError(t, err)

	claims, err := jwtSvc.Verify(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.Type)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "1", claims.Subject)

	claims, err = jwtSvc.Verify(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.Type)

	pair, err = svc.LoginWithBasic(ctx, basic("alice@example.com", "secret"))
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	user, err := svc.GetUser(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, user.Role)
	assert.NotEqual(t, "secret", user.PasswordHash)
}

func TestService_RegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	_, err := svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "bob", Email: "bob@example.com", Password: "toolongpass"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "", Email: "bob@example.com", Password: "abc"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "bob", Email: "not-an-email", Password: "abc"})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "bob", Email: "bob@example.com", Password: "abc"})
	require.NoError(t, err)

	_, err = svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "bob", Email: "other@example.com", Password: "abc"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))

	_, err = svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "bobby", Email: "bob@example.com", Password: "abc"})
	assert.True(t, apperror.HasCode(err, apperror.CodeDuplicate))
}

func TestService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	_, err := svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "carol", Email: "carol@example.com", Password: "pw123"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Bearer abc"},
		{"extra parts", "Basic a b"},
		{"not base64", "Basic ***"},
		{"no colon", "Basic " + base64.StdEncoding.EncodeToString([]byte("carol@example.com"))},
		{"unknown user", basic("nobody@example.com", "pw123")},
		{"wrong password", basic("carol@example.com", "nope")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LoginWithBasic(ctx, tt.header)
			require.Error(t, err)
			assert.Equal(t, 401, apperror.GetHTTPStatus(err))
		})
	}
}

func TestService_RotateToken(t *testing.T) {
	ctx := context.Background()
	svc, jwtSvc := newTestService()
	pair, err := svc.RegisterWithEmail(ctx, RegisterRequest{Nickname: "dave", Email: "dave@example.com", Password: "pw123"})
	require.NoError(t, err)

	access, err := svc.RotateToken("Bearer "+pair.RefreshToken, TokenAccess)
	require.NoError(t, err)
	claims, err := jwtSvc.Verify(access)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims.Type)
	assert.Equal(t, "dave@example.com", claims.Email)

	refresh, err := svc.RotateToken("Bearer "+pair.RefreshToken, TokenRefresh)
	require.NoError(t, err)
	claims, err = jwtSvc.Verify(refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, claims.Type)

	_, err = svc.RotateToken("Bearer "+pair.AccessToken, TokenAccess)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, err = svc.RotateToken(pair.RefreshToken, TokenAccess)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestJWTService_Expiry(t *testing.T) {
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	jwtSvc.now = func() time.Time { return issued }

	access, err := jwtSvc.Sign(7, "e@example.com", TokenAccess)
	require.NoError(t, err)
	refresh, err := jwtSvc.Sign(7, "e@example.com", TokenRefresh)
	require.NoError(t, err)

	jwtSvc.now = func() time.Time { return issued.Add(299 * time.Second) }
	user, err := jwtSvc.ValidateToken(access, TokenAccess)
	require.NoError(t, err)
	assert.Equal(t, id.ID(7), user.UserID)

	jwtSvc.now = func() time.Time { return issued.Add(301 * time.Second) }
	_, err = jwtSvc.ValidateToken(access, TokenAccess)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	_, err = jwtSvc.ValidateToken(refresh, TokenRefresh)
	assert.NoError(t, err)

	_, err = jwtSvc.ValidateToken(refresh, TokenAccess)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))

	jwtSvc.now = func() time.Time { return issued.Add(3601 * time.Second) }
	_, err = jwtSvc.ValidateToken(refresh, TokenRefresh)
	assert.Error(t, err)
}

func TestJWTService_WrongSecret(t *testing.T) {
	signed, err := NewJWTService(DefaultJWTConfig("one")).Sign(1, "a@b.c", TokenAccess)
	require.NoError(t, err)

	_, err = NewJWTService(DefaultJWTConfig("two")).Verify(signed)
	assert.True(t, apperror.HasCode(err, apperror.CodeUnauthorized))
}

func TestService_EnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	req := RegisterRequest{Nickname: "root", Email: "admin@example.com", Password: "admin1"}

	admin, created, err := svc.EnsureAdmin(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, RoleAdmin, admin.Role)

	again, created, err := svc.EnsureAdmin(ctx, req)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, admin.ID, again.ID)

	_, err = svc.LoginWithBasic(ctx, basic("admin@example.com", "admin1"))
	assert.NoError(t, err)
}
