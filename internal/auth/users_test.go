package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukyu/ledger/internal/models"
)

type fakeUserRepository struct {
	byEmail map[string]*models.User
}

func (f *fakeUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return f.byEmail[email], nil
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("0123456789abcdef0123456789abcdef", 0, false)
	require.NoError(t, err)
	return ts
}

func TestService_Login_Succeeds(t *testing.T) {
	hash, err := HashPassword("correct-horse-battery-staple")
	require.NoError(t, err)

	repo := &fakeUserRepository{byEmail: map[string]*models.User{
		"taro@example.com": {
			Base:         models.Base{ID: "u1"},
			Email:        "taro@example.com",
			PasswordHash: hash,
			Role:         models.RoleUser,
			IsActive:     true,
		},
	}}
	svc := NewService(repo, newTestTokenService(t))

	token, user, err := svc.Login(context.Background(), "taro@example.com", "correct-horse-battery-staple")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "u1", user.ID)
}

func TestService_Login_UnknownEmailIsInvalidCredentials(t *testing.T) {
	repo := &fakeUserRepository{byEmail: map[string]*models.User{}}
	svc := NewService(repo, newTestTokenService(t))

	_, _, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_WrongPasswordIsInvalidCredentials(t *testing.T) {
	hash, err := HashPassword("the-real-password")
	require.NoError(t, err)
	repo := &fakeUserRepository{byEmail: map[string]*models.User{
		"taro@example.com": {Base: models.Base{ID: "u1"}, Email: "taro@example.com", PasswordHash: hash, IsActive: true},
	}}
	svc := NewService(repo, newTestTokenService(t))

	_, _, err = svc.Login(context.Background(), "taro@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Login_DisabledAccountRejected(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	repo := &fakeUserRepository{byEmail: map[string]*models.User{
		"taro@example.com": {Base: models.Base{ID: "u1"}, Email: "taro@example.com", PasswordHash: hash, IsActive: false},
	}}
	svc := NewService(repo, newTestTokenService(t))

	_, _, err = svc.Login(context.Background(), "taro@example.com", "pw")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}
