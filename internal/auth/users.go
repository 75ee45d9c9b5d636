package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukyu/ledger/internal/models"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Service.Login on any failure that
// must not distinguish "no such user" from "wrong password" to the caller.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// ErrAccountDisabled is returned by Service.Login for a user row with
// IsActive = false.
var ErrAccountDisabled = errors.New("auth: account is disabled")

// UserRepository is the storage contract Service needs for login. Declared
// here, next to its one caller, rather than as a general-purpose user CRUD
// surface the rest of the module has no use for.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// GORMUserRepository implements UserRepository against the users table.
type GORMUserRepository struct {
	db *gorm.DB
}

func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{db: db}
}

func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// Service issues bearer tokens for validated credentials (§4.5). It wraps
// TokenService with the one concrete UserRepository lookup the ApiPlane
// login route needs, keeping the constant-time-masked not-found branch in
// one place.
type Service struct {
	users  UserRepository
	tokens *TokenService
}

func NewService(users UserRepository, tokens *TokenService) *Service {
	return &Service{users: users, tokens: tokens}
}

// Login validates email/password and issues an access token. The not-found
// and wrong-password branches are indistinguishable to the caller and cost
// the same time: VerifyPassword always runs a bcrypt comparison, against a
// dummy hash when no user was found.
func (s *Service) Login(ctx context.Context, email, password string) (token string, user *models.User, err error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}

	storedHash := ""
	if u != nil {
		storedHash = u.PasswordHash
	}
	if !VerifyPassword(storedHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	if !u.IsActive {
		return "", nil, ErrAccountDisabled
	}

	accessToken, err := s.tokens.GenerateAccessToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", nil, fmt.Errorf("login: %w", err)
	}
	return accessToken, u, nil
}
