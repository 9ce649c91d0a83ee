package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/easyreads/easyreads/internal/config"
	"github.com/easyreads/easyreads/internal/entities"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("user already exists")
	ErrInvalidToken     = errors.New("invalid token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUsernameRequired = errors.New("username is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrUsernameInvalid  = errors.New("username must be 3-64 characters: letters, digits, dot, underscore or hyphen")
)

// UserRepository is the storage the service needs.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

// Service handles registration, credential checks and bearer tokens.
type Service struct {
	users     UserRepository
	config    config.Auth
	jwtSecret []byte
}

// NewService creates a new authentication service. Tokens are signed with
// the JWT secret, falling back to the session secret, and finally to a random
// secret that does not survive restarts.
func NewService(users UserRepository, cfg config.Auth) *Service {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = cfg.SessionSecret
	}
	if secret == "" {
		generated, err := GenerateSecret()
		if err != nil {
			log.Printf("Warning: failed to generate token secret: %v", err)
		}
		secret = generated
		log.Printf("No AUTH_JWT_SECRET configured, API tokens will not survive restarts")
	}
	if cfg.TokenExpiry <= 0 {
		cfg.TokenExpiry = 30 * 24 * time.Hour
	}

	return &Service{
		users:     users,
		config:    cfg,
		jwtSecret: []byte(secret),
	}
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, username, password string) (*entities.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if !usernamePattern.MatchString(username) {
		return nil, ErrUsernameInvalid
	}

	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{Username: username, Password: hash}
	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent registration can win between the check and the insert.
		if taken, _ := s.users.Exists(ctx, username); taken {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate validates credentials and returns the user.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*entities.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.Password); err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken authenticates and returns a signed bearer token.
func (s *Service) IssueToken(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", time.Time{}, err
	}
	return SignJWT(s.jwtSecret, user.Username, s.config.TokenExpiry)
}

// ValidateToken checks a bearer token and returns the username it was issued to.
func (s *Service) ValidateToken(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidToken
	}
	claims, err := ParseJWT(s.jwtSecret, token)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// ChangePassword updates a user's password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, username, oldPassword); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, username, hash)
}

// HasUsers returns true if any users exist.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
