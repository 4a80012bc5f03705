package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong    = errors.New("password must be at most 72 bytes")
	ErrUserNotFound       = errors.New("user not found")
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs
	maxPasswordBytes = 72
)

// AccountHook is told about every account that registers or signs in.
// Implementations must be idempotent.
type AccountHook interface {
	AccountCreated(ctx context.Context, userID uuid.UUID) error
}

type Service struct {
	repo     Repository
	tokens   *TokenManager
	logger   *zap.Logger
	validate *validator.Validate
	hook     AccountHook
	cost     int
}

func NewService(repo Repository, tokens *TokenManager, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		logger:   logger,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
	}
}

// SetAccountHook installs hook; nil disables it.
func (s *Service) SetAccountHook(hook AccountHook) {
	s.hook = hook
}

// notifyAccount never fails the request; a missed call is repeated on the
// next login.
func (s *Service) notifyAccount(ctx context.Context, userID uuid.UUID) {
	if s.hook == nil {
		return
	}
	if err := s.hook.AccountCreated(ctx, userID); err != nil {
		s.logger.Error("Account hook failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

func (s *Service) validateCredentials(email, password string) error {
	if email == "" || s.validate.Var(email, "email") != nil {
		return ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Register(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	email := normalizeEmail(creds.Email)
	if err := s.validateCredentials(email, creds.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	s.notifyAccount(ctx, user.ID)
	return s.respond(user)
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(creds.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	s.notifyAccount(ctx, user.ID)
	return s.respond(user)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *Service) respond(user *User) (*AuthResponse, error) {
	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expires}, nil
}
