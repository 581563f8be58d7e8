package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"fintrack/internal/auth"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/ratelimit"
	"fintrack/internal/repository"
)

const (
	bcryptCost = 10

	// resetThrottleKeyPrefix namespaces the reset-attempt counters.
	resetThrottleKeyPrefix = "reset-password:"
)

// AuthService orchestrates registration, login, logout and the password
// reset flow.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
	Logout(ctx context.Context, userID uint) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, token, password string) error
}

type authService struct {
	users   repository.UserRepository
	issuer  auth.TokenIssuerInterface
	broker  auth.ResetBrokerInterface
	limiter ratelimit.LimiterInterface
	mailer  ResetMailer
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	issuer auth.TokenIssuerInterface,
	broker auth.ResetBrokerInterface,
	limiter ratelimit.LimiterInterface,
	mailer ResetMailer,
) AuthService {
	return &authService{
		users:   users,
		issuer:  issuer,
		broker:  broker,
		limiter: limiter,
		mailer:  mailer,
	}
}

// Register creates a new user with a hashed password and mints a first token.
func (s *authService) Register(ctx context.Context, name, email, password string) (*model.User, string, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, "", errs.ErrEmailTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Mint(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}

	return user, token, nil
}

// Login authenticates a user and mints a fresh token without touching any
// previously issued ones. The unknown-email and wrong-password paths return
// the same error so responses stay indistinguishable.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", errs.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", errs.ErrInvalidCredentials
	}

	token, err := s.issuer.Mint(ctx, user)
	if err != nil {
		return nil, "", fmt.Errorf("mint token: %w", err)
	}

	return user, token, nil
}

// Logout revokes every outstanding token for the user.
func (s *authService) Logout(ctx context.Context, userID uint) error {
	return s.issuer.RevokeAll(ctx, userID)
}

// ForgotPassword issues a reset token when the email belongs to a known
// user. An unknown email is not an error: the caller answers identically
// either way, and only the out-of-band notification reveals anything.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("look up user: %w", err)
	}

	token, err := s.broker.Issue(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("issue reset token: %w", err)
	}

	if err := s.mailer.SendPasswordReset(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send reset notification: %w", err)
	}
	return nil
}

// ResetPassword redeems a reset token and sets a new password. Attempts are
// throttled per email; the counter is cleared only on success.
func (s *authService) ResetPassword(ctx context.Context, email, token, password string) error {
	key := resetThrottleKeyPrefix + email

	limited, err := s.limiter.TooManyAttempts(ctx, key)
	if err != nil {
		return fmt.Errorf("check reset throttle: %w", err)
	}
	if limited {
		return errs.ErrTooManyAttempts
	}
	if _, err := s.limiter.Hit(ctx, key); err != nil {
		return fmt.Errorf("record reset attempt: %w", err)
	}

	if err := s.broker.Validate(ctx, email, token); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrInvalidResetToken
		}
		return fmt.Errorf("look up user: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashedPassword)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.broker.Consume(ctx, email); err != nil {
		return err
	}

	if err := s.limiter.Clear(ctx, key); err != nil {
		return fmt.Errorf("clear reset throttle: %w", err)
	}
	return nil
}
