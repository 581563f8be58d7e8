package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const (
	// ResetTokenExpiry is the window within which an issued reset token can
	// be redeemed, measured from the record's creation timestamp.
	ResetTokenExpiry = 60 * time.Minute

	resetTokenBytes = 32
	resetBcryptCost = 10
)

// ResetBrokerInterface defines the single-use reset token lifecycle:
// no token -> issued -> consumed or expired.
type ResetBrokerInterface interface {
	Issue(ctx context.Context, email string) (string, error)
	Validate(ctx context.Context, email, token string) error
	Consume(ctx context.Context, email string) error
}

// ResetBroker issues and validates time-boxed single-use password reset
// tokens. Only a bcrypt hash of the token is stored; issuing again for the
// same email overwrites the previous record.
type ResetBroker struct {
	resets repository.PasswordResetRepository
	now    func() time.Time
}

// Ensure ResetBroker implements ResetBrokerInterface
var _ ResetBrokerInterface = (*ResetBroker)(nil)

// NewResetBroker creates a new reset broker.
func NewResetBroker(resets repository.PasswordResetRepository) *ResetBroker {
	return &ResetBroker{resets: resets, now: time.Now}
}

// Issue creates a fresh reset token for the email and returns the plaintext,
// which exists only in the returned value and the outbound notification.
func (b *ResetBroker) Issue(ctx context.Context, email string) (string, error) {
	raw := make([]byte, resetTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)

	hash, err := bcrypt.GenerateFromPassword([]byte(token), resetBcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash reset token: %w", err)
	}

	record := &model.PasswordResetToken{
		Email:     email,
		Token:     string(hash),
		CreatedAt: b.now(),
	}
	if err := b.resets.Upsert(ctx, record); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}

	return token, nil
}

// Validate checks the token against the stored hash and the expiry window.
// Every failure mode collapses into ErrInvalidResetToken so callers cannot
// tell a wrong token from an expired or missing one.
func (b *ResetBroker) Validate(ctx context.Context, email, token string) error {
	record, err := b.resets.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrInvalidResetToken
		}
		return fmt.Errorf("look up reset token: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(record.Token), []byte(token)) != nil {
		return errs.ErrInvalidResetToken
	}

	if b.now().Sub(record.CreatedAt) > ResetTokenExpiry {
		return errs.ErrInvalidResetToken
	}

	return nil
}

// Consume deletes the record so the token cannot be replayed.
func (b *ResetBroker) Consume(ctx context.Context, email string) error {
	if err := b.resets.DeleteByEmail(ctx, email); err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	return nil
}
