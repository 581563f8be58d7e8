package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fintrack/internal/cache"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

const (
	accessTokenKeyPrefix = "access_token:"
	// resolveCacheTTL bounds how long a revoked token can still resolve
	// through the cache after RevokeAll.
	resolveCacheTTL = 30 * time.Second
)

// TokenIssuerInterface defines the bearer-token lifecycle operations.
type TokenIssuerInterface interface {
	Mint(ctx context.Context, user *model.User) (string, error)
	Resolve(ctx context.Context, claims *Claims) (*model.User, error)
	RevokeAll(ctx context.Context, userID uint) error
}

// TokenIssuer mints revocable bearer tokens. A token is a signed JWT whose
// jti is backed by a database row; revocation deletes rows, so every
// outstanding token for a user dies together on logout.
type TokenIssuer struct {
	jwt    *JWTService
	tokens repository.AccessTokenRepository
	users  repository.UserRepository
	cache  *cache.Client
}

// Ensure TokenIssuer implements TokenIssuerInterface
var _ TokenIssuerInterface = (*TokenIssuer)(nil)

// NewTokenIssuer creates a new token issuer.
func NewTokenIssuer(jwt *JWTService, tokens repository.AccessTokenRepository, users repository.UserRepository, cache *cache.Client) *TokenIssuer {
	return &TokenIssuer{jwt: jwt, tokens: tokens, users: users, cache: cache}
}

// Mint issues a new token for the user. Previously issued tokens stay valid,
// so concurrent logins from different clients coexist.
func (i *TokenIssuer) Mint(ctx context.Context, user *model.User) (string, error) {
	tokenID := uuid.New().String()

	signed, err := i.jwt.GenerateAccessToken(user.ID, user.Email, tokenID)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	record := &model.AccessToken{
		ID:        tokenID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(AccessTokenExpiry),
	}
	if err := i.tokens.Create(ctx, record); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}

	return signed, nil
}

// Resolve maps validated claims to the owning user, rejecting tokens whose
// record has been revoked or has expired. Positive lookups are cached
// briefly; the cache is fail-safe, so the database stays authoritative.
func (i *TokenIssuer) Resolve(ctx context.Context, claims *Claims) (*model.User, error) {
	key := accessTokenKeyPrefix + claims.ID

	if data, _ := i.cache.Get(ctx, key); data == nil {
		record, err := i.tokens.FindByID(ctx, claims.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.ErrTokenRevoked
			}
			return nil, fmt.Errorf("look up access token: %w", err)
		}
		if time.Now().After(record.ExpiresAt) {
			return nil, errs.ErrTokenRevoked
		}
		_ = i.cache.Set(ctx, key, []byte("1"), resolveCacheTTL)
	}

	user, err := i.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTokenRevoked
		}
		return nil, fmt.Errorf("look up token user: %w", err)
	}
	return user, nil
}

// RevokeAll deletes every token record for the user, then the cache entries,
// in that order so a crash between the two leaves only the short cache TTL
// as exposure.
func (i *TokenIssuer) RevokeAll(ctx context.Context, userID uint) error {
	ids, err := i.tokens.ListIDsByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list access tokens: %w", err)
	}
	if err := i.tokens.DeleteByUser(ctx, userID); err != nil {
		return fmt.Errorf("delete access tokens: %w", err)
	}
	for _, id := range ids {
		_ = i.cache.Delete(ctx, accessTokenKeyPrefix+id)
	}
	return nil
}
