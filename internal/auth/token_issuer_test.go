package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"fintrack/internal/cache"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
)

// fakeTokenRepository keeps access token records in memory keyed by jti.
type fakeTokenRepository struct {
	records map[string]model.AccessToken
}

func newFakeTokenRepository() *fakeTokenRepository {
	return &fakeTokenRepository{records: map[string]model.AccessToken{}}
}

func (r *fakeTokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	r.records[token.ID] = *token
	return nil
}

func (r *fakeTokenRepository) FindByID(ctx context.Context, id string) (*model.AccessToken, error) {
	record, ok := r.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

func (r *fakeTokenRepository) ListIDsByUser(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	for id, record := range r.records {
		if record.UserID == userID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *fakeTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	for id, record := range r.records {
		if record.UserID == userID {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *fakeTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, record := range r.records {
		if time.Now().After(record.ExpiresAt) {
			delete(r.records, id)
			n++
		}
	}
	return n, nil
}

// fakeUserRepository serves a fixed set of users by ID.
type fakeUserRepository struct {
	users map[uint]model.User
}

func (r *fakeUserRepository) Create(ctx context.Context, user *model.User) error { return nil }

func (r *fakeUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *fakeUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return nil
}

func (r *fakeUserRepository) UpdateAvatar(ctx context.Context, id uint, avatar *string) error {
	return nil
}

func newTestIssuer(t *testing.T) (*TokenIssuer, *JWTService, *fakeTokenRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	cacheClient := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	jwtService := NewJWTService("test-secret")
	tokens := newFakeTokenRepository()
	users := &fakeUserRepository{users: map[uint]model.User{
		7: {ID: 7, Email: "test@example.com"},
	}}
	return NewTokenIssuer(jwtService, tokens, users, cacheClient), jwtService, tokens
}

func TestTokenIssuer_MintAndResolve(t *testing.T) {
	issuer, jwtService, _ := newTestIssuer(t)
	ctx := context.Background()

	signed, err := issuer.Mint(ctx, &model.User{ID: 7, Email: "test@example.com"})
	assert.NoError(t, err)

	claims, err := jwtService.ValidateToken(signed)
	assert.NoError(t, err)

	user, err := issuer.Resolve(ctx, claims)
	assert.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
}

func TestTokenIssuer_RevokeAllKillsEveryToken(t *testing.T) {
	issuer, jwtService, _ := newTestIssuer(t)
	ctx := context.Background()
	user := &model.User{ID: 7, Email: "test@example.com"}

	first, err := issuer.Mint(ctx, user)
	assert.NoError(t, err)
	second, err := issuer.Mint(ctx, user)
	assert.NoError(t, err)

	assert.NoError(t, issuer.RevokeAll(ctx, 7))

	for _, signed := range []string{first, second} {
		claims, err := jwtService.ValidateToken(signed)
		assert.NoError(t, err)

		_, err = issuer.Resolve(ctx, claims)
		assert.ErrorIs(t, err, errs.ErrTokenRevoked)
	}
}

func TestTokenIssuer_ExpiredRecordIsRejected(t *testing.T) {
	issuer, jwtService, tokens := newTestIssuer(t)
	ctx := context.Background()

	signed, err := issuer.Mint(ctx, &model.User{ID: 7, Email: "test@example.com"})
	assert.NoError(t, err)

	claims, err := jwtService.ValidateToken(signed)
	assert.NoError(t, err)

	record := tokens.records[claims.ID]
	record.ExpiresAt = time.Now().Add(-time.Minute)
	tokens.records[claims.ID] = record

	_, err = issuer.Resolve(ctx, claims)
	assert.ErrorIs(t, err, errs.ErrTokenRevoked)
}
