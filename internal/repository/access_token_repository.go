package repository

import (
	"context"

	"gorm.io/gorm"

	"fintrack/internal/model"
)

// AccessTokenRepository persists one row per issued bearer token.
type AccessTokenRepository interface {
	Create(ctx context.Context, token *model.AccessToken) error
	FindByID(ctx context.Context, id string) (*model.AccessToken, error)
	// ListIDsByUser returns the jti values of every live token for a user,
	// letting callers purge per-token cache entries alongside the rows.
	ListIDsByUser(ctx context.Context, userID uint) ([]string, error)
	DeleteByUser(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) (int64, error)
}

type accessTokenRepository struct {
	db *gorm.DB
}

// NewAccessTokenRepository builds a GORM-backed repository.
func NewAccessTokenRepository(db *gorm.DB) AccessTokenRepository {
	return &accessTokenRepository{db: db}
}

func (r *accessTokenRepository) Create(ctx context.Context, token *model.AccessToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *accessTokenRepository) FindByID(ctx context.Context, id string) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *accessTokenRepository) ListIDsByUser(ctx context.Context, userID uint) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.AccessToken{}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *accessTokenRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.AccessToken{}).Error
}

func (r *accessTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < NOW()").
		Delete(&model.AccessToken{})
	return res.RowsAffected, res.Error
}
