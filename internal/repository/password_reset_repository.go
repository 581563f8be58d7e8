package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fintrack/internal/model"
)

// PasswordResetRepository persists at most one reset record per email.
type PasswordResetRepository interface {
	// Upsert replaces any existing record for the email in a single atomic
	// statement, so issuing never accumulates tokens.
	Upsert(ctx context.Context, record *model.PasswordResetToken) error
	FindByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error)
	DeleteByEmail(ctx context.Context, email string) error
}

type passwordResetRepository struct {
	db *gorm.DB
}

// NewPasswordResetRepository builds a GORM-backed repository.
func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Upsert(ctx context.Context, record *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "created_at"}),
	}).Create(record).Error
}

func (r *passwordResetRepository) FindByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error) {
	var record model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *passwordResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&model.PasswordResetToken{}).Error
}
