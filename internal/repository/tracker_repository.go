package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fintrack/internal/model"
)

// TrackerRepository defines tracker persistence operations.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *model.Tracker) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tracker, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Tracker, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type trackerRepository struct {
	db *gorm.DB
}

// NewTrackerRepository builds a GORM-backed repository.
func NewTrackerRepository(db *gorm.DB) TrackerRepository {
	return &trackerRepository{db: db}
}

func (r *trackerRepository) Create(ctx context.Context, tracker *model.Tracker) error {
	return r.db.WithContext(ctx).Create(tracker).Error
}

func (r *trackerRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tracker, error) {
	var tracker model.Tracker
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tracker).Error; err != nil {
		return nil, err
	}
	return &tracker, nil
}

func (r *trackerRepository) ListByUser(ctx context.Context, userID uint) ([]model.Tracker, error) {
	var trackers []model.Tracker
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&trackers).Error; err != nil {
		return nil, err
	}
	return trackers, nil
}

func (r *trackerRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Tracker{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *trackerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Tracker{}).Error
}
