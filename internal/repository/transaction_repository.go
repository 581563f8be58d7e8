package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"fintrack/internal/model"
)

// TransactionFilter narrows and pages a transaction listing.
type TransactionFilter struct {
	Type    *model.TransactionType
	Order   string // "asc" or "desc" by transaction_date
	Page    int
	PerPage int
}

// TransactionRepository defines transaction persistence operations.
type TransactionRepository interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	ListByTracker(ctx context.Context, trackerID uuid.UUID, filter TransactionFilter) ([]model.Transaction, int64, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository builds a GORM-backed repository.
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *model.Transaction) error {
	return r.db.WithContext(ctx).Create(transaction).Error
}

func (r *transactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var transaction model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&transaction).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepository) ListByTracker(ctx context.Context, trackerID uuid.UUID, filter TransactionFilter) ([]model.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("tracker_id = ?", trackerID)

	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "transaction_date DESC"
	if filter.Order == "asc" {
		order = "transaction_date ASC"
	}

	var transactions []model.Transaction
	if err := query.Order(order).
		Offset((filter.Page - 1) * filter.PerPage).
		Limit(filter.PerPage).
		Find(&transactions).Error; err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *transactionRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *transactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.Transaction{}).Error
}
