package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
	"fintrack/internal/storage"
)

const (
	// MaxReceiptBytes is the transaction receipt image size ceiling. It is
	// deliberately larger than the avatar ceiling; receipts are photographed
	// documents, avatars are thumbnails.
	MaxReceiptBytes = 10 << 20

	defaultPerPage = 10
	maxPerPage     = 100
)

// TransactionInput carries the fields for a new transaction.
type TransactionInput struct {
	Name            string
	Amount          decimal.Decimal
	Description     string
	Type            model.TransactionType
	TransactionDate time.Time
}

// TransactionUpdate is the allow-listed set of mutable transaction fields.
type TransactionUpdate struct {
	Name            *string
	Amount          *decimal.Decimal
	Description     *string
	TransactionDate *time.Time
}

// TransactionPage is one page of a transaction listing.
type TransactionPage struct {
	Transactions []model.Transaction `json:"transactions"`
	Total        int64               `json:"total"`
	Page         int                 `json:"page"`
	PerPage      int                 `json:"per_page"`
}

// ListTransactionsParams selects and pages a listing. Zero values fall back
// to page 1, 10 per page, newest first.
type ListTransactionsParams struct {
	Page    int
	PerPage int
	Order   string
	Type    *model.TransactionType
}

// TransactionService manages transactions nested under a user's trackers.
type TransactionService interface {
	List(ctx context.Context, userID uint, trackerID uuid.UUID, params ListTransactionsParams) (*TransactionPage, error)
	Create(ctx context.Context, userID uint, trackerID uuid.UUID, input TransactionInput) (*model.Transaction, error)
	Update(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID, update TransactionUpdate) (*model.Transaction, error)
	Delete(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID) error
	PutReceipt(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID, upload Upload) (*StoredFile, error)
}

type transactionService struct {
	trackers     TrackerService
	transactions repository.TransactionRepository
	storage      storage.Storage
}

// NewTransactionService builds a TransactionService.
func NewTransactionService(trackers TrackerService, transactions repository.TransactionRepository, store storage.Storage) TransactionService {
	return &transactionService{trackers: trackers, transactions: transactions, storage: store}
}

func (s *transactionService) List(ctx context.Context, userID uint, trackerID uuid.UUID, params ListTransactionsParams) (*TransactionPage, error) {
	if _, err := s.trackers.Get(ctx, userID, trackerID); err != nil {
		return nil, err
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = defaultPerPage
	}
	if params.PerPage > maxPerPage {
		params.PerPage = maxPerPage
	}
	if params.Order != "asc" {
		params.Order = "desc"
	}

	transactions, total, err := s.transactions.ListByTracker(ctx, trackerID, repository.TransactionFilter{
		Type:    params.Type,
		Order:   params.Order,
		Page:    params.Page,
		PerPage: params.PerPage,
	})
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return &TransactionPage{
		Transactions: transactions,
		Total:        total,
		Page:         params.Page,
		PerPage:      params.PerPage,
	}, nil
}

func (s *transactionService) Create(ctx context.Context, userID uint, trackerID uuid.UUID, input TransactionInput) (*model.Transaction, error) {
	if _, err := s.trackers.Get(ctx, userID, trackerID); err != nil {
		return nil, err
	}

	transaction := &model.Transaction{
		TrackerID:       trackerID,
		Name:            input.Name,
		Amount:          input.Amount,
		Description:     input.Description,
		Type:            input.Type,
		TransactionDate: input.TransactionDate,
	}
	if err := s.transactions.Create(ctx, transaction); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return transaction, nil
}

func (s *transactionService) Update(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID, update TransactionUpdate) (*model.Transaction, error) {
	if _, err := s.owned(ctx, userID, trackerID, transactionID); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Amount != nil {
		fields["amount"] = *update.Amount
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.TransactionDate != nil {
		fields["transaction_date"] = *update.TransactionDate
	}
	if len(fields) > 0 {
		if err := s.transactions.UpdateFields(ctx, transactionID, fields); err != nil {
			return nil, fmt.Errorf("update transaction: %w", err)
		}
	}

	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("reload transaction: %w", err)
	}
	return transaction, nil
}

func (s *transactionService) Delete(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID) error {
	transaction, err := s.owned(ctx, userID, trackerID, transactionID)
	if err != nil {
		return err
	}
	if err := s.transactions.Delete(ctx, transactionID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if transaction.Image != nil && *transaction.Image != "" {
		_ = s.storage.Delete(ctx, *transaction.Image)
	}
	return nil
}

// PutReceipt attaches a receipt image to the transaction, replacing any
// previous one with the same store-then-swap ordering the avatar uses.
func (s *transactionService) PutReceipt(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID, upload Upload) (*StoredFile, error) {
	transaction, err := s.owned(ctx, userID, trackerID, transactionID)
	if err != nil {
		return nil, err
	}

	if upload.Size > MaxReceiptBytes {
		return nil, errs.ErrFileTooLarge
	}
	ext, ok := imageExtensions[upload.ContentType]
	if !ok {
		return nil, errs.ErrUnsupportedImage
	}

	key := fmt.Sprintf("receipts/%s/%d_%s%s", transactionID, time.Now().Unix(), shortID(), ext)
	if err := s.storage.Put(ctx, key, upload.ContentType, upload.Body); err != nil {
		return nil, fmt.Errorf("store receipt: %w", err)
	}

	if err := s.transactions.UpdateFields(ctx, transactionID, map[string]interface{}{"image": key}); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, fmt.Errorf("update receipt reference: %w", err)
	}

	if transaction.Image != nil && *transaction.Image != "" {
		_ = s.storage.Delete(ctx, *transaction.Image)
	}

	return &StoredFile{Path: key, URL: s.storage.URL(key)}, nil
}

// owned verifies the tracker belongs to the user and the transaction
// belongs to the tracker.
func (s *transactionService) owned(ctx context.Context, userID uint, trackerID, transactionID uuid.UUID) (*model.Transaction, error) {
	if _, err := s.trackers.Get(ctx, userID, trackerID); err != nil {
		return nil, err
	}

	transaction, err := s.transactions.FindByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if transaction.TrackerID != trackerID {
		return nil, errs.ErrTransactionNotFound
	}
	return transaction, nil
}
