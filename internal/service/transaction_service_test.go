package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

// MockTransactionRepository is a mock implementation of TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, transaction *model.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListByTracker(ctx context.Context, trackerID uuid.UUID, filter repository.TransactionFilter) ([]model.Transaction, int64, error) {
	args := m.Called(ctx, trackerID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func ownedTrackerRepo(trackerID uuid.UUID, userID uint) *MockTrackerRepository {
	mockRepo := new(MockTrackerRepository)
	mockRepo.On("FindByID", mock.Anything, trackerID).Return(&model.Tracker{ID: trackerID, UserID: userID}, nil)
	return mockRepo
}

func TestTransactionService_ListNormalizesParams(t *testing.T) {
	trackerID := uuid.New()

	tests := []struct {
		name           string
		params         ListTransactionsParams
		expectedFilter repository.TransactionFilter
	}{
		{
			name:           "defaults",
			params:         ListTransactionsParams{},
			expectedFilter: repository.TransactionFilter{Order: "desc", Page: 1, PerPage: 10},
		},
		{
			name:           "per_page is capped",
			params:         ListTransactionsParams{Page: 2, PerPage: 500},
			expectedFilter: repository.TransactionFilter{Order: "desc", Page: 2, PerPage: 100},
		},
		{
			name:           "ascending order passes through",
			params:         ListTransactionsParams{Order: "asc"},
			expectedFilter: repository.TransactionFilter{Order: "asc", Page: 1, PerPage: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockTransactions := new(MockTransactionRepository)
			mockTransactions.On("ListByTracker", mock.Anything, trackerID, tt.expectedFilter).
				Return([]model.Transaction{}, int64(0), nil)

			svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
			page, err := svc.List(context.Background(), 1, trackerID, tt.params)

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedFilter.Page, page.Page)
			assert.Equal(t, tt.expectedFilter.PerPage, page.PerPage)
			mockTransactions.AssertExpectations(t)
		})
	}
}

func TestTransactionService_ListForeignTracker(t *testing.T) {
	trackerID := uuid.New()

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), new(MockTransactionRepository), newFakeStorage())
	_, err := svc.List(context.Background(), 2, trackerID, ListTransactionsParams{})

	assert.ErrorIs(t, err, errs.ErrTrackerNotFound)
}

func TestTransactionService_Create(t *testing.T) {
	trackerID := uuid.New()
	amount := decimal.RequireFromString("42.50")

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("Create", mock.Anything, mock.AnythingOfType("*model.Transaction")).Return(nil)

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
	transaction, err := svc.Create(context.Background(), 1, trackerID, TransactionInput{
		Name:            "Groceries",
		Amount:          amount,
		Type:            model.TransactionTypeExpense,
		TransactionDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.NoError(t, err)
	assert.Equal(t, trackerID, transaction.TrackerID)
	assert.True(t, amount.Equal(transaction.Amount))
	mockTransactions.AssertExpectations(t)
}

func TestTransactionService_UpdateBuildsFieldMap(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()
	newName := "Weekly groceries"
	newAmount := decimal.RequireFromString("99.99")

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).
		Return(&model.Transaction{ID: transactionID, TrackerID: trackerID}, nil)
	mockTransactions.On("UpdateFields", mock.Anything, transactionID, map[string]interface{}{
		"name":   newName,
		"amount": newAmount,
	}).Return(nil)

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
	_, err := svc.Update(context.Background(), 1, trackerID, transactionID, TransactionUpdate{
		Name:   &newName,
		Amount: &newAmount,
	})

	assert.NoError(t, err)
	mockTransactions.AssertExpectations(t)
}

func TestTransactionService_UpdateWrongTracker(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).
		Return(&model.Transaction{ID: transactionID, TrackerID: uuid.New()}, nil)

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
	_, err := svc.Update(context.Background(), 1, trackerID, transactionID, TransactionUpdate{})

	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestTransactionService_DeleteRemovesReceipt(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()
	imageKey := "receipts/" + transactionID.String() + "/1_abc.jpg"

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).
		Return(&model.Transaction{ID: transactionID, TrackerID: trackerID, Image: &imageKey}, nil)
	mockTransactions.On("Delete", mock.Anything, transactionID).Return(nil)

	store := newFakeStorage()
	store.objects[imageKey] = "bytes"

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, store)
	assert.NoError(t, svc.Delete(context.Background(), 1, trackerID, transactionID))
	assert.NotContains(t, store.objects, imageKey)
	mockTransactions.AssertExpectations(t)
}

func TestTransactionService_DeleteMissing(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).Return(nil, gorm.ErrRecordNotFound)

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
	err := svc.Delete(context.Background(), 1, trackerID, transactionID)

	assert.ErrorIs(t, err, errs.ErrTransactionNotFound)
}

func TestTransactionService_PutReceipt(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()
	oldKey := "receipts/" + transactionID.String() + "/0_old.jpg"

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).
		Return(&model.Transaction{ID: transactionID, TrackerID: trackerID, Image: &oldKey}, nil)
	mockTransactions.On("UpdateFields", mock.Anything, transactionID, mock.MatchedBy(func(fields map[string]interface{}) bool {
		key, ok := fields["image"].(string)
		return ok && len(fields) == 1 && strings.HasPrefix(key, "receipts/"+transactionID.String()+"/")
	})).Return(nil)

	store := newFakeStorage()
	store.objects[oldKey] = "old-bytes"

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, store)
	stored, err := svc.PutReceipt(context.Background(), 1, trackerID, transactionID, Upload{
		Filename:    "receipt.jpg",
		ContentType: "image/jpeg",
		Size:        1024,
		Body:        strings.NewReader("new-bytes"),
	})

	assert.NoError(t, err)
	assert.Contains(t, store.objects, stored.Path)
	assert.Contains(t, store.deleted, oldKey)
	mockTransactions.AssertExpectations(t)
}

func TestTransactionService_PutReceiptTooLarge(t *testing.T) {
	trackerID := uuid.New()
	transactionID := uuid.New()

	mockTransactions := new(MockTransactionRepository)
	mockTransactions.On("FindByID", mock.Anything, transactionID).
		Return(&model.Transaction{ID: transactionID, TrackerID: trackerID}, nil)

	svc := NewTransactionService(NewTrackerService(ownedTrackerRepo(trackerID, 1)), mockTransactions, newFakeStorage())
	_, err := svc.PutReceipt(context.Background(), 1, trackerID, transactionID, Upload{
		Filename:    "huge.jpg",
		ContentType: "image/jpeg",
		Size:        MaxReceiptBytes + 1,
		Body:        strings.NewReader(""),
	})

	assert.ErrorIs(t, err, errs.ErrFileTooLarge)
}
