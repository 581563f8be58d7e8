package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "fintrack/internal/errors"
	"fintrack/internal/model"
)

// fakeResetRepository keeps reset records in memory keyed by email.
type fakeResetRepository struct {
	records map[string]model.PasswordResetToken
}

func newFakeResetRepository() *fakeResetRepository {
	return &fakeResetRepository{records: map[string]model.PasswordResetToken{}}
}

func (r *fakeResetRepository) Upsert(ctx context.Context, record *model.PasswordResetToken) error {
	r.records[record.Email] = *record
	return nil
}

func (r *fakeResetRepository) FindByEmail(ctx context.Context, email string) (*model.PasswordResetToken, error) {
	record, ok := r.records[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &record, nil
}

func (r *fakeResetRepository) DeleteByEmail(ctx context.Context, email string) error {
	delete(r.records, email)
	return nil
}

func TestResetBroker_IssueAndValidate(t *testing.T) {
	repo := newFakeResetRepository()
	broker := NewResetBroker(repo)
	ctx := context.Background()

	token, err := broker.Issue(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// The plaintext token must never be stored.
	stored := repo.records["test@example.com"]
	assert.NotEqual(t, token, stored.Token)

	assert.NoError(t, broker.Validate(ctx, "test@example.com", token))
	assert.ErrorIs(t, broker.Validate(ctx, "test@example.com", "wrong-token"), errs.ErrInvalidResetToken)
	assert.ErrorIs(t, broker.Validate(ctx, "other@example.com", token), errs.ErrInvalidResetToken)
}

func TestResetBroker_ReissueInvalidatesPrevious(t *testing.T) {
	repo := newFakeResetRepository()
	broker := NewResetBroker(repo)
	ctx := context.Background()

	first, err := broker.Issue(ctx, "test@example.com")
	assert.NoError(t, err)
	second, err := broker.Issue(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, first, second)

	assert.ErrorIs(t, broker.Validate(ctx, "test@example.com", first), errs.ErrInvalidResetToken)
	assert.NoError(t, broker.Validate(ctx, "test@example.com", second))
}

func TestResetBroker_Expiry(t *testing.T) {
	repo := newFakeResetRepository()
	broker := NewResetBroker(repo)
	ctx := context.Background()

	issuedAt := time.Now()
	broker.now = func() time.Time { return issuedAt }

	token, err := broker.Issue(ctx, "test@example.com")
	assert.NoError(t, err)

	// Just inside the window.
	broker.now = func() time.Time { return issuedAt.Add(ResetTokenExpiry - time.Second) }
	assert.NoError(t, broker.Validate(ctx, "test@example.com", token))

	// Just past the window.
	broker.now = func() time.Time { return issuedAt.Add(ResetTokenExpiry + time.Second) }
	assert.ErrorIs(t, broker.Validate(ctx, "test@example.com", token), errs.ErrInvalidResetToken)
}

func TestResetBroker_ConsumeIsSingleUse(t *testing.T) {
	repo := newFakeResetRepository()
	broker := NewResetBroker(repo)
	ctx := context.Background()

	token, err := broker.Issue(ctx, "test@example.com")
	assert.NoError(t, err)

	assert.NoError(t, broker.Validate(ctx, "test@example.com", token))
	assert.NoError(t, broker.Consume(ctx, "test@example.com"))
	assert.ErrorIs(t, broker.Validate(ctx, "test@example.com", token), errs.ErrInvalidResetToken)
}
