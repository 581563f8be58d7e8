package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType classifies a transaction as money in or money out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction is a single dated entry in a tracker.
type Transaction struct {
	ID              uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	TrackerID       uuid.UUID       `json:"tracker_id" gorm:"type:char(36);not null;index"`
	Name            string          `json:"name" gorm:"size:50;not null"`
	Amount          decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Description     string          `json:"description" gorm:"size:255"`
	Type            TransactionType `json:"type" gorm:"type:varchar(10);not null;index"`
	Image           *string         `json:"image" gorm:"size:255"`
	TransactionDate time.Time       `json:"transaction_date" gorm:"not null;index"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Tracker Tracker `json:"-" gorm:"foreignKey:TrackerID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
