package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tracker groups a user's transactions under one named ledger.
type Tracker struct {
	ID          uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	UserID      uint           `json:"user_id" gorm:"not null;index"`
	Name        string         `json:"name" gorm:"size:50;not null"`
	Description string         `json:"description" gorm:"size:255"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Transactions []Transaction `json:"transactions,omitempty" gorm:"foreignKey:TrackerID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tracker) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
