package model

import "time"

// PasswordResetToken holds at most one active reset token per email.
// Token stores a bcrypt hash of the plaintext token mailed to the user;
// CreatedAt anchors the expiry window regardless of later deletion.
type PasswordResetToken struct {
	Email     string    `gorm:"primaryKey;size:255"`
	Token     string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName keeps the conventional table name for reset records.
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
