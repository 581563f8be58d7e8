package model

import "time"

// AccessToken is the server-side record behind one issued bearer token.
// The primary key is the token's jti claim; deleting the row revokes the
// token even while its signature is still valid.
type AccessToken struct {
	ID        string    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}
