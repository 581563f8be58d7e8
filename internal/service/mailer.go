package service

import (
	"context"
	"log"
)

// ResetMailer delivers password reset notifications out of band.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes the reset link to the process log instead of sending
// mail. TODO: replace with an SMTP sender once outbound mail is provisioned.
type LogMailer struct {
	BaseURL string
}

var _ ResetMailer = (*LogMailer)(nil)

// SendPasswordReset logs the reset link for the operator to relay.
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	log.Printf("password reset requested for %s: %s/reset-password?token=%s", email, m.BaseURL, token)
	return nil
}
