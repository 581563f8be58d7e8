package errors

import "errors"

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	// The same value covers both an unknown email and a wrong password so the
	// two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken is returned when an email is already registered to another user.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidResetToken covers a missing, mismatched, consumed or expired
	// password reset token; the caller is never told which.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrTooManyAttempts is returned when the reset throttle window is exhausted.
	ErrTooManyAttempts = errors.New("too many attempts")
	// ErrTokenRevoked is returned when a structurally valid access token no
	// longer has a live record behind it.
	ErrTokenRevoked = errors.New("token revoked")
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrTrackerNotFound is returned when a tracker does not exist or belongs
	// to another user.
	ErrTrackerNotFound = errors.New("tracker not found")
	// ErrTransactionNotFound is returned when a transaction does not exist
	// under the given tracker.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrFileTooLarge is returned when an uploaded file exceeds the size ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedImage is returned when an upload is not a supported image type.
	ErrUnsupportedImage = errors.New("unsupported image type")
)
