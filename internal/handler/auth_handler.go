package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	errs "fintrack/internal/errors"
	"fintrack/internal/response"
	"fintrack/internal/service"
	"fintrack/internal/validation"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,min=3,max=50"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest carries the email a reset link is requested for.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest carries a reset token and the replacement password.
type ResetPasswordRequest struct {
	Email                string `json:"email" validate:"required,email"`
	Token                string `json:"token" validate:"required"`
	Password             string `json:"password" validate:"required,password_policy"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

// AuthData is the payload returned from register and login.
type AuthData struct {
	UserInfo  interface{} `json:"user_info"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	ExpiresIn int         `json:"expires_in"`
}

func authData(userInfo interface{}, token string) AuthData {
	return AuthData{
		UserInfo:  userInfo,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int(auth.AccessTokenExpiry.Seconds()),
	}
}

// Register godoc
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	user, token, err := h.authService.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrEmailTaken) {
			return response.FieldError(c, "email", "The email has already been taken.")
		}
		return response.LogAndError(c, err, "register", "Failed to register user.")
	}

	return response.Success(c, http.StatusCreated, "User registered successfully.", authData(user.Info(), token))
}

// Login godoc
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	user, token, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidCredentials) {
			return response.Error(c, http.StatusUnauthorized, "Invalid email or password.")
		}
		return response.LogAndError(c, err, "login", "Failed to login.")
	}

	return response.Success(c, http.StatusOK, "User logged in successfully.", authData(user.Info(), token))
}

// Logout godoc
// @Summary Revoke the caller's access tokens
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	if err := h.authService.Logout(c.Request().Context(), user.ID); err != nil {
		return response.LogAndError(c, err, "logout", "Failed to logout.")
	}

	return response.Success(c, http.StatusOK, "User successfully logged out.", nil)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Account email"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return response.LogAndError(c, err, "forgot password", "Failed to process password reset request.")
	}

	// Deliberately identical for known and unknown addresses.
	return response.Success(c, http.StatusOK, "If the email exists, a password reset link has been sent.", nil)
}

// ResetPassword godoc
// @Summary Reset a password with a reset token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Reset token and new password"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.Token, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTooManyAttempts):
			return response.Error(c, http.StatusTooManyRequests, "Too many password reset attempts. Please try again later.")
		case errors.Is(err, errs.ErrInvalidResetToken):
			return response.Error(c, http.StatusBadRequest, "Invalid or expired reset token.")
		default:
			return response.LogAndError(c, err, "reset password", "Failed to reset password.")
		}
	}

	return response.Success(c, http.StatusOK, "Password has been reset successfully.", nil)
}
