package handler

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	errs "fintrack/internal/errors"
	"fintrack/internal/response"
	"fintrack/internal/service"
	"fintrack/internal/validation"
)

// ProfileHandler handles the authenticated user's profile endpoints.
type ProfileHandler struct {
	profileService service.ProfileService
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(profileService service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// UpdateProfileRequest represents a partial profile update. Absent fields
// are left untouched.
type UpdateProfileRequest struct {
	Name                 *string `json:"name" validate:"omitempty,min=3,max=50"`
	Email                *string `json:"email" validate:"omitempty,email,max=255"`
	Password             *string `json:"password" validate:"omitempty,password_policy"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

// Get godoc
// @Summary Fetch the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /user/profile [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	fresh, err := h.profileService.Get(c.Request().Context(), user.ID)
	if err != nil {
		return response.LogAndError(c, err, "profile get", "Failed to fetch profile.")
	}

	return response.Success(c, http.StatusOK, "Profile fetched successfully.", fresh)
}

// Update godoc
// @Summary Update the caller's profile
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /user/profile [patch]
func (h *ProfileHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}
	// eqfield can't compare two optional pointers, so the confirmation
	// check is done by hand.
	if req.Password != nil {
		if req.PasswordConfirmation == nil || *req.PasswordConfirmation != *req.Password {
			return response.FieldError(c, "password", "The password confirmation does not match.")
		}
	}

	updated, err := h.profileService.Patch(c.Request().Context(), user.ID, service.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, errs.ErrEmailTaken) {
			return response.FieldError(c, "email", "The email has already been taken.")
		}
		return response.LogAndError(c, err, "profile update", "Failed to update profile.")
	}

	return response.Success(c, http.StatusOK, "Profile updated successfully.", updated)
}

// UploadAvatar godoc
// @Summary Upload or replace the caller's avatar
// @Tags profile
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Avatar image (jpeg, png, gif or webp, max 2MB)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /user/avatar [put]
func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		return response.FieldError(c, "avatar", "The avatar field is required.")
	}

	upload, src, err := openUpload(fileHeader)
	if err != nil {
		return response.LogAndError(c, err, "avatar open", "Failed to read uploaded file.")
	}
	defer src.Close()

	stored, err := h.profileService.PutAvatar(c.Request().Context(), user.ID, upload)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrFileTooLarge):
			return response.FieldError(c, "avatar", "The avatar must not be larger than 2MB.")
		case errors.Is(err, errs.ErrUnsupportedImage):
			return response.FieldError(c, "avatar", "The avatar must be a jpeg, png, gif or webp image.")
		default:
			return response.LogAndError(c, err, "avatar upload", "Failed to upload avatar.")
		}
	}

	return response.Success(c, http.StatusOK, "Avatar uploaded successfully.", map[string]string{
		"avatar_path": stored.Path,
		"avatar_url":  stored.URL,
	})
}

// DeleteAvatar godoc
// @Summary Remove the caller's avatar
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /user/avatar [delete]
func (h *ProfileHandler) DeleteAvatar(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	if err := h.profileService.DeleteAvatar(c.Request().Context(), user.ID); err != nil {
		return response.LogAndError(c, err, "avatar delete", "Failed to delete avatar.")
	}

	return response.Success(c, http.StatusOK, "Avatar deleted successfully.", nil)
}

// openUpload turns a multipart file header into a service upload. The
// caller owns closing the returned file.
func openUpload(fileHeader *multipart.FileHeader) (service.Upload, multipart.File, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return service.Upload{}, nil, err
	}
	return service.Upload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        src,
	}, src, nil
}
