package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fintrack/internal/auth"
	errs "fintrack/internal/errors"
	"fintrack/internal/response"
	"fintrack/internal/service"
	"fintrack/internal/validation"
)

// TrackerHandler handles tracker CRUD endpoints.
type TrackerHandler struct {
	trackerService service.TrackerService
}

// NewTrackerHandler creates a new tracker handler.
func NewTrackerHandler(trackerService service.TrackerService) *TrackerHandler {
	return &TrackerHandler{trackerService: trackerService}
}

// CreateTrackerRequest represents a new tracker.
type CreateTrackerRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// UpdateTrackerRequest represents a partial tracker update.
type UpdateTrackerRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=50"`
	Description *string `json:"description" validate:"omitempty,max=255"`
}

// List godoc
// @Summary List the caller's trackers
// @Tags trackers
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers [get]
func (h *TrackerHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackers, err := h.trackerService.List(c.Request().Context(), user.ID)
	if err != nil {
		return response.LogAndError(c, err, "tracker list", "Failed to list trackers.")
	}

	return response.Success(c, http.StatusOK, "Trackers fetched successfully.", map[string]interface{}{
		"trackers": trackers,
	})
}

// Create godoc
// @Summary Create a tracker
// @Tags trackers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTrackerRequest true "Tracker data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers [post]
func (h *TrackerHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	var req CreateTrackerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	tracker, err := h.trackerService.Create(c.Request().Context(), user.ID, req.Name, req.Description)
	if err != nil {
		return response.LogAndError(c, err, "tracker create", "Failed to create tracker.")
	}

	return response.Success(c, http.StatusCreated, "Tracker created successfully.", tracker)
}

// Get godoc
// @Summary Fetch a tracker
// @Tags trackers
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID} [get]
func (h *TrackerHandler) Get(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}

	tracker, err := h.trackerService.Get(c.Request().Context(), user.ID, trackerID)
	if err != nil {
		if errors.Is(err, errs.ErrTrackerNotFound) {
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		}
		return response.LogAndError(c, err, "tracker get", "Failed to fetch tracker.")
	}

	return response.Success(c, http.StatusOK, "Tracker fetched successfully.", tracker)
}

// Update godoc
// @Summary Update a tracker
// @Tags trackers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param request body UpdateTrackerRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID} [patch]
func (h *TrackerHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}

	var req UpdateTrackerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	tracker, err := h.trackerService.Update(c.Request().Context(), user.ID, trackerID, service.TrackerUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, errs.ErrTrackerNotFound) {
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		}
		return response.LogAndError(c, err, "tracker update", "Failed to update tracker.")
	}

	return response.Success(c, http.StatusOK, "Tracker updated successfully.", tracker)
}

// Delete godoc
// @Summary Delete a tracker
// @Tags trackers
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID} [delete]
func (h *TrackerHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}

	if err := h.trackerService.Delete(c.Request().Context(), user.ID, trackerID); err != nil {
		if errors.Is(err, errs.ErrTrackerNotFound) {
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		}
		return response.LogAndError(c, err, "tracker delete", "Failed to delete tracker.")
	}

	return response.Success(c, http.StatusOK, "Tracker deleted successfully.", nil)
}
