package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"fintrack/internal/auth"
	errs "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/response"
	"fintrack/internal/service"
	"fintrack/internal/validation"
)

const transactionDateLayout = "2006-01-02"

// TransactionHandler handles transaction endpoints nested under trackers.
type TransactionHandler struct {
	transactionService service.TransactionService
}

// NewTransactionHandler creates a new transaction handler.
func NewTransactionHandler(transactionService service.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// CreateTransactionRequest represents a new transaction. Amount arrives as
// a string so the value never passes through a float.
type CreateTransactionRequest struct {
	Name            string `json:"name" validate:"required,max=50"`
	Amount          string `json:"amount" validate:"required"`
	Description     string `json:"description" validate:"max=255"`
	Type            string `json:"type" validate:"required,oneof=income expense"`
	TransactionDate string `json:"transaction_date" validate:"required,datetime=2006-01-02"`
}

// UpdateTransactionRequest represents a partial transaction update.
type UpdateTransactionRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1,max=50"`
	Amount          *string `json:"amount"`
	Description     *string `json:"description" validate:"omitempty,max=255"`
	TransactionDate *string `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
}

// parseAmount validates and converts a decimal amount string.
func parseAmount(raw string) (decimal.Decimal, bool) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if amount.LessThan(decimal.NewFromFloat(0.01)) {
		return decimal.Decimal{}, false
	}
	return amount, true
}

// List godoc
// @Summary List transactions in a tracker
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param page query int false "Page number (default 1)"
// @Param per_page query int false "Page size (default 10, max 100)"
// @Param order query string false "Sort by transaction date: asc or desc (default desc)"
// @Param type query string false "Filter by type: income or expense"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID}/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}

	params := service.ListTransactionsParams{}
	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return response.FieldError(c, "page", "The page must be a positive integer.")
		}
		params.Page = page
	}
	if raw := c.QueryParam("per_page"); raw != "" {
		perPage, err := strconv.Atoi(raw)
		if err != nil || perPage < 1 {
			return response.FieldError(c, "per_page", "The per_page must be a positive integer.")
		}
		params.PerPage = perPage
	}
	if raw := c.QueryParam("order"); raw != "" {
		if raw != "asc" && raw != "desc" {
			return response.FieldError(c, "order", "The order must be one of: asc desc.")
		}
		params.Order = raw
	}
	if raw := c.QueryParam("type"); raw != "" {
		if raw != string(model.TransactionTypeIncome) && raw != string(model.TransactionTypeExpense) {
			return response.FieldError(c, "type", "The type must be one of: income expense.")
		}
		txType := model.TransactionType(raw)
		params.Type = &txType
	}

	page, err := h.transactionService.List(c.Request().Context(), user.ID, trackerID, params)
	if err != nil {
		if errors.Is(err, errs.ErrTrackerNotFound) {
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		}
		return response.LogAndError(c, err, "transaction list", "Failed to list transactions.")
	}

	return response.Success(c, http.StatusOK, "Transactions fetched successfully.", page)
}

// Create godoc
// @Summary Create a transaction in a tracker
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param request body CreateTransactionRequest true "Transaction data"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID}/transactions [post]
func (h *TransactionHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	amount, ok := parseAmount(req.Amount)
	if !ok {
		return response.FieldError(c, "amount", "The amount must be a decimal number of at least 0.01.")
	}
	transactionDate, _ := time.Parse(transactionDateLayout, req.TransactionDate)

	transaction, err := h.transactionService.Create(c.Request().Context(), user.ID, trackerID, service.TransactionInput{
		Name:            req.Name,
		Amount:          amount,
		Description:     req.Description,
		Type:            model.TransactionType(req.Type),
		TransactionDate: transactionDate,
	})
	if err != nil {
		if errors.Is(err, errs.ErrTrackerNotFound) {
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		}
		return response.LogAndError(c, err, "transaction create", "Failed to create transaction.")
	}

	return response.Success(c, http.StatusCreated, "Transaction created successfully.", transaction)
}

// Update godoc
// @Summary Update a transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param transactionID path string true "Transaction ID"
// @Param request body UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID}/transactions/{transactionID} [patch]
func (h *TransactionHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}
	transactionID, err := uuid.Parse(c.Param("transactionID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Transaction not found.")
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, http.StatusBadRequest, "Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return response.ValidationError(c, validation.FieldErrors(err))
	}

	update := service.TransactionUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
	if req.Amount != nil {
		amount, ok := parseAmount(*req.Amount)
		if !ok {
			return response.FieldError(c, "amount", "The amount must be a decimal number of at least 0.01.")
		}
		update.Amount = &amount
	}
	if req.TransactionDate != nil {
		transactionDate, _ := time.Parse(transactionDateLayout, *req.TransactionDate)
		update.TransactionDate = &transactionDate
	}

	transaction, err := h.transactionService.Update(c.Request().Context(), user.ID, trackerID, transactionID, update)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTrackerNotFound):
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		case errors.Is(err, errs.ErrTransactionNotFound):
			return response.Error(c, http.StatusNotFound, "Transaction not found.")
		default:
			return response.LogAndError(c, err, "transaction update", "Failed to update transaction.")
		}
	}

	return response.Success(c, http.StatusOK, "Transaction updated successfully.", transaction)
}

// Delete godoc
// @Summary Delete a transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param transactionID path string true "Transaction ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID}/transactions/{transactionID} [delete]
func (h *TransactionHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}
	transactionID, err := uuid.Parse(c.Param("transactionID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Transaction not found.")
	}

	err = h.transactionService.Delete(c.Request().Context(), user.ID, trackerID, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTrackerNotFound):
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		case errors.Is(err, errs.ErrTransactionNotFound):
			return response.Error(c, http.StatusNotFound, "Transaction not found.")
		default:
			return response.LogAndError(c, err, "transaction delete", "Failed to delete transaction.")
		}
	}

	return response.Success(c, http.StatusOK, "Transaction deleted successfully.", nil)
}

// UploadImage godoc
// @Summary Attach a receipt image to a transaction
// @Tags transactions
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param trackerID path string true "Tracker ID"
// @Param transactionID path string true "Transaction ID"
// @Param image formData file true "Receipt image (jpeg, png, gif or webp, max 10MB)"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /trackers/{trackerID}/transactions/{transactionID}/image [put]
func (h *TransactionHandler) UploadImage(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return response.Error(c, http.StatusUnauthorized, "User not authenticated.")
	}

	trackerID, err := uuid.Parse(c.Param("trackerID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Tracker not found.")
	}
	transactionID, err := uuid.Parse(c.Param("transactionID"))
	if err != nil {
		return response.Error(c, http.StatusNotFound, "Transaction not found.")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return response.FieldError(c, "image", "The image field is required.")
	}

	upload, src, err := openUpload(fileHeader)
	if err != nil {
		return response.LogAndError(c, err, "receipt open", "Failed to read uploaded file.")
	}
	defer src.Close()

	stored, err := h.transactionService.PutReceipt(c.Request().Context(), user.ID, trackerID, transactionID, upload)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrTrackerNotFound):
			return response.Error(c, http.StatusNotFound, "Tracker not found.")
		case errors.Is(err, errs.ErrTransactionNotFound):
			return response.Error(c, http.StatusNotFound, "Transaction not found.")
		case errors.Is(err, errs.ErrFileTooLarge):
			return response.FieldError(c, "image", "The image must not be larger than 10MB.")
		case errors.Is(err, errs.ErrUnsupportedImage):
			return response.FieldError(c, "image", "The image must be a jpeg, png, gif or webp image.")
		default:
			return response.LogAndError(c, err, "receipt upload", "Failed to upload image.")
		}
	}

	return response.Success(c, http.StatusOK, "Image uploaded successfully.", map[string]string{
		"image_path": stored.Path,
		"image_url":  stored.URL,
	})
}
