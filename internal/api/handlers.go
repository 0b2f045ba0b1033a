package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"alessacloud/internal/auth"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/storage"
)

// ResponseError represents an error response
type ResponseError struct {
	Error string `json:"error"`
}

// HealthCheckResponse represents the health check response
type HealthCheckResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PaginationParams represents pagination parameters
type PaginationParams struct {
	Page     int
	PageSize int
}

// GetDefaultPagination parses pagination from the query string with
// sensible bounds
func GetDefaultPagination(c *gin.Context) PaginationParams {
	params := PaginationParams{Page: 1, PageSize: 20}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && pageSize > 0 && pageSize <= 100 {
		params.PageSize = pageSize
	}

	return params
}

// HealthCheck handles the health check endpoint
func (r *Router) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, HealthCheckResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// respondError maps service errors onto HTTP status codes. Unknown errors
// become opaque 500s so internals never leak to storefronts.
func respondError(c *gin.Context, err error) {
	var validationErr models.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ResponseError{Error: validationErr.Message})
		return
	}

	switch {
	case errors.Is(err, data.ErrNotFound):
		c.JSON(http.StatusNotFound, ResponseError{Error: "not found"})
	case errors.Is(err, data.ErrStaleStatus):
		c.JSON(http.StatusConflict, ResponseError{Error: "order was updated concurrently, reload and retry"})
	case errors.Is(err, data.ErrDuplicateRecord):
		c.JSON(http.StatusConflict, ResponseError{Error: "record already exists"})
	case errors.Is(err, services.ErrCustomerExists):
		c.JSON(http.StatusConflict, ResponseError{Error: err.Error()})
	case errors.Is(err, services.ErrSlugTaken):
		c.JSON(http.StatusConflict, ResponseError{Error: err.Error()})
	case errors.Is(err, services.ErrCustomerCredentials),
		errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ResponseError{Error: "invalid email or password"})
	case errors.Is(err, services.ErrSessionInvalid),
		errors.Is(err, auth.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, ResponseError{Error: "authentication required"})
	case errors.Is(err, auth.ErrUserLocked):
		c.JSON(http.StatusForbidden, ResponseError{Error: "account is locked, try again later"})
	case errors.Is(err, auth.ErrUserNotActive):
		c.JSON(http.StatusForbidden, ResponseError{Error: "account is not active"})
	case errors.Is(err, payments.ErrPaymentsDisabled),
		errors.Is(err, storage.ErrStorageDisabled):
		c.JSON(http.StatusServiceUnavailable, ResponseError{Error: err.Error()})
	case errors.Is(err, storage.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, ResponseError{Error: err.Error()})
	default:
		c.Error(err)
		c.JSON(http.StatusInternalServerError, ResponseError{Error: "internal server error"})
	}
}
