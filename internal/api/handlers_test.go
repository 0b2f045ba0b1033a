package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"alessacloud/internal/auth"
	"alessacloud/internal/data"
	"alessacloud/internal/models"
	"alessacloud/internal/payments"
	"alessacloud/internal/services"
	"alessacloud/internal/storage"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation error", models.NewValidationError("price cannot be negative"), http.StatusBadRequest},
		{"not found", data.ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("menu item lookup: %w", data.ErrNotFound), http.StatusNotFound},
		{"stale status", data.ErrStaleStatus, http.StatusConflict},
		{"duplicate record", data.ErrDuplicateRecord, http.StatusConflict},
		{"customer exists", services.ErrCustomerExists, http.StatusConflict},
		{"slug taken", services.ErrSlugTaken, http.StatusConflict},
		{"customer credentials", services.ErrCustomerCredentials, http.StatusUnauthorized},
		{"staff credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"session invalid", services.ErrSessionInvalid, http.StatusUnauthorized},
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"account locked", auth.ErrUserLocked, http.StatusForbidden},
		{"account inactive", auth.ErrUserNotActive, http.StatusForbidden},
		{"payments disabled", payments.ErrPaymentsDisabled, http.StatusServiceUnavailable},
		{"storage disabled", storage.ErrStorageDisabled, http.StatusServiceUnavailable},
		{"unsupported format", storage.ErrUnsupportedFormat, http.StatusBadRequest},
		{"unknown error is opaque", errors.New("pg: connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRespondErrorNeverLeaksInternals(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	respondError(c, errors.New("pg: password authentication failed for user postgres"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "postgres")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestGetDefaultPaginationBounds(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query    string
		page     int
		pageSize int
	}{
		{"", 1, 20},
		{"?page=3&page_size=50", 3, 50},
		{"?page=0&page_size=0", 1, 20},
		{"?page=-1&page_size=500", 1, 20},
		{"?page=abc&page_size=xyz", 1, 20},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/orders"+tt.query, nil)

		params := GetDefaultPagination(c)

		assert.Equal(t, tt.page, params.Page, "query %q", tt.query)
		assert.Equal(t, tt.pageSize, params.PageSize, "query %q", tt.query)
	}
}
