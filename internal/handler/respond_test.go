package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"natours/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{service.ErrEmailTaken, http.StatusBadRequest},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{service.ErrWrongPassword, http.StatusUnauthorized},
		{service.ErrInvalidResetToken, http.StatusBadRequest},
		{service.ErrUserNotFound, http.StatusNotFound},
		{service.ErrTourNotFound, http.StatusNotFound},
		{service.ErrReviewNotFound, http.StatusNotFound},
		{service.ErrNotReviewOwner, http.StatusForbidden},
		{service.ErrDuplicateReview, http.StatusBadRequest},
		{service.ErrDiscountTooHigh, http.StatusBadRequest},
		{service.ErrPasswordInUpdate, http.StatusBadRequest},
	}

	for _, tt := range tests {
		appErr, ok := mapError(tt.err)
		require.True(t, ok, "expected %v to map", tt.err)
		assert.Equal(t, tt.status, appErr.Status, "status for %v", tt.err)
	}
}

func TestMapError_UnknownError(t *testing.T) {
	_, ok := mapError(errors.New("database exploded"))
	assert.False(t, ok)
}

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	return c, w
}

func TestWriteError_UnexpectedErrorHidesDetailInProduction(t *testing.T) {
	c, w := testContext()
	writeError(c, errors.New("pq: connection refused"), true)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went very wrong!")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestWriteError_UnexpectedErrorShowsDetailInDevelopment(t *testing.T) {
	c, w := testContext()
	writeError(c, errors.New("pq: connection refused"), false)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")
}

func TestWriteError_OperationalErrorKeepsMessageInProduction(t *testing.T) {
	c, w := testContext()
	writeError(c, service.ErrTourNotFound, true)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "tour not found")
	assert.Contains(t, w.Body.String(), `"status":"fail"`)
}
