package handler

import (
	"errors"
	"log"
	"net/http"

	"natours/internal/apperror"
	"natours/internal/service"

	"github.com/gin-gonic/gin"
)

// mapError translates service-layer sentinels into the operational error
// taxonomy. Anything it cannot place is a programming defect.
func mapError(err error) (*apperror.Error, bool) {
	if appErr, ok := apperror.As(err); ok {
		return appErr, true
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return apperror.New(apperror.CodeDuplicateEmail, err.Error()), true
	case errors.Is(err, service.ErrInvalidCredentials):
		return apperror.New(apperror.CodeInvalidCredentials, err.Error()), true
	case errors.Is(err, service.ErrWrongPassword):
		return apperror.New(apperror.CodeInvalidCredentials, err.Error()), true
	case errors.Is(err, service.ErrInvalidResetToken):
		return apperror.New(apperror.CodeInvalidResetToken, err.Error()), true
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrTourNotFound),
		errors.Is(err, service.ErrReviewNotFound):
		return apperror.New(apperror.CodeNotFound, err.Error()), true
	case errors.Is(err, service.ErrNotReviewOwner):
		return apperror.New(apperror.CodeForbidden, err.Error()), true
	case errors.Is(err, service.ErrDuplicateReview),
		errors.Is(err, service.ErrTourNameTaken),
		errors.Is(err, service.ErrDiscountTooHigh),
		errors.Is(err, service.ErrGuideNotFound),
		errors.Is(err, service.ErrNotAnImage),
		errors.Is(err, service.ErrPhotoTooLarge),
		errors.Is(err, service.ErrPasswordInUpdate):
		return apperror.New(apperror.CodeValidation, err.Error()), true
	}
	return nil, false
}

// writeError renders an error response. Operational errors carry their
// own message and status; unexpected errors are logged and surfaced as a
// generic 500, with detail attached only outside production.
func writeError(c *gin.Context, err error, production bool) {
	if appErr, ok := mapError(err); ok {
		status := "fail"
		if appErr.Status >= http.StatusInternalServerError {
			status = "error"
		}
		c.JSON(appErr.Status, gin.H{"status": status, "message": appErr.Message})
		return
	}

	log.Printf("ERROR: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	body := gin.H{"status": "error", "message": "Something went very wrong!"}
	if !production {
		body["detail"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

// writeData renders the success envelope
func writeData(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"status": "success", "data": data})
}
