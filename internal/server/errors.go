package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	approvaldomain "github.com/pharmadesk/pharmadesk/internal/approval/domain"
	dispensingdomain "github.com/pharmadesk/pharmadesk/internal/dispensing/domain"
	inventorydomain "github.com/pharmadesk/pharmadesk/internal/inventory/domain"
	revenuedomain "github.com/pharmadesk/pharmadesk/internal/revenue/domain"
	"gorm.io/gorm"
)

// response is the uniform JSON envelope for every API reply.
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrDispenseInProgress = errors.New("dispense_in_progress")
	ErrReceiptNotReady    = errors.New("receipt_not_ready")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, message := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, response{Success: false, Message: message})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func respondOK(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, response{Success: true, Data: data, Message: message})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, response{Success: true, Data: data, Message: message})
}

func mapError(err error) (int, string) {
	switch {
	case isValidationError(err):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, approvaldomain.ErrInvalidStateTransition),
		errors.Is(err, approvaldomain.ErrDuplicateDispenseID),
		errors.Is(err, dispensingdomain.ErrNotApproved),
		errors.Is(err, dispensingdomain.ErrAlreadyDispensed),
		errors.Is(err, dispensingdomain.ErrInsufficientStock),
		errors.Is(err, ErrDispenseInProgress),
		errors.Is(err, ErrReceiptNotReady):
		return http.StatusConflict, err.Error()
	case errors.Is(err, approvaldomain.ErrNotFound),
		errors.Is(err, inventorydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, "too_many_requests"
	case errors.Is(err, revenuedomain.ErrSourceUnavailable):
		return http.StatusServiceUnavailable, "source_unavailable"
	default:
		return http.StatusInternalServerError, "internal_server_error"
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, approvaldomain.ErrInvalidApprover),
		errors.Is(err, approvaldomain.ErrInvalidAmount),
		errors.Is(err, approvaldomain.ErrInvalidID),
		errors.Is(err, approvaldomain.ErrInvalidStatus),
		errors.Is(err, dispensingdomain.ErrNoLines),
		errors.Is(err, dispensingdomain.ErrInvalidLine),
		errors.Is(err, inventorydomain.ErrInvalidQuantity),
		errors.Is(err, revenuedomain.ErrInvalidWindow):
		return true
	default:
		return false
	}
}
