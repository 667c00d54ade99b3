package apperrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Error is an HTTP-facing application error. Message is shown to the caller and
// Err, when set, is rendered as the "error" field.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON renders {"message"} or {"message", "error"}.
func (e *Error) MarshalJSON() ([]byte, error) {
	body := map[string]string{"message": e.Message}
	if e.Err != nil {
		body["error"] = e.Err.Error()
	}
	return json.Marshal(body)
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error types
var (
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized: Invalid or missing API Key.", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Respond writes err as JSON and aborts the chain. Errors that are not *Error are
// reported as 500 with their text hidden.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		zap.L().Error("Unhandled error", zap.Error(err))
		appErr = ErrInternalServer
	}
	c.AbortWithStatusJSON(appErr.Code, appErr)
}

// ErrorMiddleware renders the last error attached with c.Error when no response
// was written yet.
func ErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			Respond(c, c.Errors.Last().Err)
		}
	}
}
