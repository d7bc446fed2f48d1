package respond

import (
	"github.com/gin-gonic/gin"

	"parttimepal-backend/internal/shared/telemetry"
)

// Error codes carried in the error envelope.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInputRejected   = "INPUT_REJECTED"
	CodeSessionRequired = "SESSION_REQUIRED"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRateLimited     = "RATE_LIMITED"
	CodeProvider        = "PROVIDER_ERROR"
	CodeTimeout         = "LLM_TIMEOUT"
	CodeInternal        = "INTERNAL_ERROR"
)

// Localized messages shared by middleware.
const (
	MsgInternal        = "Đã xảy ra lỗi không mong muốn. Vui lòng thử lại."
	MsgSessionRequired = "Thiếu mã phiên làm việc."
	MsgSessionNotFound = "Phiên làm việc đã hết hạn. Vui lòng tải lại trang."
	MsgRateLimited     = "Bạn thao tác quá nhanh. Vui lòng thử lại sau ít phút."
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if sessionID := c.GetString("sessionId"); sessionID != "" {
		fields["session_id"] = sessionID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
