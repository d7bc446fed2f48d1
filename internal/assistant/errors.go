package assistant

import (
	"context"
	"errors"

	"parttimepal-backend/internal/analysis"
	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/shared/server/respond"
)

var (
	ErrJobNotFound    = errors.New("job not found in current results")
	ErrNoSelectedJob  = errors.New("no job selected for cv match")
	ErrInputRejected  = errors.New("input rejected")
	ErrMissingPayload = errors.New("verify input is empty")
	ErrMatchFailed    = errors.New("cv match failed")
)

// User-facing messages for pipeline outcomes.
const (
	MsgSearchFailed   = "Lỗi khi tìm kiếm việc làm."
	MsgNoResults      = "Không tìm thấy công việc phù hợp. Hãy thử thay đổi từ khóa hoặc địa điểm."
	MsgAnalysisFailed = "Có lỗi xảy ra trong quá trình phân tích."
	MsgInputFailed    = "Không thể xử lý dữ liệu đầu vào. Vui lòng thử lại."
)

// RejectionError carries the localized reason an input was refused.
type RejectionError struct {
	Message string
	Err     error
}

func (e *RejectionError) Error() string { return e.Err.Error() }

func (e *RejectionError) Unwrap() []error { return []error{ErrInputRejected, e.Err} }

// classifyFailure maps a pipeline error to the journal error code.
func classifyFailure(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputRejected):
		return respond.CodeInputRejected
	case llm.IsTimeout(err):
		return respond.CodeTimeout
	case errors.Is(err, context.Canceled):
		return respond.CodeInternal
	case errors.Is(err, analysis.ErrPanic):
		return respond.CodeInternal
	default:
		return respond.CodeProvider
	}
}
