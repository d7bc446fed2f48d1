package analysis

import "errors"

// ErrPanic marks a sub-call that panicked; the whole run fails.
var ErrPanic = errors.New("analysis sub-call panicked")

// Default texts used when a sub-call degrades.
const (
	unknownValue          = "Unknown"
	defaultScamReason     = "Không thể phân tích chi tiết do lỗi hệ thống."
	defaultScamVerdict    = "Vui lòng tự kiểm tra kỹ lưỡng."
	defaultScamScore      = 50
	noVerificationFound   = "Không tìm thấy thông tin xác minh cụ thể trên mạng."
	verificationFailed    = "Lỗi khi kết nối hệ thống xác minh."
	defaultSuitabilityTip = "Lỗi phân tích"
	webSourceTitle        = "Nguồn Web"
	mapsSourceTitle       = "Địa điểm Maps"
)
