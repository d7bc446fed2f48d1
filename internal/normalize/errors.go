package normalize

import "errors"

var (
	ErrContentTooShort = errors.New("content too short to analyse")
	ErrCannotReadLink  = errors.New("link content could not be read")
	ErrImageUnreadable = errors.New("image content could not be read")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyInput      = errors.New("input is empty")
)

// User-facing messages shown in place of analysis output.
const (
	MsgContentTooShort = "Nội dung quá ngắn hoặc không đủ thông tin để phân tích."
	MsgCannotReadLink  = "Không thể đọc nội dung từ link này (do quyền riêng tư hoặc chưa được Google lập chỉ mục). Vui lòng COPY NỘI DUNG và dùng tab 'Văn Bản' để AI phân tích chính xác."
	MsgImageFailed     = "Lỗi khi xử lý hình ảnh. Vui lòng thử lại hoặc nhập văn bản thủ công."
	MsgImageEmpty      = "Không thể đọc được nội dung từ ảnh."
	MsgUnsupportedFile = "Định dạng tệp không được hỗ trợ. Vui lòng dùng PDF, DOC, DOCX, ảnh hoặc tệp văn bản."
)

// Message maps a normalization error to its user-facing text.
func Message(err error) (string, bool) {
	switch {
	case errors.Is(err, ErrContentTooShort), errors.Is(err, ErrEmptyInput):
		return MsgContentTooShort, true
	case errors.Is(err, ErrCannotReadLink):
		return MsgCannotReadLink, true
	case errors.Is(err, ErrImageUnreadable):
		return MsgImageEmpty, true
	case errors.Is(err, ErrUnsupportedFile):
		return MsgUnsupportedFile, true
	}
	return "", false
}
