package analysis

import "strings"

// RedFlag is a phrase that commonly appears in fraudulent postings.
type RedFlag struct {
	Phrase string
	Reason string
}

// DefaultRedFlags are checked when the scam assessment falls back.
var DefaultRedFlags = []RedFlag{
	{Phrase: "đặt cọc", Reason: "Tin yêu cầu đặt cọc trước khi nhận việc."},
	{Phrase: "đóng phí", Reason: "Tin yêu cầu người lao động đóng phí."},
	{Phrase: "phí hồ sơ", Reason: "Tin yêu cầu người lao động đóng phí."},
	{Phrase: "phí đồng phục", Reason: "Tin yêu cầu người lao động đóng phí."},
	{Phrase: "việc nhẹ lương cao", Reason: "Lời hứa \"việc nhẹ lương cao\" thường gặp ở tin lừa đảo."},
	{Phrase: "chuyển khoản trước", Reason: "Tin yêu cầu chuyển khoản trước."},
	{Phrase: "nạp tiền", Reason: "Tin yêu cầu nạp tiền để nhận việc."},
	{Phrase: "telegram", Reason: "Liên hệ qua Telegram, khó xác minh danh tính nhà tuyển dụng."},
	{Phrase: "zalo", Reason: "Liên hệ qua Zalo, khó xác minh danh tính nhà tuyển dụng."},
	{Phrase: "@gmail.com", Reason: "Dùng email cá nhân thay cho email doanh nghiệp."},
	{Phrase: "@yahoo.", Reason: "Dùng email cá nhân thay cho email doanh nghiệp."},
}

// ScanRedFlags returns the distinct reasons for every flag found in text,
// case-insensitively, in flag order.
func ScanRedFlags(text string, flags []RedFlag) []string {
	if len(flags) == 0 || text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	seen := map[string]struct{}{}
	var out []string
	for _, f := range flags {
		if f.Phrase == "" || !strings.Contains(lower, strings.ToLower(f.Phrase)) {
			continue
		}
		if _, ok := seen[f.Reason]; ok {
			continue
		}
		seen[f.Reason] = struct{}{}
		out = append(out, f.Reason)
	}
	return out
}
