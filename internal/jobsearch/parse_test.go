package jobsearch

import (
	"strings"
	"testing"
)

const sampleResponse = `Đây là các công việc tôi tìm được:
Title: Nhân viên phục vụ
Company: Highlands Coffee
Domain: highlandscoffee.com.vn
Location: Quận 1, TP. Hồ Chí Minh
Salary: 25.000đ/giờ
Description: Phục vụ khách tại quầy. Ca linh hoạt.
Source: TopCV
Link: https://www.topcv.vn/viec-lam/123
---JOB_SEPARATOR---
**Title:** Gia sư tiếng Anh
Description: Dạy kèm học sinh cấp 2.
---JOB_SEPARATOR---
Company: Không có tiêu đề
Description: Bản ghi này thiếu Title.
---JOB_SEPARATOR---
Title: Cộng tác viên bán hàng
Company: 
Domain: facebook.com
Link: không có
---JOB_SEPARATOR---
`

func TestParseListingsExtractsFieldsAndDefaults(t *testing.T) {
	logo := LogoResolver{Template: "https://logo.example/%s", Excluded: DefaultExcludedDomains}
	jobs := ParseListings(sampleResponse, "Hà Nội", "b1", logo)
	if len(jobs) != 3 {
		t.Fatalf("expected 3 listings, got %d: %+v", len(jobs), jobs)
	}

	first := jobs[0]
	if first.Title != "Nhân viên phục vụ" || first.Company != "Highlands Coffee" || first.Source != "TopCV" {
		t.Fatalf("unexpected first listing: %+v", first)
	}
	if first.LogoURL != "https://logo.example/highlandscoffee.com.vn" {
		t.Fatalf("unexpected logo: %q", first.LogoURL)
	}
	if first.OriginalLink != "https://www.topcv.vn/viec-lam/123" {
		t.Fatalf("unexpected link: %q", first.OriginalLink)
	}

	second := jobs[1]
	if second.Title != "Gia sư tiếng Anh" {
		t.Fatalf("expected bold label to parse, got %q", second.Title)
	}
	if second.Company != "Đang cập nhật" || second.Salary != "Thỏa thuận" || second.Source != "Google Search" {
		t.Fatalf("expected defaults, got %+v", second)
	}
	if second.Location != "Hà Nội" {
		t.Fatalf("expected city default location, got %q", second.Location)
	}
	if second.LogoURL != "" {
		t.Fatalf("expected no logo without domain")
	}

	third := jobs[2]
	if third.Company != "Đang cập nhật" {
		t.Fatalf("blank company should default, got %q", third.Company)
	}
	if third.LogoURL != "" || third.OriginalLink != "" {
		t.Fatalf("excluded domain and non-url link must be dropped: %+v", third)
	}
}

func TestParseListingsIDsUnique(t *testing.T) {
	jobs := ParseListings(sampleResponse, "", "b2", LogoResolver{})
	seen := map[string]bool{}
	for _, j := range jobs {
		if seen[j.ID] {
			t.Fatalf("duplicate id %s", j.ID)
		}
		seen[j.ID] = true
		if !strings.HasSuffix(j.ID, "-b2") {
			t.Fatalf("expected batch suffix in %s", j.ID)
		}
	}
	if jobs[1].Location != "Việt Nam" {
		t.Fatalf("expected national default location, got %q", jobs[1].Location)
	}
}

func TestParseListingsNoSeparator(t *testing.T) {
	if jobs := ParseListings("Xin lỗi, tôi không tìm thấy kết quả.", "", "x", LogoResolver{}); len(jobs) != 0 {
		t.Fatalf("expected no listings, got %+v", jobs)
	}
}

func TestLogoResolver(t *testing.T) {
	r := LogoResolver{Template: "https://logo.example/%s", Excluded: DefaultExcludedDomains}
	cases := map[string]string{
		"https://www.Shopee.vn/jobs": "https://logo.example/shopee.vn",
		"m.facebook.com":             "",
		"google.com":                 "",
		"abc":                        "",
		"a.b":                        "",
		"":                           "",
	}
	for in, want := range cases {
		if got := r.LogoURL(in); got != want {
			t.Fatalf("LogoURL(%q) = %q, want %q", in, got, want)
		}
	}
}
