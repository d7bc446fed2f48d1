package jobsearch

import (
	"fmt"
	"strings"

	"parttimepal-backend/internal/llm"
)

// Criteria are the user's search filters. Only Keyword is required.
type Criteria struct {
	Keyword     string       `json:"keyword"`
	City        string       `json:"city,omitempty"`
	District    string       `json:"district,omitempty"`
	JobCategory string       `json:"jobCategory,omitempty"`
	WorkShifts  []string     `json:"workShift,omitempty"`
	Salary      *SalaryRange `json:"salaryRange,omitempty"`
}

// SalaryRange is an hourly range in VND. Zero means unbounded.
type SalaryRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Validate checks the criteria before any provider call is made.
func (c Criteria) Validate() error {
	if strings.TrimSpace(c.Keyword) == "" {
		return ErrKeywordRequired
	}
	if r := c.Salary; r != nil {
		if r.Min < 0 || r.Max < 0 || (r.Max > 0 && r.Min > r.Max) {
			return ErrInvalidSalaryRange
		}
	}
	return nil
}

func (r *SalaryRange) String() string {
	if r == nil {
		return ""
	}
	switch {
	case r.Min > 0 && r.Max > 0:
		return fmt.Sprintf("từ %s đến %s VNĐ/giờ", groupThousands(r.Min), groupThousands(r.Max))
	case r.Min > 0:
		return fmt.Sprintf("từ %s VNĐ/giờ trở lên", groupThousands(r.Min))
	case r.Max > 0:
		return fmt.Sprintf("tối đa %s VNĐ/giờ", groupThousands(r.Max))
	}
	return ""
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Listing is one job posting extracted from a search response.
type Listing struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Company      string `json:"company"`
	Location     string `json:"location"`
	Salary       string `json:"salary"`
	Description  string `json:"description"`
	Source       string `json:"source"`
	Domain       string `json:"domain,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	OriginalLink string `json:"originalLink,omitempty"`
}

// Result is one completed search.
type Result struct {
	Jobs    []Listing    `json:"jobs"`
	Sources []llm.Source `json:"sources"`
}
