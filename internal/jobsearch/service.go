package jobsearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/shared/metrics"
)

const (
	minResults         = 10
	maxResults         = 12
	defaultSourceTitle = "Web Source"
	// otherCity is the picker's catch-all and says nothing about place.
	otherCity = "Khác"
)

// Service runs grounded job searches.
type Service struct {
	Provider llm.Provider
	Model    string
	Logo     LogoResolver
	// NewBatch returns a token that keeps listing ids unique across searches.
	NewBatch func() string
}

// Search asks the provider for listings matching criteria. loc only biases
// the prompt; it is never required.
func (s *Service) Search(ctx context.Context, criteria Criteria, loc *llm.LatLng) (Result, error) {
	if err := criteria.Validate(); err != nil {
		return Result{}, err
	}
	if s.Provider == nil {
		return Result{}, llm.ErrNotConfigured
	}
	prompt, err := BuildPrompt(criteria, loc)
	if err != nil {
		return Result{}, err
	}
	resp, err := s.Provider.Generate(ctx, llm.Request{
		Call:  "search",
		Model: s.Model,
		Parts: []llm.Part{llm.TextPart(prompt)},
		Tools: []llm.Tool{llm.ToolWebSearch},
	})
	if err != nil {
		return Result{}, fmt.Errorf("job search: %w", err)
	}

	batch := uuid.NewString()[:8]
	if s.NewBatch != nil {
		batch = s.NewBatch()
	}
	result := Result{
		Jobs:    ParseListings(resp.Text, searchCity(criteria), batch, s.Logo),
		Sources: llm.SourcesOf(resp.Chunks, llm.ChunkWeb, defaultSourceTitle),
	}
	if result.Jobs == nil {
		result.Jobs = []Listing{}
	}
	metrics.ObserveSearchResults(len(result.Jobs))
	return result, nil
}

// BuildQuery composes the natural-language search phrase.
func BuildQuery(c Criteria) string {
	q := "việc làm part-time cho sinh viên " + strings.TrimSpace(c.Keyword)
	if d := strings.TrimSpace(c.District); d != "" {
		q += " tại " + d
	}
	if city := searchCity(c); city != "" {
		q += " ở " + city
	}
	return q
}

// LocationContext describes loc for the prompt, or "" when absent.
func LocationContext(loc *llm.LatLng) string {
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("Ưu tiên các công việc gần vị trí tọa độ: %.6f, %.6f.", loc.Latitude, loc.Longitude)
}

type promptData struct {
	Query           string
	LocationContext string
	Category        string
	Shifts          string
	Salary          string
	MinResults      int
	MaxResults      int
	Separator       string
}

// BuildPrompt renders the search prompt for c.
func BuildPrompt(c Criteria, loc *llm.LatLng) (string, error) {
	shifts := make([]string, 0, len(c.WorkShifts))
	for _, sh := range c.WorkShifts {
		if sh = strings.TrimSpace(sh); sh != "" {
			shifts = append(shifts, sh)
		}
	}
	return llm.RenderPrompt(llm.PromptJobSearch, promptData{
		Query:           BuildQuery(c),
		LocationContext: LocationContext(loc),
		Category:        strings.TrimSpace(c.JobCategory),
		Shifts:          strings.Join(shifts, ", "),
		Salary:          c.Salary.String(),
		MinResults:      minResults,
		MaxResults:      maxResults,
		Separator:       Separator,
	})
}

func searchCity(c Criteria) string {
	city := strings.TrimSpace(c.City)
	if city == otherCity {
		return ""
	}
	return city
}
