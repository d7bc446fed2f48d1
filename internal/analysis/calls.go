package analysis

import (
	"context"
	"fmt"
	"strings"

	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/sanitize"
)

var (
	entitiesSchema = llm.Object(
		"jobTitle", llm.String("Tên công việc"),
		"companyName", llm.String("Tên công ty"),
		"salary", llm.String("Mức lương"),
		"location", llm.String("Địa điểm làm việc"),
	)

	scamSchema = llm.Object(
		"score", llm.Integer("Điểm rủi ro từ 0 đến 100"),
		"riskLevel", llm.Enum("Mức rủi ro", RiskSafe.Label(), RiskWarning.Label(), RiskDangerous.Label()),
		"reasons", llm.ArrayOf(llm.String(""), "Các lý do cụ thể"),
		"verdict", llm.String("Kết luận ngắn gọn"),
	).Optional("score")

	suitabilitySchema = llm.Object(
		"suitability", llm.Object(
			"skillsRequired", llm.ArrayOf(llm.String(""), "Kỹ năng cần có"),
			"pros", llm.ArrayOf(llm.String(""), "Ưu điểm"),
			"cons", llm.ArrayOf(llm.String(""), "Nhược điểm"),
			"contactRisks", llm.ArrayOf(llm.String(""), "Rủi ro ở thông tin liên hệ"),
			"advice", llm.String("Lời khuyên cho sinh viên"),
		),
		"draft", llm.String("Tin nhắn ứng tuyển mẫu"),
	)
)

func textPrompt(name, text string) ([]llm.Part, error) {
	prompt, err := llm.RenderPrompt(name, map[string]string{"Text": text})
	if err != nil {
		return nil, err
	}
	return []llm.Part{llm.TextPart(prompt)}, nil
}

func (s *Service) extractEntities(ctx context.Context, text string) (Entities, error) {
	parts, err := textPrompt(llm.PromptEntities, text)
	if err != nil {
		return Entities{}, err
	}
	resp, err := s.Provider.Generate(ctx, llm.Request{Call: "entities", Model: s.Model, Parts: parts, Schema: entitiesSchema})
	if err != nil {
		return Entities{}, err
	}
	var out Entities
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return Entities{}, err
	}
	out.JobTitle = orUnknown(out.JobTitle)
	out.CompanyName = orUnknown(out.CompanyName)
	out.Salary = orUnknown(out.Salary)
	out.Location = orUnknown(out.Location)
	return out, nil
}

func defaultEntities() Entities {
	return Entities{JobTitle: unknownValue, CompanyName: unknownValue, Salary: unknownValue, Location: unknownValue}
}

type scamOutput struct {
	Score     *int     `json:"score"`
	RiskLevel string   `json:"riskLevel"`
	Reasons   []string `json:"reasons"`
	Verdict   string   `json:"verdict"`
}

func (s *Service) assessScam(ctx context.Context, text string) (ScamAnalysis, error) {
	parts, err := textPrompt(llm.PromptScam, text)
	if err != nil {
		return ScamAnalysis{}, err
	}
	model := s.ReasoningModel
	if model == "" {
		model = s.Model
	}
	resp, err := s.Provider.Generate(ctx, llm.Request{
		Call:           "scam",
		Model:          model,
		Parts:          parts,
		Schema:         scamSchema,
		ThinkingBudget: s.ThinkingBudget,
	})
	if err != nil {
		return ScamAnalysis{}, err
	}
	var raw scamOutput
	if err := llm.DecodeJSON(resp.Text, &raw); err != nil {
		return ScamAnalysis{}, err
	}
	level, ok := ParseRiskLevel(raw.RiskLevel)
	if !ok {
		return ScamAnalysis{}, fmt.Errorf("%w: risk level %q", llm.ErrMalformedOutput, raw.RiskLevel)
	}
	out := ScamAnalysis{
		RiskLevel: level,
		RiskLabel: level.Label(),
		Reasons:   nonNil(sanitize.StripPlainAll(raw.Reasons)),
		Verdict:   sanitize.StripPlain(raw.Verdict),
	}
	if raw.Score != nil {
		score := clamp(*raw.Score, 0, 100)
		out.Score = &score
	}
	return out, nil
}

func (s *Service) defaultScam(text string) ScamAnalysis {
	flags := s.RedFlags
	if flags == nil {
		flags = DefaultRedFlags
	}
	score := defaultScamScore
	return ScamAnalysis{
		RiskLevel: RiskWarning,
		RiskLabel: RiskWarning.Label(),
		Reasons:   append([]string{defaultScamReason}, ScanRedFlags(text, flags)...),
		Verdict:   defaultScamVerdict,
		Score:     &score,
	}
}

func (s *Service) verify(ctx context.Context, text string, loc *llm.LatLng) (GroundingData, error) {
	parts, err := textPrompt(llm.PromptVerify, text)
	if err != nil {
		return GroundingData{}, err
	}
	resp, err := s.Provider.Generate(ctx, llm.Request{
		Call:     "verify",
		Model:    s.Model,
		Parts:    parts,
		Tools:    []llm.Tool{llm.ToolWebSearch, llm.ToolMapsSearch},
		Location: loc,
	})
	if err != nil {
		return GroundingData{}, err
	}
	narrative := strings.TrimSpace(sanitize.StripCitations(resp.Text))
	if narrative == "" {
		narrative = noVerificationFound
	}
	return GroundingData{
		VerificationText:   narrative,
		VerificationBlocks: sanitize.ParseMarkdownLite(narrative),
		SearchChunks:       llm.DedupeByURI(llm.SourcesOf(resp.Chunks, llm.ChunkWeb, webSourceTitle)),
		MapChunks:          llm.DedupeByURI(llm.SourcesOf(resp.Chunks, llm.ChunkMaps, mapsSourceTitle)),
	}, nil
}

func defaultGrounding() GroundingData {
	return GroundingData{
		VerificationText:   verificationFailed,
		VerificationBlocks: sanitize.ParseMarkdownLite(verificationFailed),
		SearchChunks:       []llm.Source{},
		MapChunks:          []llm.Source{},
	}
}

type suitabilityOutput struct {
	Suitability Suitability `json:"suitability"`
	Draft       string      `json:"draft"`
}

func (s *Service) assessSuitability(ctx context.Context, text string) (suitabilityOutput, error) {
	parts, err := textPrompt(llm.PromptSuitability, text)
	if err != nil {
		return suitabilityOutput{}, err
	}
	resp, err := s.Provider.Generate(ctx, llm.Request{Call: "suitability", Model: s.Model, Parts: parts, Schema: suitabilitySchema})
	if err != nil {
		return suitabilityOutput{}, err
	}
	var out suitabilityOutput
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return suitabilityOutput{}, err
	}
	st := &out.Suitability
	st.SkillsRequired = nonNil(sanitize.StripPlainAll(st.SkillsRequired))
	st.Pros = nonNil(sanitize.StripPlainAll(st.Pros))
	st.Cons = nonNil(sanitize.StripPlainAll(st.Cons))
	st.ContactRisks = nonNil(sanitize.StripPlainAll(st.ContactRisks))
	st.Advice = sanitize.StripPlain(st.Advice)
	out.Draft = strings.TrimSpace(sanitize.StripCitations(out.Draft))
	return out, nil
}

func defaultSuitability() suitabilityOutput {
	return suitabilityOutput{Suitability: Suitability{
		SkillsRequired: []string{},
		Pros:           []string{},
		Cons:           []string{},
		ContactRisks:   []string{},
		Advice:         defaultSuitabilityTip,
	}}
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return unknownValue
	}
	return strings.TrimSpace(v)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
