// Package cvmatch scores a candidate CV against a job description.
package cvmatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"parttimepal-backend/internal/llm"
	"parttimepal-backend/internal/normalize"
	"parttimepal-backend/internal/sanitize"
)

var (
	ErrJobDescriptionRequired = errors.New("job description is required")
	ErrCVRequired             = errors.New("cv content is required")
)

// MsgMatchFailed is shown when matching cannot complete. There is no default
// analysis for this call.
const MsgMatchFailed = "Không thể phân tích CV lúc này. Vui lòng thử lại sau."

// Analysis is the CV fit assessment.
type Analysis struct {
	MatchScore    int      `json:"matchScore"`
	Pros          []string `json:"pros"`
	MissingSkills []string `json:"missingSkills"`
	Advice        string   `json:"advice"`
}

var matchSchema = llm.Object(
	"matchScore", llm.Integer("Điểm phù hợp từ 0 đến 100"),
	"pros", llm.ArrayOf(llm.String(""), "Điểm mạnh của ứng viên"),
	"missingSkills", llm.ArrayOf(llm.String(""), "Kỹ năng còn thiếu"),
	"advice", llm.String("Lời khuyên cải thiện CV"),
)

// Service runs CV matching.
type Service struct {
	Provider llm.Provider
	Model    string
}

type promptData struct {
	JobDescription string
	CVText         string
	Attached       bool
}

// Match compares cv with jobDescription. A binary CV is sent as an inline
// attachment after the prompt text.
func (s *Service) Match(ctx context.Context, jobDescription string, cv normalize.Document) (Analysis, error) {
	jobDescription = strings.TrimSpace(jobDescription)
	if jobDescription == "" {
		return Analysis{}, ErrJobDescriptionRequired
	}
	if !cv.Attached() && strings.TrimSpace(cv.Text) == "" {
		return Analysis{}, ErrCVRequired
	}
	if s.Provider == nil {
		return Analysis{}, llm.ErrNotConfigured
	}

	prompt, err := llm.RenderPrompt(llm.PromptCVMatch, promptData{
		JobDescription: jobDescription,
		CVText:         cv.Text,
		Attached:       cv.Attached(),
	})
	if err != nil {
		return Analysis{}, err
	}
	parts := []llm.Part{llm.TextPart(prompt)}
	if cv.Attached() {
		parts = append(parts, *cv.Attachment)
	}

	resp, err := s.Provider.Generate(ctx, llm.Request{Call: "cv_match", Model: s.Model, Parts: parts, Schema: matchSchema})
	if err != nil {
		return Analysis{}, fmt.Errorf("cv match: %w", err)
	}
	var out Analysis
	if err := llm.DecodeJSON(resp.Text, &out); err != nil {
		return Analysis{}, fmt.Errorf("cv match: %w", err)
	}
	out.MatchScore = clampScore(out.MatchScore)
	out.Pros = sanitize.StripPlainAll(out.Pros)
	out.MissingSkills = sanitize.StripPlainAll(out.MissingSkills)
	out.Advice = sanitize.StripPlain(out.Advice)
	return out, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
