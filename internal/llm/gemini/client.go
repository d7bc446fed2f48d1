package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"parttimepal-backend/internal/llm"
)

// Client implements llm.Provider on the Gemini API.
type Client struct {
	models       *genai.Models
	defaultModel string
}

// NewClient constructs a Gemini-backed provider.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for Gemini")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{models: client.Models, defaultModel: model}, nil
}

// Generate sends one request and maps the first candidate back.
func (c *Client) Generate(ctx context.Context, req llm.Request) (llm.Response, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	contents, err := buildContents(req.Parts)
	if err != nil {
		return llm.Response{}, err
	}
	resp, err := c.models.GenerateContent(ctx, model, contents, buildConfig(req))
	if err != nil {
		return llm.Response{}, fmt.Errorf("gemini %s: %w", req.Call, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return llm.Response{}, fmt.Errorf("gemini %s: %w", req.Call, llm.ErrEmptyResponse)
	}
	return llm.Response{
		Text:   resp.Text(),
		Chunks: groundingChunks(resp.Candidates[0]),
	}, nil
}

func buildContents(parts []llm.Part) ([]*genai.Content, error) {
	if len(parts) == 0 {
		return nil, errors.New("gemini: request has no parts")
	}
	out := make([]*genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsBinary() {
			out = append(out, genai.NewPartFromBytes(p.Data, p.MIMEType))
			continue
		}
		if p.Text != "" {
			out = append(out, genai.NewPartFromText(p.Text))
		}
	}
	if len(out) == 0 {
		return nil, errors.New("gemini: request has only empty parts")
	}
	return []*genai.Content{genai.NewContentFromParts(out, genai.RoleUser)}, nil
}

func buildConfig(req llm.Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = toSchema(req.Schema)
	}
	for _, tool := range req.Tools {
		switch tool {
		case llm.ToolWebSearch:
			cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleSearch: &genai.GoogleSearch{}})
		case llm.ToolMapsSearch:
			cfg.Tools = append(cfg.Tools, &genai.Tool{GoogleMaps: &genai.GoogleMaps{}})
		}
	}
	if req.Location != nil && len(cfg.Tools) > 0 {
		cfg.ToolConfig = &genai.ToolConfig{
			RetrievalConfig: &genai.RetrievalConfig{
				LatLng: &genai.LatLng{
					Latitude:  genai.Ptr(req.Location.Latitude),
					Longitude: genai.Ptr(req.Location.Longitude),
				},
			},
		}
	}
	if req.ThinkingBudget > 0 {
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(req.ThinkingBudget))}
	}
	return cfg
}

func groundingChunks(cand *genai.Candidate) []llm.GroundingChunk {
	if cand == nil || cand.GroundingMetadata == nil {
		return nil
	}
	var out []llm.GroundingChunk
	for _, ch := range cand.GroundingMetadata.GroundingChunks {
		if ch == nil {
			continue
		}
		if ch.Web != nil {
			out = append(out, llm.GroundingChunk{
				Kind:  llm.ChunkWeb,
				URI:   ch.Web.URI,
				Title: strings.TrimSpace(ch.Web.Title),
			})
		}
		if ch.Maps != nil {
			out = append(out, llm.GroundingChunk{
				Kind:  llm.ChunkMaps,
				URI:   ch.Maps.URI,
				Title: strings.TrimSpace(ch.Maps.Title),
			})
		}
	}
	return out
}

var _ llm.Provider = (*Client)(nil)
