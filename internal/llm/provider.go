// Package llm defines the contract the pipeline consumes from a generative
// analysis provider: multi-part prompts, optional response schemas, search and
// maps grounding, and a location hint.
package llm

import (
	"context"
	"errors"
)

// Provider generates a response for one request.
type Provider interface {
	Generate(ctx context.Context, req Request) (Response, error)
}

// Tool enables a grounding capability for a request.
type Tool string

const (
	ToolWebSearch  Tool = "web_search"
	ToolMapsSearch Tool = "maps_search"
)

// Part is one prompt segment: either text or an inline binary payload.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// TextPart builds a text prompt part.
func TextPart(s string) Part { return Part{Text: s} }

// BinaryPart builds an inline binary part such as an image or a PDF.
func BinaryPart(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// IsBinary reports whether the part carries inline data.
func (p Part) IsBinary() bool { return len(p.Data) > 0 }

// LatLng is a geographic hint that biases grounding.
type LatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Request is a single generate call.
type Request struct {
	// Call names the pipeline step for logs and metrics.
	Call           string
	Model          string
	Parts          []Part
	Schema         *Schema
	Tools          []Tool
	Location       *LatLng
	ThinkingBudget int
}

// HasTool reports whether the request enables t.
func (r Request) HasTool(t Tool) bool {
	for _, tool := range r.Tools {
		if tool == t {
			return true
		}
	}
	return false
}

// ChunkKind distinguishes web citations from maps places.
type ChunkKind string

const (
	ChunkWeb  ChunkKind = "web"
	ChunkMaps ChunkKind = "maps"
)

// GroundingChunk is one citation returned by search or maps grounding.
type GroundingChunk struct {
	Kind  ChunkKind
	URI   string
	Title string
}

// Response is the provider output.
type Response struct {
	Text   string
	Chunks []GroundingChunk
}

var (
	// ErrNotConfigured is returned by the placeholder provider.
	ErrNotConfigured = errors.New("analysis provider not configured")
	// ErrProviderTimeout marks a call that exceeded its per-call deadline.
	ErrProviderTimeout = errors.New("analysis provider timeout")
	// ErrEmptyResponse marks a response without any candidate text.
	ErrEmptyResponse = errors.New("analysis provider returned no content")
)

// PlaceholderProvider is used when no provider credentials are configured.
type PlaceholderProvider struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	return Response{}, ErrNotConfigured
}

var _ Provider = PlaceholderProvider{}
