package llm

import (
	"strings"
	"testing"
)

func TestPromptTemplatesPresent(t *testing.T) {
	names := []string{
		PromptImageExtract, PromptURLExtract, PromptJobSearch, PromptEntities,
		PromptScam, PromptVerify, PromptSuitability, PromptCVMatch,
	}
	for _, name := range names {
		if raw, ok := promptTemplate(name); !ok || strings.TrimSpace(raw) == "" {
			t.Fatalf("missing prompt template %s", name)
		}
	}
	if _, ok := promptTemplate("nope"); ok {
		t.Fatalf("expected unknown template to be reported")
	}
}

func TestRenderPromptEmbedsFields(t *testing.T) {
	out, err := RenderPrompt(PromptURLExtract, map[string]string{
		"URL":      "https://example.com/post/1",
		"Sentinel": "ERROR_CANNOT_READ_LINK",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "https://example.com/post/1") || !strings.HasSuffix(out, "ERROR_CANNOT_READ_LINK") {
		t.Fatalf("unexpected url prompt: %s", out)
	}
}

func TestRenderPromptRejectsMissingKey(t *testing.T) {
	if _, err := RenderPrompt(PromptEntities, map[string]string{}); err == nil {
		t.Fatalf("expected error for missing Text field")
	}
	if _, err := RenderPrompt("unknown", nil); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}
