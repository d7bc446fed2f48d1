package llm

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// Prompt template names.
const (
	PromptImageExtract = "image_extract"
	PromptURLExtract   = "url_extract"
	PromptJobSearch    = "job_search"
	PromptEntities     = "entities"
	PromptScam         = "scam"
	PromptVerify       = "verify"
	PromptSuitability  = "suitability"
	PromptCVMatch      = "cv_match"
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var promptTemplates = template.Must(
	template.New("prompts").Option("missingkey=error").ParseFS(promptFiles, "prompts/*.tmpl"),
)

// promptTemplate returns the raw template text and whether name was recognized.
func promptTemplate(name string) (string, bool) {
	raw, err := promptFiles.ReadFile("prompts/" + name + ".tmpl")
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// RenderPrompt executes the named template with data.
func RenderPrompt(name string, data any) (string, error) {
	t := promptTemplates.Lookup(name + ".tmpl")
	if t == nil {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
