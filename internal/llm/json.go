package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOutput marks structured output that could not be decoded.
var ErrMalformedOutput = errors.New("malformed structured output")

// DecodeJSON decodes schema-constrained output into v. A surrounding markdown
// code fence is tolerated.
func DecodeJSON(text string, v any) error {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return fmt.Errorf("%w: empty text", ErrMalformedOutput)
	}
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	return nil
}
