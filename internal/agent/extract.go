package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrExtraction indicates that no JSON object could be recovered from a
// model response.
var ErrExtraction = errors.New("failed to extract json from model response")

// ExtractJSON unmarshals a JSON object out of raw model text. It first
// tries the whole text, then falls back to the substring between the first
// '{' and the last '}', which tolerates prose or code fences around the
// object.
func ExtractJSON(text string, out any) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("%w: empty response", ErrExtraction)
	}

	if err := json.Unmarshal([]byte(trimmed), out); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return fmt.Errorf("%w: no json object found in %q", ErrExtraction, truncateText(trimmed))
	}

	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v in %q", ErrExtraction, err, truncateText(trimmed))
	}
	return nil
}

const maxErrorTextLen = 200

// truncateText keeps extraction errors readable when the offending
// response is long.
func truncateText(text string) string {
	if len(text) <= maxErrorTextLen {
		return text
	}
	return text[:maxErrorTextLen] + "..."
}
