package research

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// extractJSONObject returns the outermost {...} span of a model response,
// ignoring reasoning blocks, code fences and surrounding prose.
func extractJSONObject(raw string) (string, error) {
	text := thinkBlock.ReplaceAllString(raw, "")
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object in %q", ErrMalformedResponse, truncateForLog(raw))
	}
	return text[start : end+1], nil
}

func decodeJSONObject(raw string, v any) error {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return fmt.Errorf("%w: %v (content: %s)", ErrMalformedResponse, err, truncateForLog(raw))
	}
	return nil
}

func truncateForLog(s string) string {
	const limit = 200
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
