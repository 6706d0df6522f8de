package inference

import (
	"encoding/json"
	"strings"
)

// ExtractObject locates the JSON object embedded in a raw completion:
// the substring from the first '{' to the last '}'. Models routinely wrap
// structured answers in prose or markdown fences, so anything outside the
// braces is discarded. Returns false when no parseable object is present.
func ExtractObject(response string) (string, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end < start {
		return "", false
	}
	candidate := response[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}
