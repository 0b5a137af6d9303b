package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// stripCodeFence removes a surrounding markdown code block, if present
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// drop the language tag on the opening fence
	if i := strings.IndexByte(text, '\n'); i >= 0 && !strings.ContainsAny(text[:i], " \t") {
		text = text[i+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// parseRefinementJSON extracts the JSON object from a provider response.
// Keys are returned as the provider wrote them; mapping them onto canonical
// fields is the normalizer's job.
func parseRefinementJSON(text string) (map[string]any, error) {
	text = stripCodeFence(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	// Extract just the JSON part
	text = text[startIdx : endIdx+1]

	var data map[string]any
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// providers answer null for fields they could not find
	for k, v := range data {
		if v == nil {
			delete(data, k)
		}
	}

	return data, nil
}
