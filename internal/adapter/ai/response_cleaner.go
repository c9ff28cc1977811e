// Package ai holds helpers shared by model gateway adapters.
package ai

import (
	"encoding/json"
	"strings"
)

// CleanJSONResponse strips markdown fences and surrounding prose from a model
// reply and returns the outermost JSON array or object. Replies that hold no
// JSON are returned trimmed so the caller's decode reports the failure.
func CleanJSONResponse(response string) string {
	response = removeMarkdownBlocks(strings.TrimSpace(response))
	if json.Valid([]byte(response)) {
		return response
	}
	return extractJSON(response)
}

func removeMarkdownBlocks(response string) string {
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}

// extractJSON returns the span from the first opening bracket to its matching
// close, honouring string literals.
func extractJSON(response string) string {
	start := strings.IndexAny(response, "[{")
	if start == -1 {
		return response
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(response); i++ {
		ch := response[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return response[start : i+1]
			}
		}
	}
	return response[start:]
}
