package assistant

import (
	"encoding/json"
	"strings"

	"github.com/zxiaoiegw/pill-reminder/internal/models"
)

// ParseAssistantOutput turns raw model text into an AssistantOutput. It
// never fails: the model is instructed to emit a fixed JSON shape but is
// not a reliable producer of one, so parsing degrades through three tiers:
//
//  1. Strict: the text is a JSON object matching
//     {"response": string, "suggestions": [string...]}. Returned as-is.
//  2. Salvage: the text is parseable JSON but the shape is off. The
//     response is probed in order: "response" field, then "answer" field,
//     then the raw text itself. Non-string entries in "suggestions" are
//     dropped silently. The probe order is part of the contract.
//  3. Verbatim: the text is not JSON at all. It becomes the response
//     string unchanged, with no suggestions.
func ParseAssistantOutput(raw string) models.AssistantOutput {
	text := stripCodeFence(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return models.AssistantOutput{Response: raw}
	}

	var strict models.AssistantOutput
	if err := json.Unmarshal([]byte(text), &strict); err == nil && strict.Response != "" {
		return strict
	}

	return salvage(fields, raw)
}

func salvage(fields map[string]json.RawMessage, raw string) models.AssistantOutput {
	out := models.AssistantOutput{Response: raw}

	for _, key := range []string{"response", "answer"} {
		var s string
		if data, ok := fields[key]; ok && json.Unmarshal(data, &s) == nil && s != "" {
			out.Response = s
			break
		}
	}

	if data, ok := fields["suggestions"]; ok {
		var entries []json.RawMessage
		if json.Unmarshal(data, &entries) == nil {
			for _, entry := range entries {
				var s string
				if json.Unmarshal(entry, &s) == nil {
					out.Suggestions = append(out.Suggestions, s)
				}
			}
		}
	}

	return out
}

// stripCodeFence removes a markdown ```json fence the model sometimes wraps
// around its output despite instructions.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
