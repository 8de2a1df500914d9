// Package llmjson decodes JSON produced by a language model. Model output is
// untrusted: it may be wrapped in markdown fences, carry commentary around the
// object, or be slightly malformed. Decode applies a strict pass first and a
// repair pass second; callers keep a single fallback value for when both fail.
package llmjson

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// Decode parses raw model output into out. It trims markdown code fences,
// isolates the outermost JSON value, then attempts a strict unmarshal and,
// failing that, a jsonrepair pass.
func Decode(raw string, out any) error {
	cleaned := extract(raw)
	if cleaned == "" {
		return fmt.Errorf("llmjson: no JSON value in output")
	}

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return fmt.Errorf("llmjson: repair failed: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), out); err != nil {
		return fmt.Errorf("llmjson: unmarshal after repair: %w", err)
	}
	return nil
}

// extract strips code fences and surrounding prose, returning the outermost
// {...} or [...] span, or the trimmed input when no brackets are found.
func extract(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndexByte(s, '}')
	} else {
		end = strings.LastIndexByte(s, ']')
	}
	if end <= start {
		return s[start:]
	}
	return s[start : end+1]
}
