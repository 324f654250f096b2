package structured

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatInstructions renders a natural-language instruction appended to the
// final user message when a vendor adapter has no native structured-output
// support, asking the model to emit JSON matching schema (spec §4.2 step 3).
func FormatInstructions(schema *JSONSchema) string {
	raw, err := schema.ToJSON()
	if err != nil {
		return "Respond with a single JSON object matching the requested schema. Do not include any other text."
	}
	var sb strings.Builder
	sb.WriteString("Respond with a single JSON object that strictly matches this JSON Schema. ")
	sb.WriteString("Do not include explanations, markdown fences, or any text outside the JSON object.\n\nSchema:\n")
	sb.Write(raw)
	return sb.String()
}

// ExtractJSON finds the first plausible JSON object or array in free text,
// unwrapping a ```json fenced block if present, else scanning for the first
// balanced top-level {...} or [...] span.
func ExtractJSON(text string) (string, bool) {
	if fenced, ok := extractFenced(text); ok {
		return fenced, true
	}
	return extractBalanced(text)
}

func extractFenced(text string) (string, bool) {
	const openers = "```json"
	idx := strings.Index(text, openers)
	if idx < 0 {
		idx = strings.Index(text, "```")
		if idx < 0 {
			return "", false
		}
		idx += len("```")
	} else {
		idx += len(openers)
	}
	rest := text[idx:]
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func extractBalanced(text string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(text); i++ {
		if text[i] == '{' || text[i] == '[' {
			start = i
			open = text[i]
			if open == '{' {
				close = '}'
			} else {
				close = ']'
			}
			break
		}
	}
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// ParseFallback attempts to extract and validate a JSON value from free
// text against schema. On success it returns the canonical re-serialized
// JSON. On failure (no JSON found, invalid JSON, or schema violation) ok is
// false and the caller (the Model Client) returns the raw text with status
// 200 per spec §4.2 step 3 / §8 invariant 6.
func ParseFallback(text string, schema *JSONSchema, validator Validator) (canonical []byte, ok bool, err error) {
	candidate, found := ExtractJSON(text)
	if !found {
		return nil, false, fmt.Errorf("no JSON object found in fallback response")
	}
	if verr := validator.Validate([]byte(candidate), schema); verr != nil {
		return nil, false, verr
	}
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, false, fmt.Errorf("re-parse extracted JSON: %w", err)
	}
	canonical, err = json.Marshal(value)
	if err != nil {
		return nil, false, err
	}
	return canonical, true, nil
}
