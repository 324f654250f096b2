package model

import (
	"encoding/json"
	"regexp"
	"strings"
)

// PostProcessFunc transforms a model's generated text after a successful
// call, resolved by name from a model's post_process config field (spec
// §4.2 "Post-processing").
type PostProcessFunc func(text string) string

var postProcessRegistry = map[string]PostProcessFunc{}

// RegisterPostProcess installs a named post-process function.
func RegisterPostProcess(name string, fn PostProcessFunc) {
	postProcessRegistry[name] = fn
}

func lookupPostProcess(name string) (PostProcessFunc, bool) {
	fn, ok := postProcessRegistry[name]
	return fn, ok
}

// stripSpecialTokens removes every configured special token substring from
// text.
func stripSpecialTokens(text string, tokens []string) string {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		text = strings.ReplaceAll(text, tok, "")
	}
	return text
}

var (
	detailsBlockRe = regexp.MustCompile(`(?s)<details>\s*<summary>.*?</summary>(.*?)</details>`)
	bracketTagRe   = regexp.MustCompile(`(?s)^\[([A-Z]+)\](.*?)\[/([A-Z]+)\]$`)
	alignBlockRe   = regexp.MustCompile(`(?s)\\begin\{align\*\}|\\end\{align\*\}`)
)

func init() {
	// Vendor-specific text quirks keyed by model name, ported from
	// custom_models.py's _post_process_for_model.
	RegisterPostProcess("mixtral8x7b", func(text string) string {
		return strings.ReplaceAll(text, `\_`, "_")
	})
	RegisterPostProcess("mixtral_instruct_8x22b", func(text string) string {
		trimmed := strings.TrimSpace(text)
		if m := detailsBlockRe.FindStringSubmatch(trimmed); m != nil {
			trimmed = strings.TrimSpace(m[1])
		}
		if m := bracketTagRe.FindStringSubmatch(trimmed); m != nil && m[1] == m[3] {
			trimmed = strings.TrimSpace(m[2])
		}
		trimmed = alignBlockRe.ReplaceAllString(trimmed, "")
		return trimmed
	})
}

// applyPostProcess strips special tokens, then applies the configured
// named transform, if any. Order matches custom_models.py: special-token
// replacement runs as part of _replace_special_tokens before
// _post_process_for_model, but both are idempotent string transforms so a
// single ordered pass here is equivalent and simpler to reason about.
func applyPostProcess(text string, cfg *Config) string {
	text = stripSpecialTokens(text, cfg.SpecialTokens)
	if cfg.PostProcess != "" {
		if fn, ok := lookupPostProcess(cfg.PostProcess); ok {
			text = fn(text)
		}
	}
	return text
}

// statusFromBody recovers an HTTP-ish status code embedded in an error
// response body when the transport only surfaces a generic failure,
// ported from custom_models.py's _get_status_from_body. It looks for a
// top-level "statusCode" then "code" integer field in a JSON body.
func statusFromBody(body []byte) (int, bool) {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return 0, false
	}
	for _, key := range []string{"statusCode", "code"} {
		if v, ok := decoded[key]; ok {
			switch n := v.(type) {
			case float64:
				return int(n), true
			case json.Number:
				if i, err := n.Int64(); err == nil {
					return int(i), true
				}
			}
		}
	}
	return 0, false
}
