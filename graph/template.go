package graph

import (
	"fmt"
	"regexp"

	"github.com/sygra-go/sygra/types"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.]+)\s*\}\}`)

// renderTemplate resolves `{{key}}` placeholders in template against the
// record held by state, matching the source's prompt-template-against-state
// rendering (spec §6 "prompt ... placeholders resolved against State").
// Unresolved placeholders are left intact rather than erroring, since a
// node's declared output keys from an earlier step may legitimately be
// optional.
func renderTemplate(template string, state *types.State) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := state.Get(key); ok {
			return fmt.Sprintf("%v", v)
		}
		return match
	})
}

// renderPrompt renders every role-tagged template into a Message.
func renderPrompt(prompts []PromptTemplate, state *types.State) []types.Message {
	out := make([]types.Message, len(prompts))
	for i, p := range prompts {
		out[i] = types.NewMessage(types.Role(p.Role), renderTemplate(p.Template, state))
	}
	return out
}
