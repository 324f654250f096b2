package model

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sygra-go/sygra/types"
)

// tokenEncoding is cl100k_base, the encoding shared by the GPT-3.5/GPT-4
// family. Every vendor's prompt gets the same estimator: exact per-vendor
// tokenization isn't worth the dependency weight for a pre-flight budget
// estimate, only an approximate one (spec's "approximate prompt/response
// token accounting surfaced in node metadata and model stats").
const tokenEncoding = "cl100k_base"

var (
	tokenizerOnce sync.Once
	tokenizer     *tiktoken.Tiktoken
	tokenizerErr  error
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tokenizerOnce.Do(func() {
		tokenizer, tokenizerErr = tiktoken.GetEncoding(tokenEncoding)
	})
	return tokenizer, tokenizerErr
}

// EstimateTokens sums the BPE token count across every message's text. A
// tokenizer load failure degrades to 0 rather than failing the call: token
// accounting is an observability aid, never a hard budget gate.
func EstimateTokens(messages []types.Message) int {
	enc, err := getTokenizer()
	if err != nil {
		return 0
	}
	total := 0
	for _, m := range messages {
		total += len(enc.Encode(m.Text(), nil, nil))
	}
	return total
}
