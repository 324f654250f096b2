package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripSpecialTokens(t *testing.T) {
	got := stripSpecialTokens("<|im_end|>hello<|im_end|>", []string{"<|im_end|>"})
	assert.Equal(t, "hello", got)
}

func TestPostProcessMixtral8x7b(t *testing.T) {
	fn, ok := lookupPostProcess("mixtral8x7b")
	assert.True(t, ok)
	assert.Equal(t, "foo_bar", fn(`foo\_bar`))
}

func TestPostProcessMixtralInstruct8x22b(t *testing.T) {
	fn, ok := lookupPostProcess("mixtral_instruct_8x22b")
	assert.True(t, ok)
	got := fn("<details><summary>thinking</summary>the real answer</details>")
	assert.Equal(t, "the real answer", got)
}

func TestStatusFromBody(t *testing.T) {
	status, ok := statusFromBody([]byte(`{"statusCode": 503, "message": "down"}`))
	assert.True(t, ok)
	assert.Equal(t, 503, status)

	_, ok = statusFromBody([]byte(`not json`))
	assert.False(t, ok)
}
