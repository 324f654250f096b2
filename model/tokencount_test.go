package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sygra-go/sygra/types"
)

func TestEstimateTokensGrowsWithLongerMessages(t *testing.T) {
	short := []types.Message{types.NewUserMessage("hi")}
	long := []types.Message{types.NewUserMessage("hi, this is a considerably longer message with more words in it")}

	shortCount := EstimateTokens(short)
	longCount := EstimateTokens(long)

	assert.Greater(t, shortCount, 0)
	assert.Greater(t, longCount, shortCount)
}

func TestEstimateTokensEmptyMessagesIsZero(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(nil))
}
