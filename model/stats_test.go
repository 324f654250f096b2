package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsRecordAndSnapshot(t *testing.T) {
	s := newStats("m1", 0, nil)
	s.Record(200, "")
	s.Record(429, "rate limited")
	s.Record(500, "connection refused")
	s.Record(500, "request timed out")

	total, codes, errs := s.Snapshot()
	assert.Equal(t, int64(4), total)
	assert.Equal(t, int64(1), codes[200])
	assert.Equal(t, int64(1), codes[429])
	assert.Equal(t, int64(2), codes[500])
	assert.Equal(t, int64(1), errs[categoryConnectionError])
	assert.Equal(t, int64(1), errs[categoryTimeout])
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, categoryTimeout, categorize("Read timed out after 60s"))
	assert.Equal(t, categoryTokensExceeded, categorize("This model's maximum context length is 4096 tokens"))
	assert.Equal(t, categoryConnectionError, categorize("Connection refused"))
	assert.Equal(t, categoryOther, categorize("something unexpected"))
}
