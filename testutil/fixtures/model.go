// Package fixtures holds ready-made Config/Record values used across the
// model, graph, and batch test suites, so each package's tests don't
// re-derive the same boilerplate configuration.
package fixtures

import (
	"strconv"

	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// SingleURLModel returns a minimal, defaulted single-URL model config named
// name, pointed at url, using the openaicompat adapter.
func SingleURLModel(name, url string) *model.Config {
	cfg := &model.Config{
		Name:      name,
		ModelType: "openaicompat",
		URL:       []string{url},
		AuthToken: []string{"test-token"},
	}
	cfg.ApplyDefaults()
	return cfg
}

// PooledModel returns a defaulted multi-URL model config load-balanced
// across urls.
func PooledModel(name string, urls []string, lb model.LoadBalancing) *model.Config {
	cfg := &model.Config{
		Name:          name,
		ModelType:     "openaicompat",
		URL:           urls,
		AuthToken:     []string{"test-token"},
		LoadBalancing: lb,
	}
	cfg.ApplyDefaults()
	return cfg
}

// SampleRecord returns a record with the given id and extra key/value
// pairs merged in.
func SampleRecord(id string, extra map[string]any) types.Record {
	rec := types.Record{"id": id}
	for k, v := range extra {
		rec[k] = v
	}
	return rec
}

// SampleRecords returns n sequential records "rec-0".."rec-(n-1)".
func SampleRecords(n int) []types.Record {
	out := make([]types.Record, n)
	for i := range out {
		out[i] = types.Record{"id": "rec-" + strconv.Itoa(i)}
	}
	return out
}
