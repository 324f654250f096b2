package batch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sygra-go/sygra/config"
	"github.com/sygra-go/sygra/graph"
	"github.com/sygra-go/sygra/model"
	_ "github.com/sygra-go/sygra/model/providers"
	"github.com/sygra-go/sygra/types"
)

type memorySink struct {
	mu      sync.Mutex
	records []types.Record
}

func (s *memorySink) WriteRecords(ctx context.Context, records []types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	cfg := graph.Config{
		Nodes: map[string]graph.NodeConfig{
			"sample": {
				NodeType:   graph.NodeWeightedSampler,
				Attributes: map[string]graph.WeightedAttribute{"label": {Values: map[string]float64{"x": 1}}},
				OutputKeys: []string{"label"},
			},
		},
		Edges: []graph.EdgeConfig{
			{From: "START", To: "sample"},
			{From: "sample", To: "END"},
		},
	}
	g, err := graph.Build(cfg, graph.NewRegistry(), &emptyModelResolver{})
	require.NoError(t, err)
	return g
}

type emptyModelResolver struct{}

func (emptyModelResolver) Get(name string) (*model.Client, error) {
	return nil, types.NewError(types.ErrConfigInvalid, "unknown model: "+name)
}

func emptyModelRegistry(t *testing.T) *model.Registry {
	t.Helper()
	r, err := model.NewRegistry(map[string]*model.Config{}, nil, 0)
	require.NoError(t, err)
	return r
}

func makeRecords(n int) []types.Record {
	out := make([]types.Record, n)
	for i := range out {
		out[i] = types.Record{"id": fmt.Sprintf("rec-%d", i)}
	}
	return out
}

func TestOrchestratorFlushesInStrictIndexOrder(t *testing.T) {
	g := buildTestGraph(t)
	sink := &memorySink{}
	store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.json"))

	o := NewOrchestrator(g, emptyModelRegistry(t), config.BatchConfig{
		BatchSize: 4, CheckpointInterval: 3, NumRecords: 20,
	}, store, sink, nil)

	result, err := o.Run(context.Background(), NewSliceSource(makeRecords(20)))
	require.NoError(t, err)
	assert.Equal(t, 20, result.Completed)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, sink.records, 20)
	for i, rec := range sink.records {
		assert.Equal(t, fmt.Sprintf("rec-%d", i), rec.ID())
	}
}

func TestOrchestratorAbortsOnModelPingFailure(t *testing.T) {
	g := buildTestGraph(t)
	sink := &memorySink{}
	store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.json"))

	registry, err := model.NewRegistry(map[string]*model.Config{
		"broken": {Name: "broken", ModelType: "openaicompat", URL: []string{"http://127.0.0.1:1"}},
	}, nil, 0)
	require.NoError(t, err)

	o := NewOrchestrator(g, registry, config.BatchConfig{BatchSize: 1, CheckpointInterval: 10, NumRecords: 5}, store, sink, nil)
	_, err = o.Run(context.Background(), NewSliceSource(makeRecords(5)))
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigInvalid, types.GetErrorCode(err))
}

func TestOrchestratorResumeSkipsCompletedRecords(t *testing.T) {
	g := buildTestGraph(t)
	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	store := NewFileStore(checkpointPath)

	firstSink := &memorySink{}
	first := NewOrchestrator(g, emptyModelRegistry(t), config.BatchConfig{
		BatchSize: 1, CheckpointInterval: 10, NumRecords: 48,
	}, store, firstSink, nil)
	_, err := first.Run(context.Background(), NewSliceSource(makeRecords(48)))
	require.NoError(t, err)

	secondSink := &memorySink{}
	second := NewOrchestrator(g, emptyModelRegistry(t), config.BatchConfig{
		BatchSize: 4, CheckpointInterval: 10, NumRecords: 100, Resume: true,
	}, store, secondSink, nil)

	source := NewSliceSource(makeRecords(100))
	result, err := second.Run(context.Background(), source)
	require.NoError(t, err)
	assert.Equal(t, 52, result.Completed)

	all := append(append([]types.Record{}, firstSink.records...), secondSink.records...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	seen := make(map[string]bool)
	for _, rec := range all {
		assert.False(t, seen[rec.ID()], "record %s flushed twice", rec.ID())
		seen[rec.ID()] = true
	}
	assert.Len(t, seen, 100)
}

func TestOrchestratorContinuesPastRecordLevelFatal(t *testing.T) {
	registry := graph.NewRegistry()
	cfg := graph.Config{
		Nodes: map[string]graph.NodeConfig{
			"maybe_fail": {NodeType: graph.NodeLambda, Lambda: "maybe_fail", OutputKeys: []string{"ok"}},
		},
		Edges: []graph.EdgeConfig{
			{From: "START", To: "maybe_fail"},
			{From: "maybe_fail", To: "END"},
		},
	}
	registry.RegisterLambda("maybe_fail", func(ctx context.Context, nodeCfg graph.NodeConfig, state *types.State) (types.Record, error) {
		if state.Record.ID() == "rec-1" {
			return nil, assertErr{}
		}
		return types.Record{"ok": true}, nil
	})
	g, err := graph.Build(cfg, registry, &emptyModelResolver{})
	require.NoError(t, err)

	sink := &memorySink{}
	store := NewFileStore(filepath.Join(t.TempDir(), "checkpoint.json"))
	o := NewOrchestrator(g, emptyModelRegistry(t), config.BatchConfig{
		BatchSize: 2, CheckpointInterval: 5, NumRecords: 3,
	}, store, sink, nil)

	result, err := o.Run(context.Background(), NewSliceSource(makeRecords(3)))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Completed)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, sink.records, 3)
	assert.Contains(t, sink.records[1], "error")
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }
