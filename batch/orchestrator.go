// Package batch implements the Batch Orchestrator (spec §4.5): a bounded
// worker pool that runs the graph over a stream of records, reorders
// completions back to input order, and checkpoints progress for resume.
package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/sygra-go/sygra/config"
	"github.com/sygra-go/sygra/graph"
	"github.com/sygra-go/sygra/metrics"
	"github.com/sygra-go/sygra/model"
	"github.com/sygra-go/sygra/types"
)

// Sink is the output-file/database abstraction records are flushed to, in
// strict input-index order (spec §6 "Output sink").
type Sink interface {
	WriteRecords(ctx context.Context, records []types.Record) error
}

// RunResult summarizes one batch run for the CLI's exit-code decision.
type RunResult struct {
	RunID     string
	Completed int
	Failed    int
}

// Orchestrator wires a compiled Graph and its Model Registry to a record
// source, a checkpoint store, and an output sink.
type Orchestrator struct {
	graph  *graph.Graph
	models *model.Registry
	cfg    config.BatchConfig
	store  Store
	sink   Sink
	logger *zap.Logger
}

// NewOrchestrator builds an Orchestrator. A nil logger defaults to a no-op
// logger, matching the teacher's nil-guarded logger convention.
func NewOrchestrator(g *graph.Graph, models *model.Registry, cfg config.BatchConfig, store Store, sink Sink, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{graph: g, models: models, cfg: cfg, store: store, sink: sink, logger: logger}
}

// Run pings every model in the registry, then drains source through a
// batch_size-bounded worker pool, flushing and checkpointing every
// checkpoint_interval completed records (spec §4.5).
func (o *Orchestrator) Run(ctx context.Context, source RecordSource) (*RunResult, error) {
	if err := o.models.PingAll(ctx); err != nil {
		return nil, types.NewError(types.ErrConfigInvalid, "startup model ping failed").WithCause(err)
	}

	runID := uuid.NewString()
	startIndex := o.cfg.StartIndex
	if o.cfg.Resume {
		if cp, err := o.store.Load(ctx); err == nil && cp != nil {
			startIndex = cp.LastCompletedIndex + 1
			runID = cp.RunID
			o.logger.Info("resuming from checkpoint",
				zap.Int("start_index", startIndex), zap.String("run_id", runID))
		}
	}
	if err := source.SkipTo(startIndex); err != nil {
		return nil, err
	}

	type outcome struct {
		index  int
		record types.Record
		failed bool
	}

	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}

	results := make(chan outcome, batchSize)
	sem := semaphore.NewWeighted(int64(batchSize))
	group, gctx := errgroup.WithContext(ctx)

	go func() {
		defer close(results)
		dispatched := 0
		for o.cfg.NumRecords <= 0 || dispatched < o.cfg.NumRecords {
			if err := sem.Acquire(gctx, 1); err != nil {
				return
			}
			record, idx, ok, err := source.Next()
			if err != nil || !ok {
				sem.Release(1)
				return
			}
			dispatched++
			group.Go(func() error {
				defer sem.Release(1)
				out, failed := o.runOne(gctx, record)
				select {
				case results <- outcome{index: idx, record: out, failed: failed}:
				case <-gctx.Done():
				}
				return nil
			})
		}
	}()

	pending := make(map[int]types.Record)
	next := startIndex
	var flushBuffer []types.Record
	sinceCheckpoint := 0
	var completed, failed int
	var writeErr error

	checkpointInterval := o.cfg.CheckpointInterval
	if checkpointInterval <= 0 {
		checkpointInterval = config.DefaultCheckpointInterval
	}

	for res := range results {
		pending[res.index] = res.record
		if res.failed {
			failed++
			metrics.BatchRecordsTotal.WithLabelValues("failed").Inc()
		} else {
			completed++
			metrics.BatchRecordsTotal.WithLabelValues("completed").Inc()
		}

		for {
			rec, ok := pending[next]
			if !ok {
				break
			}
			flushBuffer = append(flushBuffer, rec)
			delete(pending, next)
			next++
			sinceCheckpoint++
		}

		if sinceCheckpoint >= checkpointInterval {
			if err := o.flush(ctx, flushBuffer, runID, next-1); err != nil {
				writeErr = err
				break
			}
			flushBuffer = flushBuffer[:0]
			sinceCheckpoint = 0
		}
	}

	if writeErr == nil && len(flushBuffer) > 0 {
		writeErr = o.flush(ctx, flushBuffer, runID, next-1)
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if writeErr != nil {
		return nil, writeErr
	}

	return &RunResult{RunID: runID, Completed: completed, Failed: failed}, nil
}

// runOne executes the graph for one record, converting a record-level
// fatal into the {id, error} output shape instead of aborting the batch
// (spec §7 "Batch Orchestrator catches record-level fatals ... and
// proceeds").
func (o *Orchestrator) runOne(ctx context.Context, record types.Record) (types.Record, bool) {
	out, err := graph.Run(ctx, o.graph, record)
	if err == nil {
		return out, false
	}

	kind := types.ErrRecordFatal
	var sygraErr *types.Error
	if errors.As(err, &sygraErr) {
		kind = sygraErr.Code
	}
	o.logger.Warn("record failed", zap.String("id", record.ID()), zap.String("kind", string(kind)), zap.Error(err))
	return types.WithError(record.ID(), types.RecordError{Kind: kind, Message: err.Error()}), true
}

func (o *Orchestrator) flush(ctx context.Context, records []types.Record, runID string, lastIndex int) error {
	if err := o.sink.WriteRecords(ctx, records); err != nil {
		return err
	}
	metrics.CheckpointLastIndex.WithLabelValues(runID).Set(float64(lastIndex))
	return o.store.Save(ctx, Checkpoint{LastCompletedIndex: lastIndex, RunID: runID, StartedAt: time.Now()})
}
