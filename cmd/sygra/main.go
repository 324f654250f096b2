// Command sygra runs one graph over a batch of input records (spec §6
// "CLI surface").
//
// Usage:
//
//	sygra --task <name> --config <path> [options]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sygra-go/sygra/batch"
	"github.com/sygra-go/sygra/config"
	"github.com/sygra-go/sygra/graph"
	"github.com/sygra-go/sygra/internal/telemetry"
	"github.com/sygra-go/sygra/model"
	_ "github.com/sygra-go/sygra/model/providers"
	"github.com/sygra-go/sygra/types"
)

// Exit codes (spec §6 "CLI surface").
const (
	exitSuccess       = 0
	exitAbort         = 1
	exitPartialFailed = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sygra", flag.ContinueOnError)
	task := fs.String("task", "", "graph to run (required)")
	configPath := fs.String("config", "config.yaml", "path to the model/graph/batch config file")
	inputPath := fs.String("input", "", "path to a JSONL input file (defaults to stdin)")
	numRecords := fs.Int("num_records", 5, "number of records to process")
	startIndex := fs.Int("start_index", 0, "input index to start from")
	batchSize := fs.Int("batch_size", config.DefaultBatchSize, "concurrent worker count")
	checkpointInterval := fs.Int("checkpoint_interval", config.DefaultCheckpointInterval, "records per checkpoint flush")
	resume := fs.Bool("resume", false, "continue from the last checkpoint")
	outputDir := fs.String("output_dir", "output", "directory for output and checkpoint files")
	runName := fs.String("run_name", "", "name for this run's output/checkpoint files (defaults to --task)")
	debug := fs.Bool("debug", false, "enable debug logging")
	clearLogs := fs.Bool("clear_logs", false, "truncate any existing log file for this run_name before starting")

	if err := fs.Parse(args); err != nil {
		return exitAbort
	}
	if *task == "" {
		fmt.Fprintln(os.Stderr, "sygra: --task is required")
		fs.Usage()
		return exitAbort
	}
	if *runName == "" {
		*runName = *task
	}

	logger := newLogger(*debug)
	defer logger.Sync()

	providers, err := telemetry.Init("sygra-"+*task, logger)
	if err != nil {
		logger.Warn("telemetry init failed, continuing without tracing", zap.Error(err))
	}
	defer providers.Shutdown(context.Background())

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		logger.Error("failed to create output_dir", zap.Error(err))
		return exitAbort
	}

	logPath := filepath.Join(*outputDir, *runName+".log")
	if *clearLogs {
		os.Remove(logPath)
	}

	cfg, err := config.NewLoader().WithConfigPath(*configPath).Load()
	if err != nil {
		logger.Error("failed to load config", zap.Error(err))
		return exitAbort
	}
	cfg.Batch.BatchSize = *batchSize
	cfg.Batch.CheckpointInterval = *checkpointInterval
	cfg.Batch.StartIndex = *startIndex
	cfg.Batch.NumRecords = *numRecords
	cfg.Batch.Resume = *resume
	cfg.Batch.OutputDir = *outputDir
	cfg.Batch.RunName = *runName

	if len(cfg.Graph.Nodes) == 0 {
		logger.Error("config declares no graph nodes", zap.String("task", *task))
		return exitAbort
	}

	models, err := cfg.ResolvedModels()
	if err != nil {
		logger.Error("failed to resolve model configs", zap.Error(err))
		return exitAbort
	}
	modelRegistry, err := model.NewRegistry(models, logger, 0)
	if err != nil {
		logger.Error("failed to build model registry", zap.Error(err))
		return exitAbort
	}

	g, err := graph.Build(cfg.Graph, graph.NewRegistry(), modelRegistry)
	if err != nil {
		logger.Error("failed to build graph", zap.Error(err))
		return exitAbort
	}

	source, closeSource, err := openInputSource(*inputPath)
	if err != nil {
		logger.Error("failed to open input", zap.Error(err))
		return exitAbort
	}
	defer closeSource()

	outputPath := filepath.Join(*outputDir, *runName+".jsonl")
	sink, err := batch.NewJSONLSink(outputPath)
	if err != nil {
		logger.Error("failed to open output sink", zap.Error(err))
		return exitAbort
	}
	defer sink.Close()

	checkpointPath := filepath.Join(*outputDir, *runName+".checkpoint.json")
	store := batch.NewFileStore(checkpointPath)

	orchestrator := batch.NewOrchestrator(g, modelRegistry, cfg.Batch, store, sink, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := orchestrator.Run(ctx, source)
	if err != nil {
		var sygraErr *types.Error
		if errors.As(err, &sygraErr) && sygraErr.Code == types.ErrConfigInvalid {
			logger.Error("batch aborted", zap.Error(err))
			return exitAbort
		}
		logger.Error("batch run failed", zap.Error(err))
		return exitAbort
	}

	logger.Info("batch complete",
		zap.String("run_id", result.RunID),
		zap.Int("completed", result.Completed),
		zap.Int("failed", result.Failed))

	if result.Failed > 0 && result.Failed >= result.Completed {
		return exitPartialFailed
	}
	return exitSuccess
}

func openInputSource(path string) (batch.RecordSource, func() error, error) {
	if path == "" {
		return batch.NewJSONLSource(os.Stdin), func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return batch.NewJSONLSource(f), f.Close, nil
}

func newLogger(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapConfig := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := zapConfig.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return logger
}
