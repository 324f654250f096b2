package model

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sygra-go/sygra/metrics"
)

// errorCategory buckets a non-200 response's error text by keyword scan,
// ported from custom_models.py's _update_model_stats.
type errorCategory string

const (
	categoryTimeout         errorCategory = "timeout"
	categoryTokensExceeded  errorCategory = "tokens_exceeded"
	categoryConnectionError errorCategory = "connection_error"
	categoryOther           errorCategory = "other"
)

func categorize(errText string) errorCategory {
	lower := strings.ToLower(errText)
	switch {
	case strings.Contains(lower, "timed out") || strings.Contains(lower, "timeout"):
		return categoryTimeout
	case strings.Contains(lower, "maximum context length is"):
		return categoryTokensExceeded
	case strings.Contains(lower, "connection"):
		return categoryConnectionError
	default:
		return categoryOther
	}
}

// stats accumulates per-model call outcomes and periodically logs a
// percentage rollup (spec §4.2 "Stats").
type stats struct {
	mu            sync.Mutex
	logger        *zap.Logger
	name          string
	interval      int
	total         int64
	respCodeDist  map[int]int64
	errorDist     map[errorCategory]int64
}

func newStats(name string, interval int, logger *zap.Logger) *stats {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &stats{
		logger:       logger,
		name:         name,
		interval:     interval,
		respCodeDist: make(map[int]int64),
		errorDist:    make(map[errorCategory]int64),
	}
}

// Record updates the histograms for one call's outcome and, every
// `interval` calls, logs a percentage summary.
func (s *stats) Record(statusCode int, errText string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	s.respCodeDist[statusCode]++
	metrics.ModelCallsTotal.With(prometheus.Labels{"model": s.name, "status_code": statusLabel(statusCode)}).Inc()
	if statusCode != 200 {
		cat := categorize(errText)
		s.errorDist[cat]++
		metrics.ModelCallErrorsTotal.With(prometheus.Labels{"model": s.name, "category": string(cat)}).Inc()
	}

	if s.interval > 0 && s.total%int64(s.interval) == 0 {
		s.logSummaryLocked()
	}
}

func (s *stats) logSummaryLocked() {
	codeFields := make([]zap.Field, 0, len(s.respCodeDist))
	for code, count := range s.respCodeDist {
		pct := float64(count) / float64(s.total) * 100
		codeFields = append(codeFields, zap.Float64(statusLabel(code), pct))
	}
	errFields := make([]zap.Field, 0, len(s.errorDist))
	for cat, count := range s.errorDist {
		pct := float64(count) / float64(s.total) * 100
		errFields = append(errFields, zap.Float64(string(cat), pct))
	}
	fields := append([]zap.Field{zap.String("model", s.name), zap.Int64("total_requests", s.total)}, codeFields...)
	fields = append(fields, errFields...)
	s.logger.Info("model stats summary", fields...)
}

func statusLabel(code int) string {
	return "code_" + strconv.Itoa(code)
}

// Snapshot returns a copy of the total call count and distributions, for
// tests and the metrics package.
func (s *stats) Snapshot() (total int64, codes map[int]int64, errors map[errorCategory]int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	codes = make(map[int]int64, len(s.respCodeDist))
	for k, v := range s.respCodeDist {
		codes[k] = v
	}
	errors = make(map[errorCategory]int64, len(s.errorDist))
	for k, v := range s.errorDist {
		errors[k] = v
	}
	return s.total, codes, errors
}
