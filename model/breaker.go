package model

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sygra-go/sygra/types"
)

// MaxFailedError is the sliding-window length, and
// ModelFailureWindowSeconds is the span the window must stay within to trip the
// breaker (spec §4.2 "Server-down circuit breaker").
const (
	MaxFailedError           = 10
	ModelFailureWindowSeconds = 30
)

// ProcessExiter lets the breaker's trip action be swapped out in tests;
// production wiring uses os.Exit.
type ProcessExiter func(code int)

// serverDownBreaker maintains the sliding window of server-down response
// timestamps for one model and trips the process when the window fills
// within the failure window (ported from custom_models.py's
// _handle_server_down).
type serverDownBreaker struct {
	mu        sync.Mutex
	enabled   bool
	name      string
	logger    *zap.Logger
	timestamps []time.Time
	exit      ProcessExiter
	now       func() time.Time
}

func newServerDownBreaker(name string, enabled bool, logger *zap.Logger, exit ProcessExiter) *serverDownBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if exit == nil {
		exit = func(int) {}
	}
	return &serverDownBreaker{
		enabled: enabled,
		name:    name,
		logger:  logger,
		exit:    exit,
		now:     time.Now,
	}
}

// Observe records one response's status code. If the code is in
// types.ServerDownStatusSet it appends a timestamp, trims the window to
// MaxFailedError entries, and trips the process if the window is full and
// spans less than ModelFailureWindowSeconds.
func (b *serverDownBreaker) Observe(statusCode int) {
	if !b.enabled || !types.ServerDownStatusSet[statusCode] {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.timestamps = append(b.timestamps, b.now())
	if len(b.timestamps) > MaxFailedError {
		b.timestamps = b.timestamps[len(b.timestamps)-MaxFailedError:]
	}

	if len(b.timestamps) >= MaxFailedError {
		span := b.timestamps[len(b.timestamps)-1].Sub(b.timestamps[0])
		if span < ModelFailureWindowSeconds*time.Second {
			b.logger.Error("server-down threshold crossed, terminating process",
				zap.String("model", b.name),
				zap.Int("window", len(b.timestamps)),
				zap.Duration("span", span),
			)
			b.exit(1)
		}
	}
}
