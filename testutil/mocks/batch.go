package mocks

import (
	"context"
	"sync"

	"github.com/sygra-go/sygra/types"
)

// Sink is an in-memory batch.Sink double recording every flush in order.
type Sink struct {
	mu      sync.Mutex
	Flushes [][]types.Record
}

// NewSink returns an empty Sink.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) WriteRecords(ctx context.Context, records []types.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := append([]types.Record{}, records...)
	s.Flushes = append(s.Flushes, cp)
	return nil
}

// All flattens every flush into one slice, in flush order.
func (s *Sink) All() []types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Record
	for _, f := range s.Flushes {
		out = append(out, f...)
	}
	return out
}
