package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"os"

	"github.com/sygra-go/sygra/types"
)

// JSONLSink appends one JSON-encoded record per line to a file, opened
// once and kept open for the orchestrator's lifetime (spec §6 "Output
// sink: one JSON-serialisable record per input").
type JSONLSink struct {
	f *os.File
	w *bufio.Writer
}

// NewJSONLSink opens (creating/truncating) path for append-only writes.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLSink{f: f, w: bufio.NewWriter(f)}, nil
}

// WriteRecords appends records in the order given, then flushes. The
// orchestrator calls this only from its single writer goroutine (spec §5
// "Checkpoint writes and output flushes are serialized through a single
// writer goroutine/task"), so no internal locking is needed here.
func (s *JSONLSink) WriteRecords(ctx context.Context, records []types.Record) error {
	enc := json.NewEncoder(s.w)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return s.w.Flush()
}

// Close flushes and closes the underlying file.
func (s *JSONLSink) Close() error {
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
