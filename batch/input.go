package batch

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"

	"github.com/sygra-go/sygra/types"
)

// RecordSource yields sequentially indexed input records to the
// orchestrator's worker pool. Next is safe for concurrent use by multiple
// workers (spec §4.5 "Records are assigned a sequential index").
type RecordSource interface {
	// Next returns the next record and its zero-based input index, or
	// ok=false once the stream is exhausted.
	Next() (record types.Record, index int, ok bool, err error)
	// SkipTo advances past every record up to (excluding) index, used on
	// `--resume` and `--start_index` (spec §4.5 "a start_index skips a
	// prefix").
	SkipTo(index int) error
}

// SliceSource serves records already held in memory — the common case for
// tests and small inputs.
type SliceSource struct {
	mu      sync.Mutex
	records []types.Record
	next    int
}

// NewSliceSource wraps records as a RecordSource, indexed by position.
func NewSliceSource(records []types.Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (types.Record, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.records) {
		return nil, 0, false, nil
	}
	idx := s.next
	rec := s.records[idx]
	s.next++
	return rec, idx, true, nil
}

func (s *SliceSource) SkipTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index > s.next {
		s.next = index
	}
	return nil
}

// JSONLSource reads one JSON record per line from r, assigning sequential
// indices as it goes (spec §4.5 "Input: a stream of records (list, file,
// or dataset reader)" — the list/file cases; a pluggable dataset reader
// integration is out of scope per spec §1).
type JSONLSource struct {
	mu      sync.Mutex
	scanner *bufio.Scanner
	next    int
}

// NewJSONLSource builds a JSONLSource reading newline-delimited JSON
// objects from r.
func NewJSONLSource(r io.Reader) *JSONLSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &JSONLSource{scanner: scanner}
}

func (s *JSONLSource) Next() (types.Record, int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, 0, false, err
		}
		idx := s.next
		s.next++
		return rec, idx, true, nil
	}
	if err := s.scanner.Err(); err != nil {
		return nil, 0, false, err
	}
	return nil, 0, false, nil
}

func (s *JSONLSource) SkipTo(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.next < index && s.scanner.Scan() {
		s.next++
	}
	return s.scanner.Err()
}
