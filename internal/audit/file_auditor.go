// Package audit persists one line per flight lookup.
package audit

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/guillermoBallester/flightdata/internal/core/port"
)

// StderrPath selects standard error instead of a file.
const StderrPath = "-"

// lookupEntry is the NDJSON form of a port.AuditEntry.
type lookupEntry struct {
	Timestamp    string         `json:"ts"`
	Lookup       string         `json:"lookup"`
	Params       map[string]any `json:"params"`
	RowsReturned int            `json:"rows_returned"`
	DurationMS   int64          `json:"duration_ms"`
	Error        *string        `json:"error"`
}

// FileAuditor writes audit entries as NDJSON to a file or stream.
type FileAuditor struct {
	mu     sync.Mutex
	out    io.Writer
	closer io.Closer
	enc    *json.Encoder
	now    func() time.Time
}

// NewFileAuditor opens path for appending, creating it if needed. StderrPath
// writes to standard error, which Close leaves open.
func NewFileAuditor(path string) (*FileAuditor, error) {
	if path == StderrPath {
		return newAuditor(os.Stderr, nil), nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return newAuditor(f, f), nil
}

func newAuditor(w io.Writer, c io.Closer) *FileAuditor {
	return &FileAuditor{
		out:    w,
		closer: c,
		enc:    json.NewEncoder(w),
		now:    time.Now,
	}
}

func (a *FileAuditor) Record(_ context.Context, entry port.AuditEntry) {
	le := lookupEntry{
		Timestamp:    a.now().UTC().Format(time.RFC3339Nano),
		Lookup:       entry.Lookup,
		Params:       entry.Params,
		RowsReturned: entry.RowsReturned,
		DurationMS:   entry.DurationMS,
	}
	if le.Params == nil {
		le.Params = map[string]any{}
	}
	if entry.Err != nil {
		msg := entry.Err.Error()
		le.Error = &msg
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_ = a.enc.Encode(le) // audit I/O never fails a lookup
}

func (a *FileAuditor) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
