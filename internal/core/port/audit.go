package port

import "context"

// AuditEntry represents a single auditable lookup.
type AuditEntry struct {
	Lookup       string
	Params       map[string]any
	RowsReturned int
	DurationMS   int64
	Err          error
}

// QueryAuditor records lookup audit events.
type QueryAuditor interface {
	Record(ctx context.Context, entry AuditEntry)
	Close() error
}

// NoopAuditor discards all audit entries.
type NoopAuditor struct{}

func (NoopAuditor) Record(context.Context, AuditEntry) {}
func (NoopAuditor) Close() error                       { return nil }
