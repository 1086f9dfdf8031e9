// api/audit/memory.go
package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/dev-mohitbeniwal/arbiter/api/model"
)

// MemoryRepository keeps the audit trail as an ordered in-process slice. It is
// the fallback when no Elasticsearch URL is configured, and the repository
// used in tests.
type MemoryRepository struct {
	mu      sync.Mutex
	entries []Entry
	byID    map[string]int
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]int)}
}

func (r *MemoryRepository) Append(ctx context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Copy the parameter map so a later mutation through the caller's
	// reference cannot rewrite history.
	if entry.Context.Parameters != nil {
		params := make(map[string]interface{}, len(entry.Context.Parameters))
		for k, v := range entry.Context.Parameters {
			params[k] = v
		}
		entry.Context.Parameters = params
	}
	r.byID[entry.CorrelationID] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryRepository) AttachFlag(ctx context.Context, correlationID string, flag *model.Flag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[correlationID]
	if !ok {
		return fmt.Errorf("no audit entry for correlation id %s", correlationID)
	}
	f := *flag
	r.entries[idx].Flag = &f
	return nil
}

func (r *MemoryRepository) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	var out []Entry
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		if filter.User != "" && e.Context.CallerID != filter.User {
			continue
		}
		if filter.Feature != "" && e.Context.Feature != filter.Feature {
			continue
		}
		if !filter.From.IsZero() && e.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Entries returns the trail in append order.
func (r *MemoryRepository) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
