// Package audittest provides an in-memory audit.AuditService for tests.
package audittest

import (
	"context"
	"sync"

	common_models "go-lms/internal/common/models"
)

type Entry struct {
	Action   common_models.AuditAction
	Entity   string
	RecordID string
	Changes  map[string]common_models.Change
}

// Recorder keeps every LogChange call.
type Recorder struct {
	mu      sync.Mutex
	Entries []Entry
}

func (r *Recorder) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, Entry{Action: action, Entity: entity, RecordID: recordID, Changes: changes})
	return nil
}

func (r *Recorder) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return []common_models.AuditLog{}, nil
}

// Actions lists the recorded actions for entity in call order.
func (r *Recorder) Actions(entity string) []common_models.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []common_models.AuditAction
	for _, e := range r.Entries {
		if e.Entity == entity {
			out = append(out, e.Action)
		}
	}
	return out
}
