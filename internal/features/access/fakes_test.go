package access

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"

	"github.com/google/uuid"
)

// memoryRules is an in-memory RuleRepository. BulkUpsert works on a copy and swaps it in
// only when every rule applied, like a transaction.
type memoryRules struct {
	rules   []AccessRule
	failOn  *uuid.UUID // BulkUpsert fails when it reaches a rule for this module
	upserts int
}

func (m *memoryRules) FindByID(ctx context.Context, id uuid.UUID) (*AccessRule, error) {
	for i := range m.rules {
		if m.rules[i].ID == id {
			r := m.rules[i]
			return &r, nil
		}
	}
	return nil, apperrors.NotFound("access rule", id)
}

func (m *memoryRules) FindActiveByRole(ctx context.Context, roleID uuid.UUID) ([]AccessRule, error) {
	out := []AccessRule{}
	for _, r := range m.rules {
		if r.RoleID == roleID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRules) FindActiveByRoles(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID) ([]AccessRule, error) {
	out := []AccessRule{}
	for _, r := range m.rules {
		if r.ModuleID == moduleID && r.IsActive && containsID(roleIDs, r.RoleID) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRules) FindOne(ctx context.Context, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) (*AccessRule, error) {
	i := indexOf(m.rules, roleID, moduleID, sectionID)
	if i < 0 {
		return nil, nil
	}
	r := m.rules[i]
	return &r, nil
}

func (m *memoryRules) ViewableModuleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, r := range m.rules {
		if r.IsActive && r.CanView && containsID(roleIDs, r.RoleID) && !containsID(out, r.ModuleID) {
			out = append(out, r.ModuleID)
		}
	}
	return out, nil
}

func (m *memoryRules) ListActive(ctx context.Context, filter RuleFilter) ([]AccessRule, error) {
	out := []AccessRule{}
	for _, r := range m.rules {
		if !r.IsActive {
			continue
		}
		if filter.RoleID != nil && r.RoleID != *filter.RoleID {
			continue
		}
		if filter.ModuleID != nil && r.ModuleID != *filter.ModuleID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memoryRules) Upsert(ctx context.Context, rule *AccessRule) error {
	m.rules = upsertInto(m.rules, rule)
	m.upserts++
	return nil
}

func (m *memoryRules) BulkUpsert(ctx context.Context, rules []AccessRule) (int, error) {
	staged := append([]AccessRule(nil), m.rules...)
	for i := range rules {
		if m.failOn != nil && rules[i].ModuleID == *m.failOn {
			return 0, apperrors.Conflict("simulated write failure")
		}
		staged = upsertInto(staged, &rules[i])
	}
	m.rules = staged
	return len(rules), nil
}

func (m *memoryRules) InsertIfAbsent(ctx context.Context, rule *AccessRule) (bool, error) {
	if indexOf(m.rules, rule.RoleID, rule.ModuleID, rule.SectionID) >= 0 {
		return false, nil
	}
	m.rules = upsertInto(m.rules, rule)
	return true, nil
}

func (m *memoryRules) Deactivate(ctx context.Context, id uuid.UUID) error {
	for i := range m.rules {
		if m.rules[i].ID == id && m.rules[i].IsActive {
			m.rules[i].IsActive = false
			return nil
		}
	}
	return apperrors.NotFound("access rule", id)
}

func upsertInto(rules []AccessRule, rule *AccessRule) []AccessRule {
	now := time.Now().UTC()
	if i := indexOf(rules, rule.RoleID, rule.ModuleID, rule.SectionID); i >= 0 {
		rules[i].CanView, rules[i].CanEdit, rules[i].CanDelete = rule.CanView, rule.CanEdit, rule.CanDelete
		rules[i].IsActive = true
		rules[i].UpdatedAt = now
		*rule = rules[i]
		return rules
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.IsActive = true
	rule.CreatedAt, rule.UpdatedAt = now, now
	return append(rules, *rule)
}

func indexOf(rules []AccessRule, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) int {
	for i, r := range rules {
		if r.RoleID != roleID || r.ModuleID != moduleID {
			continue
		}
		if (r.SectionID == nil) != (sectionID == nil) {
			continue
		}
		if sectionID == nil || *r.SectionID == *sectionID {
			return i
		}
	}
	return -1
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

// memoryHierarchy knows modules, sections (section -> module) and roles.
type memoryHierarchy struct {
	modules  []uuid.UUID
	sections map[uuid.UUID]uuid.UUID
	roles    []RoleRef
}

func newMemoryHierarchy() *memoryHierarchy {
	return &memoryHierarchy{sections: map[uuid.UUID]uuid.UUID{}}
}

func (h *memoryHierarchy) addModule() uuid.UUID {
	id := uuid.New()
	h.modules = append(h.modules, id)
	return id
}

func (h *memoryHierarchy) addSection(moduleID uuid.UUID) uuid.UUID {
	id := uuid.New()
	h.sections[id] = moduleID
	return id
}

func (h *memoryHierarchy) addRole(name string, isAdmin bool) uuid.UUID {
	id := uuid.New()
	h.roles = append(h.roles, RoleRef{ID: id, Name: name, IsAdmin: isAdmin})
	return id
}

func (h *memoryHierarchy) ModuleExists(ctx context.Context, moduleID uuid.UUID) (bool, error) {
	return containsID(h.modules, moduleID), nil
}

func (h *memoryHierarchy) SectionModuleID(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	if m, ok := h.sections[sectionID]; ok {
		return m, nil
	}
	return uuid.Nil, apperrors.NotFound("section", sectionID)
}

func (h *memoryHierarchy) RoleExists(ctx context.Context, roleID uuid.UUID) (bool, error) {
	for _, r := range h.roles {
		if r.ID == roleID {
			return true, nil
		}
	}
	return false, nil
}

func (h *memoryHierarchy) ListRoles(ctx context.Context) ([]RoleRef, error) {
	return h.roles, nil
}

func (h *memoryHierarchy) ListModuleIDs(ctx context.Context) ([]uuid.UUID, error) {
	return h.modules, nil
}

type recordingAudit struct {
	actions []common_models.AuditAction
}

func (a *recordingAudit) LogChange(ctx context.Context, action common_models.AuditAction, entity string, recordID string, changes map[string]common_models.Change) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *recordingAudit) ListLogs(ctx context.Context, filters map[string]interface{}, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}
