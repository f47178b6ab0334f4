// Package accesstest provides an in-memory rule and hierarchy store for tests of packages
// that authorize through access.Resolver.
package accesstest

import (
	"context"
	"sync"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/features/access"

	"github.com/google/uuid"
)

// Store implements access.RuleRepository and access.HierarchyRepository.
type Store struct {
	mu       sync.Mutex
	rules    []access.AccessRule
	modules  map[uuid.UUID]bool
	sections map[uuid.UUID]uuid.UUID
	roles    map[uuid.UUID]access.RoleRef
}

func NewStore() *Store {
	return &Store{
		modules:  map[uuid.UUID]bool{},
		sections: map[uuid.UUID]uuid.UUID{},
		roles:    map[uuid.UUID]access.RoleRef{},
	}
}

// Resolver returns a real resolver backed by the store.
func (s *Store) Resolver() access.Resolver {
	return access.NewResolver(s, s)
}

func (s *Store) AddModule(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modules[id] = true
}

func (s *Store) AddSection(moduleID, sectionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sectionID] = moduleID
}

func (s *Store) AddRole(id uuid.UUID, name string, isAdmin bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roles[id] = access.RoleRef{ID: id, Name: name, IsAdmin: isAdmin}
}

// Grant stores an active rule for the role on the module, or on one section when sectionID is set.
func (s *Store) Grant(roleID, moduleID uuid.UUID, sectionID *uuid.UUID, perms access.Permissions) {
	rule := access.AccessRule{
		RoleID: roleID, ModuleID: moduleID, SectionID: sectionID,
		CanView: perms.CanView, CanEdit: perms.CanEdit, CanDelete: perms.CanDelete,
	}
	_ = s.Upsert(context.Background(), &rule)
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*access.AccessRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rules {
		if r.ID == id {
			rule := r
			return &rule, nil
		}
	}
	return nil, apperrors.NotFound("access rule", id)
}

func (s *Store) FindActiveByRole(ctx context.Context, roleID uuid.UUID) ([]access.AccessRule, error) {
	return s.filter(func(r access.AccessRule) bool { return r.IsActive && r.RoleID == roleID }), nil
}

func (s *Store) FindActiveByRoles(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID) ([]access.AccessRule, error) {
	return s.filter(func(r access.AccessRule) bool {
		return r.IsActive && r.ModuleID == moduleID && contains(roleIDs, r.RoleID)
	}), nil
}

func (s *Store) FindOne(ctx context.Context, roleID, moduleID uuid.UUID, sectionID *uuid.UUID) (*access.AccessRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(roleID, moduleID, sectionID); i >= 0 {
		rule := s.rules[i]
		return &rule, nil
	}
	return nil, nil
}

func (s *Store) ViewableModuleIDs(ctx context.Context, roleIDs []uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for _, r := range s.filter(func(r access.AccessRule) bool { return r.IsActive && r.CanView && contains(roleIDs, r.RoleID) }) {
		if !contains(ids, r.ModuleID) {
			ids = append(ids, r.ModuleID)
		}
	}
	return ids, nil
}

func (s *Store) ListActive(ctx context.Context, filter access.RuleFilter) ([]access.AccessRule, error) {
	return s.filter(func(r access.AccessRule) bool {
		return r.IsActive &&
			(filter.RoleID == nil || r.RoleID == *filter.RoleID) &&
			(filter.ModuleID == nil || r.ModuleID == *filter.ModuleID)
	}), nil
}

func (s *Store) Upsert(ctx context.Context, rule *access.AccessRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if i := s.index(rule.RoleID, rule.ModuleID, rule.SectionID); i >= 0 {
		existing := &s.rules[i]
		existing.CanView, existing.CanEdit, existing.CanDelete = rule.CanView, rule.CanEdit, rule.CanDelete
		existing.IsActive = true
		existing.UpdatedAt = now
		*rule = *existing
		return nil
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	rule.IsActive = true
	rule.CreatedAt, rule.UpdatedAt = now, now
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *Store) BulkUpsert(ctx context.Context, rules []access.AccessRule) (int, error) {
	for i := range rules {
		if err := s.Upsert(ctx, &rules[i]); err != nil {
			return 0, err
		}
	}
	return len(rules), nil
}

func (s *Store) InsertIfAbsent(ctx context.Context, rule *access.AccessRule) (bool, error) {
	if existing, _ := s.FindOne(ctx, rule.RoleID, rule.ModuleID, rule.SectionID); existing != nil {
		return false, nil
	}
	return true, s.Upsert(ctx, rule)
}

func (s *Store) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id && s.rules[i].IsActive {
			s.rules[i].IsActive = false
			return nil
		}
	}
	return apperrors.NotFound("access rule", id)
}

func (s *Store) ModuleExists(ctx context.Context, moduleID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modules[moduleID], nil
}

func (s *Store) SectionModuleID(ctx context.Context, sectionID uuid.UUID) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.sections[sectionID]; ok {
		return m, nil
	}
	return uuid.Nil, apperrors.NotFound("section", sectionID)
}

func (s *Store) RoleExists(ctx context.Context, roleID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.roles[roleID]
	return ok, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]access.RoleRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]access.RoleRef, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) ListModuleIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uuid.UUID, 0, len(s.modules))
	for id := range s.modules {
		out = append(out, id)
	}
	return out, nil
}

func (s *Store) filter(keep func(access.AccessRule) bool) []access.AccessRule {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []access.AccessRule{}
	for _, r := range s.rules {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) index(roleID, moduleID uuid.UUID, sectionID *uuid.UUID) int {
	for i, r := range s.rules {
		if r.RoleID != roleID || r.ModuleID != moduleID || (r.SectionID == nil) != (sectionID == nil) {
			continue
		}
		if sectionID == nil || *r.SectionID == *sectionID {
			return i
		}
	}
	return -1
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
