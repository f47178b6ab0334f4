package access

import (
	"context"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"

	"github.com/google/uuid"
)

// Resolver turns stored access rules into effective permissions. Within one role a
// section-level rule overrides the role's module-level rule; across roles flags are OR-ed.
// No matching rule means no permission.
type Resolver interface {
	Resolve(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error)
	// Authorize returns nil when the principal may perform action on the target, an
	// AuthorizationError when it may not, and a NotFoundError when the target does not exist.
	Authorize(ctx context.Context, principal *models.Principal, action Action, moduleID uuid.UUID, sectionID *uuid.UUID) error
	// Permissions resolves the principal's permissions on an existing target.
	Permissions(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error)
	// SectionPermissions resolves several sections of one module with a single rule lookup.
	SectionPermissions(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionIDs []uuid.UUID) (map[uuid.UUID]Permissions, error)
	ViewableModules(ctx context.Context, principal *models.Principal) (ModuleSet, error)
}

type ResolverImpl struct {
	Rules     RuleRepository
	Hierarchy HierarchyRepository
}

func NewResolver(rules RuleRepository, hierarchy HierarchyRepository) Resolver {
	return &ResolverImpl{Rules: rules, Hierarchy: hierarchy}
}

func (r *ResolverImpl) Resolve(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error) {
	if err := r.checkTarget(ctx, moduleID, sectionID); err != nil {
		return Permissions{}, err
	}
	return r.resolve(ctx, roleIDs, moduleID, sectionID)
}

func (r *ResolverImpl) resolve(ctx context.Context, roleIDs []uuid.UUID, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error) {
	if len(roleIDs) == 0 {
		return Permissions{}, nil
	}
	rules, err := r.Rules.FindActiveByRoles(ctx, roleIDs, moduleID)
	if err != nil {
		return Permissions{}, err
	}
	return Combine(rules, sectionID), nil
}

func (r *ResolverImpl) checkTarget(ctx context.Context, moduleID uuid.UUID, sectionID *uuid.UUID) error {
	ok, err := r.Hierarchy.ModuleExists(ctx, moduleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NotFound("module", moduleID)
	}
	if sectionID == nil {
		return nil
	}
	owner, err := r.Hierarchy.SectionModuleID(ctx, *sectionID)
	if err != nil {
		return err
	}
	if owner != moduleID {
		return apperrors.NotFound("section", *sectionID)
	}
	return nil
}

func (r *ResolverImpl) Permissions(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error) {
	if err := r.checkTarget(ctx, moduleID, sectionID); err != nil {
		return Permissions{}, err
	}
	if principal.IsAdmin {
		return FullPermissions, nil
	}
	return r.resolve(ctx, principal.RoleIDs, moduleID, sectionID)
}

func (r *ResolverImpl) Authorize(ctx context.Context, principal *models.Principal, action Action, moduleID uuid.UUID, sectionID *uuid.UUID) error {
	perms, err := r.Permissions(ctx, principal, moduleID, sectionID)
	if err != nil {
		return err
	}
	if !perms.Allows(action) {
		return apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	return nil
}

func (r *ResolverImpl) SectionPermissions(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionIDs []uuid.UUID) (map[uuid.UUID]Permissions, error) {
	out := make(map[uuid.UUID]Permissions, len(sectionIDs))
	if principal.IsAdmin {
		for _, id := range sectionIDs {
			out[id] = FullPermissions
		}
		return out, nil
	}

	rules, err := r.Rules.FindActiveByRoles(ctx, principal.RoleIDs, moduleID)
	if err != nil {
		return nil, err
	}
	for _, id := range sectionIDs {
		sectionID := id
		out[id] = Combine(rules, &sectionID)
	}
	return out, nil
}

func (r *ResolverImpl) ViewableModules(ctx context.Context, principal *models.Principal) (ModuleSet, error) {
	if principal.IsAdmin {
		return AllModules(), nil
	}
	ids, err := r.Rules.ViewableModuleIDs(ctx, principal.RoleIDs)
	if err != nil {
		return ModuleSet{}, err
	}
	return NewModuleSet(ids...), nil
}

// Combine computes effective permissions for a target from the active rules of one or more
// roles on its module. sectionID nil targets the module itself.
func Combine(rules []AccessRule, sectionID *uuid.UUID) Permissions {
	type rolePair struct {
		module, section *AccessRule
	}
	byRole := make(map[uuid.UUID]*rolePair)
	for i := range rules {
		rule := &rules[i]
		if !rule.IsActive {
			continue
		}
		p, ok := byRole[rule.RoleID]
		if !ok {
			p = &rolePair{}
			byRole[rule.RoleID] = p
		}
		switch {
		case rule.SectionID == nil:
			p.module = rule
		case sectionID != nil && *rule.SectionID == *sectionID:
			p.section = rule
		}
	}

	var result Permissions
	for _, p := range byRole {
		switch {
		case p.section != nil:
			result = result.or(p.section.permissions())
		case p.module != nil:
			result = result.or(p.module.permissions())
		}
	}
	return result
}

// ModuleSet is the set of modules a principal may list.
type ModuleSet struct {
	all bool
	ids map[uuid.UUID]struct{}
}

func AllModules() ModuleSet { return ModuleSet{all: true} }

func NewModuleSet(ids ...uuid.UUID) ModuleSet {
	s := ModuleSet{ids: make(map[uuid.UUID]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

func (s ModuleSet) All() bool { return s.all }

func (s ModuleSet) Contains(id uuid.UUID) bool {
	if s.all {
		return true
	}
	_, ok := s.ids[id]
	return ok
}

// IDs lists the members of a restricted set. It is empty for AllModules.
func (s ModuleSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	return ids
}

// RequireAdmin guards creation operations, which are not tied to an existing target.
func RequireAdmin(principal *models.Principal) error {
	if principal == nil || !principal.IsAdmin {
		return apperrors.Forbidden(apperrors.ReasonAdminRequired)
	}
	return nil
}
