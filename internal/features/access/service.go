package access

import (
	"context"
	"fmt"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoleAccessService manages access rules. Every method except Effective is reserved to
// administrators by the API layer.
type RoleAccessService interface {
	GetRulesForRole(ctx context.Context, roleID uuid.UUID) ([]AccessRule, error)
	ListRules(ctx context.Context, filter RuleFilter) ([]AccessRule, error)
	UpsertRule(ctx context.Context, input RuleInput) (*AccessRule, error)
	BulkUpdateRoleAccess(ctx context.Context, roleID uuid.UUID, req BulkUpdateRequest) (*BulkUpdateResult, error)
	DeactivateRule(ctx context.Context, ruleID uuid.UUID) error
	SeedDefaults(ctx context.Context) (*SeedResult, error)
	Effective(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error)
}

type RoleAccessServiceImpl struct {
	Rules        RuleRepository
	Hierarchy    HierarchyRepository
	Resolver     Resolver
	AuditService audit.AuditService
	Validator    *validation.Validator
	Logger       *zap.Logger
}

func NewRoleAccessService(
	rules RuleRepository,
	hierarchy HierarchyRepository,
	resolver Resolver,
	auditService audit.AuditService,
	validator *validation.Validator,
	logger *zap.Logger,
) RoleAccessService {
	return &RoleAccessServiceImpl{
		Rules:        rules,
		Hierarchy:    hierarchy,
		Resolver:     resolver,
		AuditService: auditService,
		Validator:    validator,
		Logger:       logger,
	}
}

func (s *RoleAccessServiceImpl) GetRulesForRole(ctx context.Context, roleID uuid.UUID) ([]AccessRule, error) {
	ok, err := s.Hierarchy.RoleExists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("role", roleID)
	}
	return s.Rules.FindActiveByRole(ctx, roleID)
}

func (s *RoleAccessServiceImpl) ListRules(ctx context.Context, filter RuleFilter) ([]AccessRule, error) {
	return s.Rules.ListActive(ctx, filter)
}

func (s *RoleAccessServiceImpl) UpsertRule(ctx context.Context, input RuleInput) (*AccessRule, error) {
	if err := s.Validator.Struct(input); err != nil {
		return nil, err
	}
	if err := s.validateRule(ctx, input, ""); err != nil {
		return nil, err
	}

	previous, err := s.Rules.FindOne(ctx, input.RoleID, input.ModuleID, input.SectionID)
	if err != nil {
		return nil, err
	}

	rule := toRule(input)
	if err := s.Rules.Upsert(ctx, &rule); err != nil {
		return nil, err
	}

	action := models.AuditActionCreate
	if previous != nil {
		action = models.AuditActionUpdate
	}
	_ = s.AuditService.LogChange(ctx, action, "access_rule", rule.ID.String(), ruleChanges(previous, &rule))

	return &rule, nil
}

// BulkUpdateRoleAccess validates every rule before writing any of them, then applies the
// batch in one transaction.
func (s *RoleAccessServiceImpl) BulkUpdateRoleAccess(ctx context.Context, roleID uuid.UUID, req BulkUpdateRequest) (*BulkUpdateResult, error) {
	for i := range req.Rules {
		if req.Rules[i].RoleID == uuid.Nil {
			req.Rules[i].RoleID = roleID
		}
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	ok, err := s.Hierarchy.RoleExists(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.NotFound("role", roleID)
	}

	seen := make(map[string]int, len(req.Rules))
	rules := make([]AccessRule, 0, len(req.Rules))
	for i, in := range req.Rules {
		field := fmt.Sprintf("rules[%d]", i)
		if in.RoleID != roleID {
			return nil, apperrors.Validation("rule belongs to another role",
				apperrors.FieldError{Field: field + ".role_id", Message: "must match the role being updated"})
		}
		key := targetKey(in.ModuleID, in.SectionID)
		if j, dup := seen[key]; dup {
			return nil, apperrors.Validation("duplicate rule target",
				apperrors.FieldError{Field: field, Message: fmt.Sprintf("targets the same module and section as rules[%d]", j)})
		}
		seen[key] = i
		if err := s.validateRule(ctx, in, field+"."); err != nil {
			return nil, err
		}
		rules = append(rules, toRule(in))
	}

	applied, err := s.Rules.BulkUpsert(ctx, rules)
	if err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, models.AuditActionUpdate, "role_access", roleID.String(), map[string]models.Change{
		"rules": {New: rules},
	})

	return &BulkUpdateResult{RoleID: roleID, Applied: applied}, nil
}

func (s *RoleAccessServiceImpl) DeactivateRule(ctx context.Context, ruleID uuid.UUID) error {
	if err := s.Rules.Deactivate(ctx, ruleID); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, models.AuditActionDelete, "access_rule", ruleID.String(), map[string]models.Change{
		"is_active": {Old: true, New: false},
	})
	return nil
}

// SeedDefaults gives every role a module-wide rule on every module that has none yet:
// full access for administrative roles, view-only for the rest. Existing rules are left
// untouched and individual failures are logged and skipped.
func (s *RoleAccessServiceImpl) SeedDefaults(ctx context.Context) (*SeedResult, error) {
	roles, err := s.Hierarchy.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	moduleIDs, err := s.Hierarchy.ListModuleIDs(ctx)
	if err != nil {
		return nil, err
	}

	result := &SeedResult{}
	for _, role := range roles {
		for _, moduleID := range moduleIDs {
			rule := AccessRule{
				RoleID:    role.ID,
				ModuleID:  moduleID,
				CanView:   true,
				CanEdit:   role.IsAdmin,
				CanDelete: role.IsAdmin,
			}
			created, err := s.Rules.InsertIfAbsent(ctx, &rule)
			switch {
			case err != nil:
				result.Failed++
				s.Logger.Warn("Failed to seed access rule",
					zap.String("role", role.Name),
					zap.String("module_id", moduleID.String()),
					zap.Error(err),
				)
			case created:
				result.Created++
			default:
				result.Skipped++
			}
		}
	}

	s.Logger.Info("Seeded default access rules",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	_ = s.AuditService.LogChange(ctx, models.AuditActionSeed, "access_rule", "", map[string]models.Change{
		"created": {New: result.Created},
	})

	return result, nil
}

func (s *RoleAccessServiceImpl) Effective(ctx context.Context, principal *models.Principal, moduleID uuid.UUID, sectionID *uuid.UUID) (Permissions, error) {
	return s.Resolver.Permissions(ctx, principal, moduleID, sectionID)
}

// validateRule checks that the module exists and that the section, when given, belongs to it.
func (s *RoleAccessServiceImpl) validateRule(ctx context.Context, in RuleInput, fieldPrefix string) error {
	ok, err := s.Hierarchy.ModuleExists(ctx, in.ModuleID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.Validation("unknown module",
			apperrors.FieldError{Field: fieldPrefix + "module_id", Message: "module does not exist"})
	}
	if in.SectionID == nil {
		return nil
	}

	owner, err := s.Hierarchy.SectionModuleID(ctx, *in.SectionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.Validation("unknown section",
				apperrors.FieldError{Field: fieldPrefix + "section_id", Message: "section does not exist"})
		}
		return err
	}
	if owner != in.ModuleID {
		return apperrors.Validation("section does not belong to module",
			apperrors.FieldError{Field: fieldPrefix + "section_id", Message: "section belongs to a different module"})
	}
	return nil
}

func toRule(in RuleInput) AccessRule {
	return AccessRule{
		RoleID:    in.RoleID,
		ModuleID:  in.ModuleID,
		SectionID: in.SectionID,
		CanView:   in.CanView,
		CanEdit:   in.CanEdit,
		CanDelete: in.CanDelete,
		IsActive:  true,
	}
}

func targetKey(moduleID uuid.UUID, sectionID *uuid.UUID) string {
	if sectionID == nil {
		return moduleID.String()
	}
	return moduleID.String() + "/" + sectionID.String()
}

func ruleChanges(prev, next *AccessRule) map[string]models.Change {
	if prev == nil {
		return map[string]models.Change{
			"can_view":   {New: next.CanView},
			"can_edit":   {New: next.CanEdit},
			"can_delete": {New: next.CanDelete},
		}
	}
	changes := map[string]models.Change{}
	if prev.CanView != next.CanView {
		changes["can_view"] = models.Change{Old: prev.CanView, New: next.CanView}
	}
	if prev.CanEdit != next.CanEdit {
		changes["can_edit"] = models.Change{Old: prev.CanEdit, New: next.CanEdit}
	}
	if prev.CanDelete != next.CanDelete {
		changes["can_delete"] = models.Change{Old: prev.CanDelete, New: next.CanDelete}
	}
	if !prev.IsActive {
		changes["is_active"] = models.Change{Old: false, New: true}
	}
	return changes
}
