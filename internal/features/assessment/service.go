package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"
	"go-lms/internal/features/section"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultPassingScore = 70

// SectionLookup resolves the section an assessment is attached to.
type SectionLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*section.Section, error)
}

type AssessmentService interface {
	ListAssessments(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) ([]Assessment, error)
	GetAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*AssessmentDetail, error)
	CreateAssessment(ctx context.Context, principal *common_models.Principal, req CreateAssessmentRequest) (*Assessment, error)
	UpdateAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateAssessmentRequest) (*Assessment, error)
	DeleteAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error

	ListQuestions(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) ([]Question, error)
	GetQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*Question, error)
	CreateQuestion(ctx context.Context, principal *common_models.Principal, req CreateQuestionRequest) (*Question, error)
	UpdateQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateQuestionRequest) (*Question, error)
	DeleteQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error
}

type AssessmentServiceImpl struct {
	Repo         AssessmentRepository
	Sections     SectionLookup
	Resolver     access.Resolver
	AuditService audit.AuditService
	Validator    *validation.Validator
}

func NewAssessmentService(
	repo AssessmentRepository,
	sections SectionLookup,
	resolver access.Resolver,
	auditService audit.AuditService,
	validator *validation.Validator,
) AssessmentService {
	return &AssessmentServiceImpl{
		Repo:         repo,
		Sections:     sections,
		Resolver:     resolver,
		AuditService: auditService,
		Validator:    validator,
	}
}

func (s *AssessmentServiceImpl) ListAssessments(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) ([]Assessment, error) {
	modulePerms, err := s.Resolver.Permissions(ctx, principal, moduleID, nil)
	if err != nil {
		return nil, err
	}
	all, err := s.Repo.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	var sectionIDs []uuid.UUID
	for _, a := range all {
		if a.SectionID != nil {
			sectionIDs = append(sectionIDs, *a.SectionID)
		}
	}
	sectionPerms, err := s.Resolver.SectionPermissions(ctx, principal, moduleID, sectionIDs)
	if err != nil {
		return nil, err
	}

	visible := make([]Assessment, 0, len(all))
	for _, a := range all {
		perms := modulePerms
		if a.SectionID != nil {
			perms = sectionPerms[*a.SectionID]
		}
		if perms.CanView && (a.IsActive || perms.CanEdit) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

func (s *AssessmentServiceImpl) viewable(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*Assessment, access.Permissions, error) {
	return loadViewable(ctx, s.Repo, s.Resolver, principal, id)
}

// loadViewable loads the assessment and the principal's permissions on it. Inactive
// assessments are hidden from principals who cannot edit them.
func loadViewable(ctx context.Context, repo AssessmentRepository, resolver access.Resolver, principal *common_models.Principal, id uuid.UUID) (*Assessment, access.Permissions, error) {
	a, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, access.Permissions{}, err
	}
	perms, err := resolver.Permissions(ctx, principal, a.ModuleID, a.SectionID)
	if err != nil {
		return nil, access.Permissions{}, err
	}
	if !perms.CanView {
		return nil, access.Permissions{}, apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	if !a.IsActive && !perms.CanEdit {
		return nil, access.Permissions{}, apperrors.NotFound("assessment", id)
	}
	return a, perms, nil
}

func (s *AssessmentServiceImpl) GetAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*AssessmentDetail, error) {
	a, perms, err := s.viewable(ctx, principal, id)
	if err != nil {
		return nil, err
	}
	return &AssessmentDetail{Assessment: *a, Permissions: perms}, nil
}

func (s *AssessmentServiceImpl) CreateAssessment(ctx context.Context, principal *common_models.Principal, req CreateAssessmentRequest) (*Assessment, error) {
	if err := access.RequireAdmin(principal); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Resolver.Permissions(ctx, principal, req.ModuleID, nil); err != nil {
		return nil, err
	}
	if req.SectionID != nil {
		sec, err := s.Sections.FindByID(ctx, *req.SectionID)
		if err != nil {
			return nil, err
		}
		if sec.ModuleID != req.ModuleID {
			return nil, apperrors.Validation("invalid request", apperrors.FieldError{
				Field:   "section_id",
				Message: "section does not belong to the given module",
			})
		}
	}

	passing := defaultPassingScore
	if req.PassingScore != nil {
		passing = *req.PassingScore
	}
	now := time.Now().UTC()
	a := &Assessment{
		ID:               uuid.New(),
		ModuleID:         req.ModuleID,
		SectionID:        req.SectionID,
		Title:            req.Title,
		Description:      req.Description,
		PassingScore:     passing,
		TimeLimitMinutes: req.TimeLimitMinutes,
		MaxAttempts:      req.MaxAttempts,
		IsRequired:       req.IsRequired,
		IsActive:         req.IsActive == nil || *req.IsActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "assessment", a.ID.String(), map[string]common_models.Change{
		"title":     {New: a.Title},
		"module_id": {New: a.ModuleID.String()},
	})
	return a, nil
}

func (s *AssessmentServiceImpl) UpdateAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateAssessmentRequest) (*Assessment, error) {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, a.ModuleID, a.SectionID); err != nil {
		return nil, err
	}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if req.Title != nil {
		if t := *req.Title; t != a.Title {
			changes["title"] = common_models.Change{Old: a.Title, New: t}
			a.Title = t
		}
	}
	if req.Description != nil && *req.Description != a.Description {
		changes["description"] = common_models.Change{Old: a.Description, New: *req.Description}
		a.Description = *req.Description
	}
	if req.PassingScore != nil && *req.PassingScore != a.PassingScore {
		changes["passing_score"] = common_models.Change{Old: a.PassingScore, New: *req.PassingScore}
		a.PassingScore = *req.PassingScore
	}
	if req.TimeLimitMinutes != nil && *req.TimeLimitMinutes != a.TimeLimitMinutes {
		changes["time_limit_minutes"] = common_models.Change{Old: a.TimeLimitMinutes, New: *req.TimeLimitMinutes}
		a.TimeLimitMinutes = *req.TimeLimitMinutes
	}
	if req.MaxAttempts != nil && *req.MaxAttempts != a.MaxAttempts {
		changes["max_attempts"] = common_models.Change{Old: a.MaxAttempts, New: *req.MaxAttempts}
		a.MaxAttempts = *req.MaxAttempts
	}
	if req.IsRequired != nil && *req.IsRequired != a.IsRequired {
		changes["is_required"] = common_models.Change{Old: a.IsRequired, New: *req.IsRequired}
		a.IsRequired = *req.IsRequired
	}
	if req.IsActive != nil && *req.IsActive != a.IsActive {
		changes["is_active"] = common_models.Change{Old: a.IsActive, New: *req.IsActive}
		a.IsActive = *req.IsActive
	}
	a.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, a); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "assessment", id.String(), changes)
	return a, nil
}

func (s *AssessmentServiceImpl) DeleteAssessment(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error {
	a, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionDelete, a.ModuleID, a.SectionID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "assessment", id.String(), map[string]common_models.Change{
		"title": {Old: a.Title},
	})
	return nil
}

// ListQuestions returns the questions in order. The answer key is included only for
// principals who may edit the assessment.
func (s *AssessmentServiceImpl) ListQuestions(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) ([]Question, error) {
	_, perms, err := s.viewable(ctx, principal, assessmentID)
	if err != nil {
		return nil, err
	}
	questions, err := s.Repo.ListQuestions(ctx, assessmentID)
	if err != nil {
		return nil, err
	}
	if !perms.CanEdit {
		for i := range questions {
			questions[i] = questions[i].withoutAnswerKey()
		}
	}
	return questions, nil
}

func (s *AssessmentServiceImpl) GetQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*Question, error) {
	q, err := s.Repo.FindQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	_, perms, err := s.viewable(ctx, principal, q.AssessmentID)
	if err != nil {
		return nil, err
	}
	if !perms.CanEdit {
		redacted := q.withoutAnswerKey()
		return &redacted, nil
	}
	return q, nil
}

func (s *AssessmentServiceImpl) CreateQuestion(ctx context.Context, principal *common_models.Principal, req CreateQuestionRequest) (*Question, error) {
	if err := access.RequireAdmin(principal); err != nil {
		return nil, err
	}
	req.Text = strings.TrimSpace(req.Text)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindByID(ctx, req.AssessmentID); err != nil {
		return nil, err
	}
	if err := validateOptions(req.Type, req.Options); err != nil {
		return nil, err
	}

	points := 1.0
	if req.Points != nil {
		points = *req.Points
	}
	now := time.Now().UTC()
	q := &Question{
		ID:           uuid.New(),
		AssessmentID: req.AssessmentID,
		Text:         req.Text,
		Type:         req.Type,
		Points:       points,
		SortOrder:    req.SortOrder,
		Options:      toOptions(req.Options),
		Explanation:  req.Explanation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "question", q.ID.String(), map[string]common_models.Change{
		"assessment_id": {New: q.AssessmentID.String()},
		"type":          {New: string(q.Type)},
	})
	return q, nil
}

func (s *AssessmentServiceImpl) questionTarget(ctx context.Context, id uuid.UUID) (*Question, *Assessment, error) {
	q, err := s.Repo.FindQuestion(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.Repo.FindByID(ctx, q.AssessmentID)
	if err != nil {
		return nil, nil, err
	}
	return q, a, nil
}

func (s *AssessmentServiceImpl) UpdateQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateQuestionRequest) (*Question, error) {
	q, a, err := s.questionTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, a.ModuleID, a.SectionID); err != nil {
		return nil, err
	}
	if req.Text != nil {
		trimmed := strings.TrimSpace(*req.Text)
		req.Text = &trimmed
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	changes := map[string]common_models.Change{}
	if req.Text != nil {
		if t := *req.Text; t != q.Text {
			changes["text"] = common_models.Change{Old: q.Text, New: t}
			q.Text = t
		}
	}
	if req.Points != nil && *req.Points != q.Points {
		changes["points"] = common_models.Change{Old: q.Points, New: *req.Points}
		q.Points = *req.Points
	}
	if req.SortOrder != nil && *req.SortOrder != q.SortOrder {
		changes["sort_order"] = common_models.Change{Old: q.SortOrder, New: *req.SortOrder}
		q.SortOrder = *req.SortOrder
	}
	if req.Options != nil {
		if err := validateOptions(q.Type, req.Options); err != nil {
			return nil, err
		}
		changes["options"] = common_models.Change{Old: len(q.Options), New: len(req.Options)}
		q.Options = toOptions(req.Options)
	}
	if req.Explanation != nil && *req.Explanation != q.Explanation {
		changes["explanation"] = common_models.Change{Old: q.Explanation, New: *req.Explanation}
		q.Explanation = *req.Explanation
	}
	q.UpdatedAt = time.Now().UTC()

	if err := s.Repo.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "question", id.String(), changes)
	return q, nil
}

func (s *AssessmentServiceImpl) DeleteQuestion(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error {
	q, a, err := s.questionTarget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionDelete, a.ModuleID, a.SectionID); err != nil {
		return err
	}
	if err := s.Repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "question", id.String(), map[string]common_models.Change{
		"assessment_id": {Old: q.AssessmentID.String()},
	})
	return nil
}

// validateOptions checks that a question's options fit its type: choice questions need
// unique keys and a usable answer key, free-text questions take none.
func validateOptions(t QuestionType, options []OptionInput) error {
	var fields []apperrors.FieldError
	add := func(field, msg string) {
		fields = append(fields, apperrors.FieldError{Field: field, Message: msg})
	}

	if !t.AutoScored() {
		if len(options) > 0 {
			add("options", fmt.Sprintf("%s questions do not take options", t))
		}
	} else {
		seen := make(map[string]bool, len(options))
		correct := 0
		for i, o := range options {
			if seen[o.Key] {
				add(fmt.Sprintf("options[%d].key", i), "duplicate option key")
			}
			seen[o.Key] = true
			if o.IsCorrect {
				correct++
			}
		}
		switch {
		case t == QuestionTrueFalse && len(options) != 2:
			add("options", "true/false questions need exactly two options")
		case len(options) < 2:
			add("options", "at least two options are required")
		}
		switch {
		case t == QuestionMultipleChoice && correct == 0:
			add("options", "at least one option must be correct")
		case t != QuestionMultipleChoice && correct != 1:
			add("options", "exactly one option must be correct")
		}
	}

	if len(fields) > 0 {
		return apperrors.Validation("invalid request", fields...)
	}
	return nil
}

func toOptions(in []OptionInput) datatypes.JSONSlice[Option] {
	out := make(datatypes.JSONSlice[Option], 0, len(in))
	for _, o := range in {
		out = append(out, Option{Key: o.Key, Text: o.Text, IsCorrect: o.IsCorrect})
	}
	return out
}
