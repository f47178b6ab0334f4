package lesson

import (
	"context"
	"strings"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"
	"go-lms/internal/features/section"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SectionLookup resolves the section a lesson belongs to. section.SectionRepository satisfies it.
type SectionLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*section.Section, error)
}

// ProgressTracker records that a learner opened a lesson.
type ProgressTracker interface {
	TouchLesson(ctx context.Context, userID, lessonID uuid.UUID) error
}

type LessonService interface {
	ListLessons(ctx context.Context, principal *common_models.Principal, sectionID uuid.UUID) ([]Lesson, error)
	GetLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*LessonDetail, error)
	CreateLesson(ctx context.Context, principal *common_models.Principal, req CreateLessonRequest) (*Lesson, error)
	UpdateLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateLessonRequest) (*Lesson, error)
	DeleteLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error
}

type LessonServiceImpl struct {
	Repo         LessonRepository
	Sections     SectionLookup
	Resolver     access.Resolver
	Progress     ProgressTracker
	AuditService audit.AuditService
	Validator    *validation.Validator
	Logger       *zap.Logger
}

func NewLessonService(
	repo LessonRepository,
	sections SectionLookup,
	resolver access.Resolver,
	progress ProgressTracker,
	auditService audit.AuditService,
	validator *validation.Validator,
	logger *zap.Logger,
) LessonService {
	return &LessonServiceImpl{
		Repo:         repo,
		Sections:     sections,
		Resolver:     resolver,
		Progress:     progress,
		AuditService: auditService,
		Validator:    validator,
		Logger:       logger,
	}
}

func (s *LessonServiceImpl) ListLessons(ctx context.Context, principal *common_models.Principal, sectionID uuid.UUID) ([]Lesson, error) {
	sec, err := s.Sections.FindByID(ctx, sectionID)
	if err != nil {
		return nil, err
	}
	perms, err := s.Resolver.Permissions(ctx, principal, sec.ModuleID, &sec.ID)
	if err != nil {
		return nil, err
	}
	if !perms.CanView {
		return nil, apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	// Inactive lessons stay visible to those who can edit them
	return s.Repo.ListBySection(ctx, sectionID, perms.CanEdit)
}

// lessonTarget loads the lesson with the module that owns its section.
func (s *LessonServiceImpl) lessonTarget(ctx context.Context, id uuid.UUID) (*Lesson, *section.Section, error) {
	l, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	sec, err := s.Sections.FindByID(ctx, l.SectionID)
	if err != nil {
		return nil, nil, err
	}
	return l, sec, nil
}

func (s *LessonServiceImpl) GetLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID) (*LessonDetail, error) {
	l, sec, err := s.lessonTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	perms, err := s.Resolver.Permissions(ctx, principal, sec.ModuleID, &sec.ID)
	if err != nil {
		return nil, err
	}
	if !perms.CanView {
		return nil, apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	if !l.IsActive && !perms.CanEdit {
		return nil, apperrors.NotFound("lesson", l.ID)
	}

	if principal.UserID != uuid.Nil {
		if err := s.Progress.TouchLesson(ctx, principal.UserID, l.ID); err != nil {
			s.Logger.Warn("Failed to record lesson access", zap.String("lesson_id", l.ID.String()), zap.Error(err))
		}
	}
	return &LessonDetail{Lesson: *l, ModuleID: sec.ModuleID, Permissions: perms}, nil
}

func (s *LessonServiceImpl) CreateLesson(ctx context.Context, principal *common_models.Principal, req CreateLessonRequest) (*Lesson, error) {
	if err := access.RequireAdmin(principal); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Sections.FindByID(ctx, req.SectionID); err != nil {
		return nil, err
	}
	if req.ContentType == "" {
		req.ContentType = ContentText
	}

	now := time.Now().UTC()
	l := &Lesson{
		ID:              uuid.New(),
		SectionID:       req.SectionID,
		Title:           req.Title,
		Content:         req.Content,
		ContentType:     req.ContentType,
		MediaURL:        req.MediaURL,
		DurationMinutes: req.DurationMinutes,
		SortOrder:       req.SortOrder,
		IsActive:        req.IsActive == nil || *req.IsActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, l); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "lesson", l.ID.String(), map[string]common_models.Change{
		"title":      {New: l.Title},
		"section_id": {New: l.SectionID.String()},
	})
	return l, nil
}

func (s *LessonServiceImpl) UpdateLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID, req UpdateLessonRequest) (*Lesson, error) {
	l, sec, err := s.lessonTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, sec.ModuleID, &sec.ID); err != nil {
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
		if t := *req.Title; t != l.Title {
			changes["title"] = common_models.Change{Old: l.Title, New: t}
			l.Title = t
		}
	}
	if req.Content != nil && *req.Content != l.Content {
		// the body itself is too large for the audit trail
		changes["content"] = common_models.Change{Old: len(l.Content), New: len(*req.Content)}
		l.Content = *req.Content
	}
	if req.ContentType != nil && *req.ContentType != l.ContentType {
		changes["content_type"] = common_models.Change{Old: l.ContentType, New: *req.ContentType}
		l.ContentType = *req.ContentType
	}
	if req.MediaURL != nil && *req.MediaURL != l.MediaURL {
		changes["media_url"] = common_models.Change{Old: l.MediaURL, New: *req.MediaURL}
		l.MediaURL = *req.MediaURL
	}
	if req.DurationMinutes != nil && *req.DurationMinutes != l.DurationMinutes {
		changes["duration_minutes"] = common_models.Change{Old: l.DurationMinutes, New: *req.DurationMinutes}
		l.DurationMinutes = *req.DurationMinutes
	}
	if req.SortOrder != nil && *req.SortOrder != l.SortOrder {
		changes["sort_order"] = common_models.Change{Old: l.SortOrder, New: *req.SortOrder}
		l.SortOrder = *req.SortOrder
	}
	if req.IsActive != nil && *req.IsActive != l.IsActive {
		changes["is_active"] = common_models.Change{Old: l.IsActive, New: *req.IsActive}
		l.IsActive = *req.IsActive
	}
	l.UpdatedAt = time.Now().UTC()

	if err := s.Repo.Update(ctx, l); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "lesson", id.String(), changes)
	return l, nil
}

func (s *LessonServiceImpl) DeleteLesson(ctx context.Context, principal *common_models.Principal, id uuid.UUID) error {
	l, sec, err := s.lessonTarget(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionDelete, sec.ModuleID, &sec.ID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "lesson", id.String(), map[string]common_models.Change{
		"title": {Old: l.Title},
	})
	return nil
}
