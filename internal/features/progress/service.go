package progress

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Export is a rendered progress workbook.
type Export struct {
	Filename string
	Content  []byte
}

type ProgressService interface {
	CompleteLesson(ctx context.Context, principal *common_models.Principal, lessonID uuid.UUID) (*ModuleProgress, error)
	TouchLesson(ctx context.Context, userID, lessonID uuid.UUID) error
	// RecomputeModule refreshes the user's stored progress on the module and notifies
	// their open progress feeds.
	RecomputeModule(ctx context.Context, userID, moduleID uuid.UUID) error
	GetModuleProgress(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) (*ModuleProgress, error)
	ListMyProgress(ctx context.Context, principal *common_models.Principal) ([]ModuleProgress, error)
	ExportModuleProgress(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) (*Export, error)
}

type ProgressServiceImpl struct {
	Repo         ProgressRepository
	Resolver     access.Resolver
	Hub          *Hub
	AuditService audit.AuditService
	Logger       *zap.Logger

	now func() time.Time
}

func NewProgressService(repo ProgressRepository, resolver access.Resolver, hub *Hub, auditService audit.AuditService, logger *zap.Logger) ProgressService {
	return &ProgressServiceImpl{
		Repo:         repo,
		Resolver:     resolver,
		Hub:          hub,
		AuditService: auditService,
		Logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProgressServiceImpl) CompleteLesson(ctx context.Context, principal *common_models.Principal, lessonID uuid.UUID) (*ModuleProgress, error) {
	ref, err := s.Repo.LessonTarget(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := s.Resolver.Authorize(ctx, principal, access.ActionView, ref.ModuleID, &ref.SectionID); err != nil {
		return nil, err
	}
	if !ref.IsActive {
		return nil, apperrors.NotFound("lesson", lessonID)
	}

	if err := s.Repo.CompleteLesson(ctx, principal.UserID, lessonID, s.now()); err != nil {
		return nil, err
	}
	return s.recompute(ctx, principal.UserID, ref.ModuleID)
}

func (s *ProgressServiceImpl) TouchLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	return s.Repo.TouchLesson(ctx, userID, lessonID, s.now())
}

func (s *ProgressServiceImpl) RecomputeModule(ctx context.Context, userID, moduleID uuid.UUID) error {
	_, err := s.recompute(ctx, userID, moduleID)
	return err
}

func (s *ProgressServiceImpl) recompute(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgress, error) {
	mp, firstCompletion, _, err := s.compute(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, mp, firstCompletion)
}

// current returns the user's progress as of now. Stored rows that no longer match the module's
// lessons and required assessments are rewritten; users with nothing stored get a computed
// value that is not saved.
func (s *ProgressServiceImpl) current(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgress, error) {
	mp, firstCompletion, previous, err := s.compute(ctx, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return mp, nil
	}
	if sameProgress(previous, mp) {
		return previous, nil
	}
	return s.store(ctx, mp, firstCompletion)
}

func (s *ProgressServiceImpl) store(ctx context.Context, mp *ModuleProgress, firstCompletion bool) (*ModuleProgress, error) {
	if err := s.Repo.SaveModuleProgress(ctx, mp); err != nil {
		return nil, err
	}

	s.Hub.Publish(Event{Type: EventModuleProgress, Progress: *mp})
	if firstCompletion {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "module_progress", mp.ModuleID.String(), map[string]common_models.Change{
			"user_id":      {New: mp.UserID.String()},
			"is_completed": {Old: false, New: true},
		})
	}
	return mp, nil
}

func sameProgress(a, b *ModuleProgress) bool {
	return a.CompletionPercentage == b.CompletionPercentage &&
		a.CompletedLessons == b.CompletedLessons &&
		a.TotalLessons == b.TotalLessons &&
		a.IsCompleted == b.IsCompleted
}

// compute derives progress from the current lessons and attempts without storing it. A module
// without active lessons counts as fully read. firstCompletion is set when the module becomes
// completed and the stored row was not; a module that loses its completion (a lesson was
// added, say) gets a new completed_at when it is completed again.
func (s *ProgressServiceImpl) compute(ctx context.Context, userID, moduleID uuid.UUID) (mp *ModuleProgress, firstCompletion bool, previous *ModuleProgress, err error) {
	completed, total, err := s.Repo.LessonCounts(ctx, userID, moduleID)
	if err != nil {
		return nil, false, nil, err
	}
	passed, err := s.Repo.RequiredAssessmentsPassed(ctx, userID, moduleID)
	if err != nil {
		return nil, false, nil, err
	}
	previous, err = s.Repo.FindModuleProgress(ctx, userID, moduleID)
	if err != nil {
		return nil, false, nil, err
	}

	now := s.now()
	mp = &ModuleProgress{
		UserID:               userID,
		ModuleID:             moduleID,
		CompletionPercentage: Percentage(completed, total),
		CompletedLessons:     completed,
		TotalLessons:         total,
		UpdatedAt:            now,
	}
	mp.IsCompleted = mp.CompletionPercentage == 100 && passed
	switch {
	case !mp.IsCompleted:
	case previous != nil && previous.CompletedAt != nil:
		mp.CompletedAt = previous.CompletedAt
	default:
		mp.CompletedAt = &now
		firstCompletion = true
	}
	return mp, firstCompletion, previous, nil
}

// Percentage is completed over total lessons, rounded down.
func Percentage(completed, total int) int {
	if total == 0 {
		return 100
	}
	if completed > total {
		completed = total
	}
	return completed * 100 / total
}

func (s *ProgressServiceImpl) GetModuleProgress(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) (*ModuleProgress, error) {
	if err := s.requireViewable(ctx, principal, moduleID); err != nil {
		return nil, err
	}
	return s.current(ctx, principal.UserID, moduleID)
}

// requireViewable accepts principals who can list the module, including through a
// section-level grant.
func (s *ProgressServiceImpl) requireViewable(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) error {
	if _, err := s.Resolver.Permissions(ctx, principal, moduleID, nil); err != nil {
		return err
	}
	viewable, err := s.Resolver.ViewableModules(ctx, principal)
	if err != nil {
		return err
	}
	if !viewable.Contains(moduleID) {
		return apperrors.Forbidden(apperrors.ReasonInsufficientPermission)
	}
	return nil
}

// ListMyProgress returns progress on the modules the caller has started and can still see.
func (s *ProgressServiceImpl) ListMyProgress(ctx context.Context, principal *common_models.Principal) ([]ModuleProgress, error) {
	all, err := s.Repo.ListByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	viewable, err := s.Resolver.ViewableModules(ctx, principal)
	if err != nil {
		return nil, err
	}
	out := make([]ModuleProgress, 0, len(all))
	for _, stored := range all {
		if !viewable.Contains(stored.ModuleID) {
			continue
		}
		mp, err := s.current(ctx, principal.UserID, stored.ModuleID)
		if err != nil {
			return nil, err
		}
		out = append(out, *mp)
	}
	return out, nil
}

func (s *ProgressServiceImpl) ExportModuleProgress(ctx context.Context, principal *common_models.Principal, moduleID uuid.UUID) (*Export, error) {
	if err := s.Resolver.Authorize(ctx, principal, access.ActionEdit, moduleID, nil); err != nil {
		return nil, err
	}
	title, err := s.Repo.ModuleTitle(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	rows, err := s.Repo.ListByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		mp, err := s.current(ctx, rows[i].UserID, moduleID)
		if err != nil {
			return nil, err
		}
		rows[i].ModuleProgress = *mp
	}

	content, filename, err := writeProgressWorkbook(title, rows)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Exported module progress",
		zap.String("module_id", moduleID.String()),
		zap.Int("learners", len(rows)))
	return &Export{Filename: filename, Content: content}, nil
}
