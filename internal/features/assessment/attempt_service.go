package assessment

import (
	"context"
	"fmt"
	"time"

	"go-lms/internal/common/apperrors"
	common_models "go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/config"
	"go-lms/internal/features/access"
	"go-lms/internal/features/audit"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// ProgressRecorder is told about completed attempts so module progress can be recomputed.
type ProgressRecorder interface {
	RecomputeModule(ctx context.Context, userID, moduleID uuid.UUID) error
}

type AttemptService interface {
	StartAttempt(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) (*Attempt, error)
	SubmitAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID, req SubmitAttemptRequest) (*Attempt, error)
	SubmitAssessment(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID, req SubmitAssessmentRequest) (*Attempt, error)
	AbandonAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID) (*Attempt, error)
	GetAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID) (*Attempt, error)
	ListAttempts(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) ([]Attempt, error)
	// AbandonStale ends in-progress attempts nobody will submit anymore.
	AbandonStale(ctx context.Context) (int, error)
}

type AttemptServiceImpl struct {
	Assessments  AssessmentRepository
	Attempts     AttemptRepository
	Resolver     access.Resolver
	Progress     ProgressRecorder
	AuditService audit.AuditService
	Validator    *validation.Validator
	Logger       *zap.Logger
	AbandonAfter time.Duration

	now func() time.Time
}

func NewAttemptService(
	assessments AssessmentRepository,
	attempts AttemptRepository,
	resolver access.Resolver,
	progress ProgressRecorder,
	auditService audit.AuditService,
	validator *validation.Validator,
	cfg *config.Config,
	logger *zap.Logger,
) AttemptService {
	return &AttemptServiceImpl{
		Assessments:  assessments,
		Attempts:     attempts,
		Resolver:     resolver,
		Progress:     progress,
		AuditService: auditService,
		Validator:    validator,
		Logger:       logger,
		AbandonAfter: cfg.AttemptAbandonAfter,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// StartAttempt returns the caller's open attempt when there is one, otherwise opens the
// next attempt if the assessment's attempt cap allows it.
func (s *AttemptServiceImpl) StartAttempt(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) (*Attempt, error) {
	a, _, err := loadViewable(ctx, s.Assessments, s.Resolver, principal, assessmentID)
	if err != nil {
		return nil, err
	}

	open, err := s.Attempts.FindOpen(ctx, a.ID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		if !s.overdue(a, open) {
			return open, nil
		}
		// An overdue attempt can no longer be submitted in time
		if err := s.abandon(ctx, open); err != nil && !apperrors.IsConflict(err) {
			return nil, err
		}
	}
	return s.begin(ctx, principal, a, s.now())
}

func (s *AttemptServiceImpl) begin(ctx context.Context, principal *common_models.Principal, a *Assessment, startedAt time.Time) (*Attempt, error) {
	n, err := s.Attempts.CountByUser(ctx, a.ID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if a.MaxAttempts > 0 && n >= a.MaxAttempts {
		return nil, apperrors.AttemptLimitExceeded(a.MaxAttempts)
	}

	now := s.now()
	attempt := &Attempt{
		ID:            uuid.New(),
		AssessmentID:  a.ID,
		UserID:        principal.UserID,
		AttemptNumber: n + 1,
		Status:        AttemptInProgress,
		StartedAt:     startedAt,
		Answers:       datatypes.JSONSlice[GradedAnswer]{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *AttemptServiceImpl) SubmitAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID, req SubmitAttemptRequest) (*Attempt, error) {
	attempt, err := s.ownOpenAttempt(ctx, principal, attemptID)
	if err != nil {
		return nil, err
	}
	a, _, err := loadViewable(ctx, s.Assessments, s.Resolver, principal, attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}
	return s.submit(ctx, a, attempt, req.Answers)
}

// SubmitAssessment scores a one-shot submission. The attempt cap is checked before anything
// is graded.
func (s *AttemptServiceImpl) SubmitAssessment(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID, req SubmitAssessmentRequest) (*Attempt, error) {
	a, _, err := loadViewable(ctx, s.Assessments, s.Resolver, principal, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := s.Validator.Struct(req); err != nil {
		return nil, err
	}

	attempt, err := s.Attempts.FindOpen(ctx, a.ID, principal.UserID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		startedAt := s.now()
		if req.StartedAt != nil && req.StartedAt.Before(startedAt) {
			startedAt = req.StartedAt.UTC()
		}
		if attempt, err = s.begin(ctx, principal, a, startedAt); err != nil {
			return nil, err
		}
	}
	return s.submit(ctx, a, attempt, req.Answers)
}

func (s *AttemptServiceImpl) submit(ctx context.Context, a *Assessment, attempt *Attempt, answers []AnswerInput) (*Attempt, error) {
	questions, err := s.Assessments.ListQuestions(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if err := checkAnswers(questions, answers); err != nil {
		return nil, err
	}

	now := s.now()
	attempt.SubmittedAt = &now
	attempt.UpdatedAt = now
	if s.overdue(a, attempt) {
		// Late submissions are recorded but never scored
		attempt.Status = AttemptTimeExpired
		attempt.Passed = false
	} else {
		res := Score(questions, answers, a.PassingScore)
		attempt.Status = AttemptCompleted
		attempt.Answers = res.Answers
		attempt.PointsEarned = res.PointsEarned
		attempt.PointsPossible = res.PointsPossible
		attempt.PointsPending = res.PointsPending
		attempt.Percentage = res.Percentage
		attempt.Passed = res.Passed
	}

	if err := s.Attempts.Finish(ctx, attempt); err != nil {
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionSubmission, "attempt", attempt.ID.String(), map[string]common_models.Change{
		"status":     {Old: AttemptInProgress, New: attempt.Status},
		"percentage": {New: attempt.Percentage},
		"passed":     {New: attempt.Passed},
	})

	if attempt.Status == AttemptCompleted {
		if err := s.Progress.RecomputeModule(ctx, attempt.UserID, a.ModuleID); err != nil {
			s.Logger.Error("Failed to recompute module progress",
				zap.String("attempt_id", attempt.ID.String()),
				zap.String("module_id", a.ModuleID.String()),
				zap.Error(err))
		}
	}
	return attempt, nil
}

func (s *AttemptServiceImpl) AbandonAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID) (*Attempt, error) {
	attempt, err := s.ownOpenAttempt(ctx, principal, attemptID)
	if err != nil {
		return nil, err
	}
	if err := s.abandon(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *AttemptServiceImpl) abandon(ctx context.Context, attempt *Attempt) error {
	attempt.Status = AttemptAbandoned
	attempt.UpdatedAt = s.now()
	if err := s.Attempts.Finish(ctx, attempt); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "attempt", attempt.ID.String(), map[string]common_models.Change{
		"status": {Old: AttemptInProgress, New: AttemptAbandoned},
	})
	return nil
}

// GetAttempt is open to the attempt's owner and to editors of the assessment.
func (s *AttemptServiceImpl) GetAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID) (*Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	_, perms, err := loadViewable(ctx, s.Assessments, s.Resolver, principal, attempt.AssessmentID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != principal.UserID && !perms.CanEdit {
		return nil, apperrors.Forbidden(apperrors.ReasonNotOwner)
	}
	return attempt, nil
}

func (s *AttemptServiceImpl) ListAttempts(ctx context.Context, principal *common_models.Principal, assessmentID uuid.UUID) ([]Attempt, error) {
	_, perms, err := loadViewable(ctx, s.Assessments, s.Resolver, principal, assessmentID)
	if err != nil {
		return nil, err
	}
	if perms.CanEdit {
		return s.Attempts.List(ctx, assessmentID, nil)
	}
	return s.Attempts.List(ctx, assessmentID, &principal.UserID)
}

func (s *AttemptServiceImpl) AbandonStale(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.Attempts.ListStale(ctx, now, now.Add(-s.AbandonAfter))
	if err != nil {
		return 0, err
	}

	abandoned := 0
	for i := range stale {
		err := s.abandon(ctx, &stale[i])
		switch {
		case err == nil:
			abandoned++
		case apperrors.IsConflict(err):
			// submitted while we were sweeping
		default:
			return abandoned, err
		}
	}
	return abandoned, nil
}

func (s *AttemptServiceImpl) ownOpenAttempt(ctx context.Context, principal *common_models.Principal, attemptID uuid.UUID) (*Attempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != principal.UserID {
		return nil, apperrors.Forbidden(apperrors.ReasonNotOwner)
	}
	if attempt.Status.Terminal() {
		return nil, apperrors.Conflict(fmt.Sprintf("attempt is already %s", attempt.Status))
	}
	return attempt, nil
}

func (s *AttemptServiceImpl) overdue(a *Assessment, attempt *Attempt) bool {
	limit := a.TimeLimit()
	return limit > 0 && s.now().Sub(attempt.StartedAt) > limit
}

// checkAnswers rejects answers to questions outside the assessment and repeated answers.
func checkAnswers(questions []Question, answers []AnswerInput) error {
	known := make(map[uuid.UUID]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(answers))
	var fields []apperrors.FieldError
	for i, a := range answers {
		field := fmt.Sprintf("answers[%d].question_id", i)
		switch {
		case !known[a.QuestionID]:
			fields = append(fields, apperrors.FieldError{Field: field, Message: "question is not part of this assessment"})
		case seen[a.QuestionID]:
			fields = append(fields, apperrors.FieldError{Field: field, Message: "question answered more than once"})
		}
		seen[a.QuestionID] = true
	}
	if len(fields) > 0 {
		return apperrors.Validation("invalid request", fields...)
	}
	return nil
}
