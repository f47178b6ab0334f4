package assessment

import (
	"context"
	"sort"
	"testing"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/config"
	"go-lms/internal/features/access"
	"go-lms/internal/features/access/accesstest"
	"go-lms/internal/features/audit/audittest"
	"go-lms/internal/features/section"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryAssessments struct {
	assessments   map[uuid.UUID]*Assessment
	questions     map[uuid.UUID]*Question
	questionLists int
}

func newMemoryAssessments() *memoryAssessments {
	return &memoryAssessments{
		assessments: map[uuid.UUID]*Assessment{},
		questions:   map[uuid.UUID]*Question{},
	}
}

func (m *memoryAssessments) Create(ctx context.Context, a *Assessment) error {
	m.assessments[a.ID] = a
	return nil
}

func (m *memoryAssessments) FindByID(ctx context.Context, id uuid.UUID) (*Assessment, error) {
	if a, ok := m.assessments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, apperrors.NotFound("assessment", id)
}

func (m *memoryAssessments) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]Assessment, error) {
	out := []Assessment{}
	for _, a := range m.assessments {
		if a.ModuleID == moduleID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memoryAssessments) Update(ctx context.Context, a *Assessment) error {
	m.assessments[a.ID] = a
	return nil
}

func (m *memoryAssessments) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.assessments, id)
	return nil
}

func (m *memoryAssessments) CreateQuestion(ctx context.Context, q *Question) error {
	m.questions[q.ID] = q
	return nil
}

func (m *memoryAssessments) FindQuestion(ctx context.Context, id uuid.UUID) (*Question, error) {
	if q, ok := m.questions[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, apperrors.NotFound("question", id)
}

func (m *memoryAssessments) ListQuestions(ctx context.Context, assessmentID uuid.UUID) ([]Question, error) {
	m.questionLists++
	out := []Question{}
	for _, q := range m.questions {
		if q.AssessmentID == assessmentID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memoryAssessments) UpdateQuestion(ctx context.Context, q *Question) error {
	m.questions[q.ID] = q
	return nil
}

func (m *memoryAssessments) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	delete(m.questions, id)
	return nil
}

type memoryAttempts struct {
	attempts    []*Attempt
	assessments *memoryAssessments
}

func (m *memoryAttempts) Create(ctx context.Context, attempt *Attempt) error {
	cp := *attempt
	m.attempts = append(m.attempts, &cp)
	return nil
}

func (m *memoryAttempts) FindByID(ctx context.Context, id uuid.UUID) (*Attempt, error) {
	for _, a := range m.attempts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("attempt", id)
}

func (m *memoryAttempts) FindOpen(ctx context.Context, assessmentID, userID uuid.UUID) (*Attempt, error) {
	for _, a := range m.attempts {
		if a.AssessmentID == assessmentID && a.UserID == userID && a.Status == AttemptInProgress {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryAttempts) CountByUser(ctx context.Context, assessmentID, userID uuid.UUID) (int, error) {
	n := 0
	for _, a := range m.attempts {
		if a.AssessmentID == assessmentID && a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memoryAttempts) List(ctx context.Context, assessmentID uuid.UUID, userID *uuid.UUID) ([]Attempt, error) {
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.AssessmentID == assessmentID && (userID == nil || a.UserID == *userID) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memoryAttempts) Finish(ctx context.Context, attempt *Attempt) error {
	for i, a := range m.attempts {
		if a.ID != attempt.ID {
			continue
		}
		if a.Status != AttemptInProgress {
			return apperrors.Conflict("attempt is no longer in progress")
		}
		cp := *attempt
		m.attempts[i] = &cp
		return nil
	}
	return apperrors.NotFound("attempt", attempt.ID)
}

func (m *memoryAttempts) ListStale(ctx context.Context, now, idleBefore time.Time) ([]Attempt, error) {
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.Status != AttemptInProgress {
			continue
		}
		as := m.assessments.assessments[a.AssessmentID]
		limit := as.TimeLimit()
		if (limit > 0 && a.StartedAt.Add(limit).Before(now)) || (limit == 0 && a.StartedAt.Before(idleBefore)) {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memoryAttempts) byStatus(status AttemptStatus) int {
	n := 0
	for _, a := range m.attempts {
		if a.Status == status {
			n++
		}
	}
	return n
}

type sectionStub map[uuid.UUID]*section.Section

func (s sectionStub) FindByID(ctx context.Context, id uuid.UUID) (*section.Section, error) {
	if sec, ok := s[id]; ok {
		return sec, nil
	}
	return nil, apperrors.NotFound("section", id)
}

type recompute struct {
	userID, moduleID uuid.UUID
}

type progressSpy struct {
	calls []recompute
}

func (p *progressSpy) RecomputeModule(ctx context.Context, userID, moduleID uuid.UUID) error {
	p.calls = append(p.calls, recompute{userID, moduleID})
	return nil
}

type fixture struct {
	store       *accesstest.Store
	assessments *memoryAssessments
	attempts    *memoryAttempts
	progress    *progressSpy
	audit       *audittest.Recorder
	svc         AssessmentService
	attemptSvc  AttemptService
	clock       time.Time
	admin       *models.Principal
	learnerRole uuid.UUID
	moduleID    uuid.UUID
	sectionID   uuid.UUID

	// belongs to another module
	foreignSection uuid.UUID
}

func newFixture() *fixture {
	store := accesstest.NewStore()
	moduleID, otherModule, sectionID, foreignSection := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	store.AddModule(moduleID)
	store.AddModule(otherModule)
	store.AddSection(moduleID, sectionID)
	store.AddSection(otherModule, foreignSection)
	sections := sectionStub{
		sectionID:      {ID: sectionID, ModuleID: moduleID},
		foreignSection: {ID: foreignSection, ModuleID: otherModule},
	}

	learnerRole := uuid.New()
	store.Grant(learnerRole, moduleID, nil, access.Permissions{CanView: true})

	assessments := newMemoryAssessments()
	attempts := &memoryAttempts{assessments: assessments}
	progress := &progressSpy{}
	rec := &audittest.Recorder{}
	v := validation.NewValidator()

	f := &fixture{
		store:       store,
		assessments: assessments,
		attempts:    attempts,
		progress:    progress,
		audit:       rec,
		svc:         NewAssessmentService(assessments, sections, store.Resolver(), rec, v),
		clock:       time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		admin:       &models.Principal{UserID: uuid.New(), IsAdmin: true},
		learnerRole: learnerRole,
		moduleID:    moduleID,
		sectionID:   sectionID,

		foreignSection: foreignSection,
	}
	attemptSvc := NewAttemptService(assessments, attempts, store.Resolver(), progress, rec, v,
		&config.Config{AttemptAbandonAfter: time.Hour}, zap.NewNop()).(*AttemptServiceImpl)
	attemptSvc.now = func() time.Time { return f.clock }
	f.attemptSvc = attemptSvc
	return f
}

func (f *fixture) learner() *models.Principal {
	return &models.Principal{UserID: uuid.New(), RoleIDs: []uuid.UUID{f.learnerRole}}
}

func (f *fixture) advance(d time.Duration) { f.clock = f.clock.Add(d) }

// quiz creates an assessment with two single-choice questions worth 50 points each whose
// correct option is "a".
func (f *fixture) quiz(t *testing.T, req CreateAssessmentRequest) (*Assessment, []*Question) {
	t.Helper()
	ctx := context.Background()
	req.ModuleID = f.moduleID
	if req.Title == "" {
		req.Title = "Safety quiz"
	}
	a, err := f.svc.CreateAssessment(ctx, f.admin, req)
	require.NoError(t, err)

	points := 50.0
	var questions []*Question
	for i := 0; i < 2; i++ {
		q, err := f.svc.CreateQuestion(ctx, f.admin, CreateQuestionRequest{
			AssessmentID: a.ID,
			Text:         "Which is safe?",
			Type:         QuestionSingleChoice,
			Points:       &points,
			SortOrder:    i,
			Options: []OptionInput{
				{Key: "a", Text: "Wear a harness", IsCorrect: true},
				{Key: "b", Text: "Lean out"},
			},
			Explanation: "Harnesses prevent falls.",
		})
		require.NoError(t, err)
		questions = append(questions, q)
	}
	return a, questions
}

func answer(q *Question, keys ...string) AnswerInput {
	return AnswerInput{QuestionID: q.ID, Selected: keys}
}
