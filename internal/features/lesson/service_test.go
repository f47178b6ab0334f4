package lesson

import (
	"context"
	"testing"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/common/validation"
	"go-lms/internal/features/access"
	"go-lms/internal/features/access/accesstest"
	"go-lms/internal/features/audit/audittest"
	"go-lms/internal/features/section"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockLessonRepo struct {
	lessons map[uuid.UUID]*Lesson
}

func (m *MockLessonRepo) Create(ctx context.Context, lesson *Lesson) error {
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *MockLessonRepo) FindByID(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	if l, ok := m.lessons[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, apperrors.NotFound("lesson", id)
}

func (m *MockLessonRepo) ListBySection(ctx context.Context, sectionID uuid.UUID, includeInactive bool) ([]Lesson, error) {
	out := []Lesson{}
	for _, l := range m.lessons {
		if l.SectionID == sectionID && (includeInactive || l.IsActive) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *MockLessonRepo) Update(ctx context.Context, lesson *Lesson) error {
	m.lessons[lesson.ID] = lesson
	return nil
}

func (m *MockLessonRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.lessons, id)
	return nil
}

type sectionStub map[uuid.UUID]*section.Section

func (s sectionStub) FindByID(ctx context.Context, id uuid.UUID) (*section.Section, error) {
	if sec, ok := s[id]; ok {
		return sec, nil
	}
	return nil, apperrors.NotFound("section", id)
}

type touchRecorder struct {
	touched []uuid.UUID
}

func (r *touchRecorder) TouchLesson(ctx context.Context, userID, lessonID uuid.UUID) error {
	r.touched = append(r.touched, lessonID)
	return nil
}

type fixture struct {
	store    *accesstest.Store
	repo     *MockLessonRepo
	touches  *touchRecorder
	svc      LessonService
	admin    *models.Principal
	moduleID uuid.UUID
	section  uuid.UUID
}

func newFixture() *fixture {
	store := accesstest.NewStore()
	moduleID, sectionID := uuid.New(), uuid.New()
	store.AddModule(moduleID)
	store.AddSection(moduleID, sectionID)
	sections := sectionStub{sectionID: {ID: sectionID, ModuleID: moduleID, IsActive: true}}
	repo := &MockLessonRepo{lessons: map[uuid.UUID]*Lesson{}}
	touches := &touchRecorder{}
	return &fixture{
		store:    store,
		repo:     repo,
		touches:  touches,
		svc:      NewLessonService(repo, sections, store.Resolver(), touches, &audittest.Recorder{}, validation.NewValidator(), zap.NewNop()),
		admin:    &models.Principal{UserID: uuid.New(), IsAdmin: true},
		moduleID: moduleID,
		section:  sectionID,
	}
}

func (f *fixture) lesson(t *testing.T, title string, active bool) *Lesson {
	t.Helper()
	l, err := f.svc.CreateLesson(context.Background(), f.admin, CreateLessonRequest{
		SectionID: f.section, Title: title, IsActive: &active,
	})
	require.NoError(t, err)
	return l
}

func TestCreateLesson(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateLesson(ctx, f.admin, CreateLessonRequest{SectionID: uuid.New(), Title: "Ladders"})
	assert.True(t, apperrors.IsNotFound(err))

	_, err = f.svc.CreateLesson(ctx, f.admin, CreateLessonRequest{SectionID: f.section, Title: "Ladders", ContentType: "podcast"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = f.svc.CreateLesson(ctx, &models.Principal{}, CreateLessonRequest{SectionID: f.section, Title: "Ladders"})
	assert.True(t, apperrors.IsAuthorization(err))

	l := f.lesson(t, "Ladders", true)
	assert.Equal(t, ContentText, l.ContentType)
}

func TestLessonVisibilityFollowsSectionRules(t *testing.T) {
	f := newFixture()
	visible := f.lesson(t, "Ladders", true)
	draft := f.lesson(t, "Scaffolds", false)
	role := uuid.New()
	learner := &models.Principal{UserID: uuid.New(), RoleIDs: []uuid.UUID{role}}
	ctx := context.Background()

	_, err := f.svc.ListLessons(ctx, learner, f.section)
	assert.True(t, apperrors.IsAuthorization(err))
	_, err = f.svc.GetLesson(ctx, learner, visible.ID)
	assert.True(t, apperrors.IsAuthorization(err))
	assert.Empty(t, f.touches.touched)

	f.store.Grant(role, f.moduleID, &f.section, access.Permissions{CanView: true})

	list, err := f.svc.ListLessons(ctx, learner, f.section)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, visible.ID, list[0].ID)

	detail, err := f.svc.GetLesson(ctx, learner, visible.ID)
	require.NoError(t, err)
	assert.Equal(t, f.moduleID, detail.ModuleID)
	assert.Equal(t, []uuid.UUID{visible.ID}, f.touches.touched)

	_, err = f.svc.GetLesson(ctx, learner, draft.ID)
	assert.True(t, apperrors.IsNotFound(err))

	all, err := f.svc.ListLessons(ctx, f.admin, f.section)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateAndDeleteLesson(t *testing.T) {
	f := newFixture()
	l := f.lesson(t, "Ladders", true)
	editor := uuid.New()
	f.store.Grant(editor, f.moduleID, nil, access.Permissions{CanView: true, CanEdit: true})
	principal := &models.Principal{RoleIDs: []uuid.UUID{editor}}
	ctx := context.Background()
	minutes := 15

	updated, err := f.svc.UpdateLesson(ctx, principal, l.ID, UpdateLessonRequest{DurationMinutes: &minutes})
	require.NoError(t, err)
	assert.Equal(t, 15, updated.DurationMinutes)

	bad := "not a url"
	_, err = f.svc.UpdateLesson(ctx, principal, l.ID, UpdateLessonRequest{MediaURL: &bad})
	assert.True(t, apperrors.IsValidation(err))

	assert.True(t, apperrors.IsAuthorization(f.svc.DeleteLesson(ctx, principal, l.ID)))
	require.NoError(t, f.svc.DeleteLesson(ctx, f.admin, l.ID))
	assert.Empty(t, f.repo.lessons)
}

func TestUpdateLessonTrimsTitle(t *testing.T) {
	f := newFixture()
	l := f.lesson(t, "Ladders", true)
	ctx := context.Background()
	blank, padded := "   ", " Ladder safety  "

	_, err := f.svc.UpdateLesson(ctx, f.admin, l.ID, UpdateLessonRequest{Title: &blank})
	assert.True(t, apperrors.IsValidation(err))
	assert.Equal(t, "Ladders", f.repo.lessons[l.ID].Title)

	updated, err := f.svc.UpdateLesson(ctx, f.admin, l.ID, UpdateLessonRequest{Title: &padded})
	require.NoError(t, err)
	assert.Equal(t, "Ladder safety", updated.Title)
}
