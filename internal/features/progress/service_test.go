package progress

import (
	"bytes"
	"context"
	"testing"
	"time"

	"go-lms/internal/common/apperrors"
	"go-lms/internal/common/models"
	"go-lms/internal/features/access"
	"go-lms/internal/features/access/accesstest"
	"go-lms/internal/features/audit/audittest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fixture struct {
	store     *accesstest.Store
	repo      *memoryProgress
	hub       *Hub
	audit     *audittest.Recorder
	svc       *ProgressServiceImpl
	clock     time.Time
	admin     *models.Principal
	learner   *models.Principal
	moduleID  uuid.UUID
	sectionID uuid.UUID
}

func newFixture() *fixture {
	store := accesstest.NewStore()
	moduleID, sectionID, role := uuid.New(), uuid.New(), uuid.New()
	store.AddModule(moduleID)
	store.AddSection(moduleID, sectionID)
	store.AddRole(role, "Learner", false)
	store.Grant(role, moduleID, nil, access.Permissions{CanView: true})

	repo := newMemoryProgress()
	repo.titles[moduleID] = "Working at Height"
	hub := NewHub(zap.NewNop())
	recorder := &audittest.Recorder{}

	f := &fixture{
		store:     store,
		repo:      repo,
		hub:       hub,
		audit:     recorder,
		clock:     time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		admin:     &models.Principal{UserID: uuid.New(), IsAdmin: true},
		learner:   &models.Principal{UserID: uuid.New(), RoleIDs: []uuid.UUID{role}},
		moduleID:  moduleID,
		sectionID: sectionID,
	}
	f.svc = NewProgressService(repo, store.Resolver(), hub, recorder, zap.NewNop()).(*ProgressServiceImpl)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 100, Percentage(0, 0))
	assert.Equal(t, 33, Percentage(1, 3))
	assert.Equal(t, 66, Percentage(2, 3))
	assert.Equal(t, 100, Percentage(5, 4))
}

func TestModuleCompletesWhenLessonsAndRequiredAssessmentsAreDone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lessons := make([]uuid.UUID, 4)
	for i := range lessons {
		lessons[i] = f.repo.addLesson(f.moduleID, f.sectionID, true)
	}
	f.repo.passed[progressKey{f.learner.UserID, f.moduleID}] = false

	for i, id := range lessons[:3] {
		mp, err := f.svc.CompleteLesson(ctx, f.learner, id)
		require.NoError(t, err)
		assert.Equal(t, (i+1)*25, mp.CompletionPercentage)
	}

	mp, err := f.svc.CompleteLesson(ctx, f.learner, lessons[3])
	require.NoError(t, err)
	assert.Equal(t, 100, mp.CompletionPercentage)
	assert.False(t, mp.IsCompleted, "required assessment not yet passed")
	assert.Nil(t, mp.CompletedAt)

	f.repo.passed[progressKey{f.learner.UserID, f.moduleID}] = true
	require.NoError(t, f.svc.RecomputeModule(ctx, f.learner.UserID, f.moduleID))

	stored, err := f.svc.GetModuleProgress(ctx, f.learner, f.moduleID)
	require.NoError(t, err)
	assert.True(t, stored.IsCompleted)
	assert.Equal(t, 4, stored.CompletedLessons)
	require.NotNil(t, stored.CompletedAt)
	assert.Equal(t, f.clock, *stored.CompletedAt)
	assert.Len(t, f.audit.Actions("module_progress"), 1)

	// Completing again later keeps the original completion time and writes no new audit entry.
	first := *stored.CompletedAt
	f.clock = f.clock.Add(time.Hour)
	mp, err = f.svc.CompleteLesson(ctx, f.learner, lessons[0])
	require.NoError(t, err)
	assert.Equal(t, first, *mp.CompletedAt)
	assert.Len(t, f.audit.Actions("module_progress"), 1)
}

func TestStoredProgressFollowsModuleChanges(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, second := f.repo.addLesson(f.moduleID, f.sectionID, true), f.repo.addLesson(f.moduleID, f.sectionID, true)
	for _, id := range []uuid.UUID{first, second} {
		_, err := f.svc.CompleteLesson(ctx, f.learner, id)
		require.NoError(t, err)
	}
	mp, err := f.svc.GetModuleProgress(ctx, f.learner, f.moduleID)
	require.NoError(t, err)
	require.True(t, mp.IsCompleted)

	events, unsubscribe := f.hub.Subscribe(f.learner.UserID)
	defer unsubscribe()
	f.repo.addLesson(f.moduleID, f.sectionID, true)

	mp, err = f.svc.GetModuleProgress(ctx, f.learner, f.moduleID)
	require.NoError(t, err)
	assert.Equal(t, 66, mp.CompletionPercentage)
	assert.Equal(t, 2, mp.CompletedLessons)
	assert.Equal(t, 3, mp.TotalLessons)
	assert.False(t, mp.IsCompleted)
	assert.Nil(t, mp.CompletedAt)

	stored := f.repo.modules[progressKey{f.learner.UserID, f.moduleID}]
	assert.Equal(t, 66, stored.CompletionPercentage)
	assert.False(t, stored.IsCompleted)
	assert.Len(t, events, 1)

	list, err := f.svc.ListMyProgress(ctx, f.learner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 66, list[0].CompletionPercentage)
	assert.Len(t, events, 1, "unchanged progress is not stored again")
}

func TestNewRequiredAssessmentReopensModule(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.svc.CompleteLesson(ctx, f.learner, f.repo.addLesson(f.moduleID, f.sectionID, true))
	require.NoError(t, err)

	f.repo.passed[progressKey{f.learner.UserID, f.moduleID}] = false

	list, err := f.svc.ListMyProgress(ctx, f.learner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 100, list[0].CompletionPercentage)
	assert.False(t, list[0].IsCompleted)
	assert.False(t, f.repo.modules[progressKey{f.learner.UserID, f.moduleID}].IsCompleted)
}

func TestModuleWithoutLessonsIsFullyRead(t *testing.T) {
	f := newFixture()

	mp, err := f.svc.GetModuleProgress(context.Background(), f.learner, f.moduleID)
	require.NoError(t, err)
	assert.Equal(t, 100, mp.CompletionPercentage)
	assert.True(t, mp.IsCompleted)
	assert.Empty(t, f.repo.modules, "reads never store progress")
}

func TestInactiveLessonsAreNotCounted(t *testing.T) {
	f := newFixture()
	active := f.repo.addLesson(f.moduleID, f.sectionID, true)
	f.repo.addLesson(f.moduleID, f.sectionID, true)
	draft := f.repo.addLesson(f.moduleID, f.sectionID, false)

	mp, err := f.svc.CompleteLesson(context.Background(), f.learner, active)
	require.NoError(t, err)
	assert.Equal(t, 50, mp.CompletionPercentage)
	assert.Equal(t, 2, mp.TotalLessons)

	_, err = f.svc.CompleteLesson(context.Background(), f.learner, draft)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCompleteLessonRequiresView(t *testing.T) {
	f := newFixture()
	lessonID := f.repo.addLesson(f.moduleID, f.sectionID, true)
	stranger := &models.Principal{UserID: uuid.New(), RoleIDs: []uuid.UUID{uuid.New()}}

	_, err := f.svc.CompleteLesson(context.Background(), stranger, lessonID)
	assert.True(t, apperrors.IsAuthorization(err))

	_, err = f.svc.GetModuleProgress(context.Background(), stranger, f.moduleID)
	assert.True(t, apperrors.IsAuthorization(err))
	assert.Empty(t, f.repo.modules)
}

func TestRecomputePublishesToSubscribers(t *testing.T) {
	f := newFixture()
	lessonID := f.repo.addLesson(f.moduleID, f.sectionID, true)
	events, unsubscribe := f.hub.Subscribe(f.learner.UserID)
	defer unsubscribe()

	_, err := f.svc.CompleteLesson(context.Background(), f.learner, lessonID)
	require.NoError(t, err)

	select {
	case ev := <-events:
		assert.Equal(t, EventModuleProgress, ev.Type)
		assert.Equal(t, f.moduleID, ev.Progress.ModuleID)
		assert.Equal(t, 100, ev.Progress.CompletionPercentage)
	default:
		t.Fatal("expected a progress event")
	}
}

func TestListMyProgressHidesModulesNoLongerViewable(t *testing.T) {
	f := newFixture()
	hidden := uuid.New()
	f.store.AddModule(hidden)
	f.repo.modules[progressKey{f.learner.UserID, hidden}] = ModuleProgress{UserID: f.learner.UserID, ModuleID: hidden}
	f.repo.modules[progressKey{f.learner.UserID, f.moduleID}] = ModuleProgress{UserID: f.learner.UserID, ModuleID: f.moduleID}

	list, err := f.svc.ListMyProgress(context.Background(), f.learner)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.moduleID, list[0].ModuleID)
}

func TestExportModuleProgress(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.repo.learners[f.learner.UserID] = "ada"
	lessons := make([]uuid.UUID, 4)
	for i := range lessons {
		lessons[i] = f.repo.addLesson(f.moduleID, f.sectionID, true)
	}
	for _, id := range lessons[:3] {
		_, err := f.svc.CompleteLesson(ctx, f.learner, id)
		require.NoError(t, err)
	}

	_, err := f.svc.ExportModuleProgress(ctx, f.learner, f.moduleID)
	assert.True(t, apperrors.IsAuthorization(err))

	export, err := f.svc.ExportModuleProgress(ctx, f.admin, f.moduleID)
	require.NoError(t, err)
	assert.Equal(t, "working-at-height-progress.xlsx", export.Filename)

	book, err := excelize.OpenReader(bytes.NewReader(export.Content))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportColumns, rows[0])
	assert.Equal(t, "ada", rows[1][0])
	assert.Equal(t, "75", rows[1][4])
}
