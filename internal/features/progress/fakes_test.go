package progress

import (
	"context"
	"time"

	"go-lms/internal/common/apperrors"

	"github.com/google/uuid"
)

type progressKey struct {
	user, module uuid.UUID
}

type lessonKey struct {
	user, lesson uuid.UUID
}

// memoryProgress keeps lessons, lesson completions and module progress in maps.
type memoryProgress struct {
	lessons  map[uuid.UUID]LessonRef
	done     map[lessonKey]LessonProgress
	modules  map[progressKey]ModuleProgress
	passed   map[progressKey]bool
	learners map[uuid.UUID]string
	titles   map[uuid.UUID]string
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{
		lessons:  map[uuid.UUID]LessonRef{},
		done:     map[lessonKey]LessonProgress{},
		modules:  map[progressKey]ModuleProgress{},
		passed:   map[progressKey]bool{},
		learners: map[uuid.UUID]string{},
		titles:   map[uuid.UUID]string{},
	}
}

func (m *memoryProgress) addLesson(moduleID, sectionID uuid.UUID, active bool) uuid.UUID {
	id := uuid.New()
	m.lessons[id] = LessonRef{LessonID: id, SectionID: sectionID, ModuleID: moduleID, IsActive: active}
	return id
}

func (m *memoryProgress) LessonTarget(ctx context.Context, lessonID uuid.UUID) (*LessonRef, error) {
	ref, ok := m.lessons[lessonID]
	if !ok {
		return nil, apperrors.NotFound("lesson", lessonID)
	}
	return &ref, nil
}

func (m *memoryProgress) ModuleTitle(ctx context.Context, moduleID uuid.UUID) (string, error) {
	title, ok := m.titles[moduleID]
	if !ok {
		return "", apperrors.NotFound("module", moduleID)
	}
	return title, nil
}

func (m *memoryProgress) TouchLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error {
	key := lessonKey{userID, lessonID}
	lp := m.done[key]
	lp.UserID, lp.LessonID, lp.LastAccessedAt = userID, lessonID, at
	m.done[key] = lp
	return nil
}

func (m *memoryProgress) CompleteLesson(ctx context.Context, userID, lessonID uuid.UUID, at time.Time) error {
	key := lessonKey{userID, lessonID}
	lp := m.done[key]
	lp.UserID, lp.LessonID, lp.LastAccessedAt, lp.IsCompleted = userID, lessonID, at, true
	if lp.CompletedAt == nil {
		lp.CompletedAt = &at
	}
	m.done[key] = lp
	return nil
}

func (m *memoryProgress) LessonCounts(ctx context.Context, userID, moduleID uuid.UUID) (int, int, error) {
	completed, total := 0, 0
	for id, ref := range m.lessons {
		if ref.ModuleID != moduleID || !ref.IsActive {
			continue
		}
		total++
		if m.done[lessonKey{userID, id}].IsCompleted {
			completed++
		}
	}
	return completed, total, nil
}

func (m *memoryProgress) RequiredAssessmentsPassed(ctx context.Context, userID, moduleID uuid.UUID) (bool, error) {
	passed, ok := m.passed[progressKey{userID, moduleID}]
	return !ok || passed, nil
}

func (m *memoryProgress) FindModuleProgress(ctx context.Context, userID, moduleID uuid.UUID) (*ModuleProgress, error) {
	mp, ok := m.modules[progressKey{userID, moduleID}]
	if !ok {
		return nil, nil
	}
	return &mp, nil
}

func (m *memoryProgress) SaveModuleProgress(ctx context.Context, mp *ModuleProgress) error {
	m.modules[progressKey{mp.UserID, mp.ModuleID}] = *mp
	return nil
}

func (m *memoryProgress) ListByUser(ctx context.Context, userID uuid.UUID) ([]ModuleProgress, error) {
	out := []ModuleProgress{}
	for key, mp := range m.modules {
		if key.user == userID {
			out = append(out, mp)
		}
	}
	return out, nil
}

func (m *memoryProgress) ListByModule(ctx context.Context, moduleID uuid.UUID) ([]LearnerProgress, error) {
	out := []LearnerProgress{}
	for key, mp := range m.modules {
		if key.module == moduleID {
			out = append(out, LearnerProgress{ModuleProgress: mp, Username: m.learners[key.user]})
		}
	}
	return out, nil
}
