package assessment

import (
	"context"
	"testing"
	"time"

	"go-lms/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweeperRejectsInvalidSchedule(t *testing.T) {
	s := NewSweeper(&config.Config{AttemptSweepSchedule: "whenever"}, nil, zap.NewNop())
	assert.Error(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop())
}

func TestSweeperRunAbandonsStaleAttempts(t *testing.T) {
	f := newFixture()
	a, _ := f.quiz(t, CreateAssessmentRequest{TimeLimitMinutes: 5})
	_, err := f.attemptSvc.StartAttempt(context.Background(), f.learner(), a.ID)
	require.NoError(t, err)
	f.advance(10 * time.Minute)

	s := NewSweeper(&config.Config{AttemptSweepSchedule: "@every 1h"}, f.attemptSvc, zap.NewNop())
	s.Run()
	assert.Equal(t, 1, f.attempts.byStatus(AttemptAbandoned))

	require.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop())
}
