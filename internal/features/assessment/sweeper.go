package assessment

import (
	"context"
	"time"

	"go-lms/internal/config"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically abandons attempts that were started but will never be submitted.
type Sweeper struct {
	attempts  AttemptService
	logger    *zap.Logger
	schedule  string
	scheduler *cron.Cron
}

func NewSweeper(cfg *config.Config, attempts AttemptService, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		attempts: attempts,
		logger:   logger.Named("sweeper"),
		schedule: cfg.AttemptSweepSchedule,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.scheduler = cron.New()
	if _, err := s.scheduler.AddFunc(s.schedule, s.Run); err != nil {
		return errors.Wrapf(err, "invalid attempt sweep schedule %q", s.schedule)
	}
	s.scheduler.Start()
	s.logger.Info("Attempt sweeper started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Sweeper) Stop() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	return nil
}

// Run performs one sweep.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.attempts.AbandonStale(ctx)
	if err != nil {
		s.logger.Error("Attempt sweep failed", zap.Int("abandoned", n), zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Abandoned stale attempts", zap.Int("count", n))
	}
}
