// Package scheduler runs the periodic difficulty reevaluation job.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordpace/internal/usecase"
)

// Scheduler periodically sweeps all active users through the batch
// difficulty pass.
type Scheduler struct {
	scheduler *gocron.Scheduler
	reeval    usecase.ReevaluateUsecase
	threshold float64
	interval  time.Duration
	logger    *logrus.Logger
}

// New builds a scheduler; interval <= 0 disables it.
func New(reeval usecase.ReevaluateUsecase, threshold float64, interval time.Duration, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		reeval:    reeval,
		threshold: threshold,
		interval:  interval,
		logger:    logger,
	}
}

// Start begins the periodic job in the background.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("reevaluation scheduler disabled")
		return nil
	}
	if _, err := s.scheduler.Every(s.interval).Do(s.run); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.logger.Infof("reevaluation scheduler running every %s", s.interval)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	applied, err := s.reeval.ReevaluateAll(ctx, s.threshold)
	if err != nil {
		s.logger.WithError(err).Error("batch reevaluation failed")
	}
	if len(applied) > 0 {
		s.logger.WithField("adjustments", len(applied)).Info("batch reevaluation applied schedule corrections")
	}
}
