package services

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const refreshJobTimeout = 30 * time.Second

// Refresher repeats the active weather query
type Refresher interface {
	Online() bool
	Refresh(ctx context.Context) error
}

// SchedulerService periodically refreshes the displayed weather while online
type SchedulerService struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	interval  time.Duration
	logger    *zerolog.Logger
}

func NewSchedulerService(refresher Refresher, interval time.Duration, logger *zerolog.Logger) *SchedulerService {
	return &SchedulerService{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the refresh job; a non-positive interval disables it
func (s *SchedulerService) Start() error {
	if s.interval <= 0 {
		s.logger.Info().Msg("Periodic refresh disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
		defer cancel()
		s.RunRefresh(ctx)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info().Dur("interval", s.interval).Msg("Started periodic refresh")
	return nil
}

// RunRefresh is one tick of the job; it does nothing while offline
func (s *SchedulerService) RunRefresh(ctx context.Context) {
	if !s.refresher.Online() {
		s.logger.Debug().Msg("Skipping refresh while offline")
		return
	}

	if err := s.refresher.Refresh(ctx); err != nil {
		if errors.Is(err, ErrNetwork) {
			s.logger.Warn().Err(err).Msg("Periodic refresh returned partial data")
			return
		}
		s.logger.Error().Err(err).Msg("Periodic refresh failed")
		return
	}
	s.logger.Debug().Msg("Periodic refresh completed")
}

// Jobs returns the number of scheduled jobs
func (s *SchedulerService) Jobs() int {
	return s.scheduler.Len()
}

func (s *SchedulerService) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
