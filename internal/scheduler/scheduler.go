// Package scheduler runs the tracking batch on a cron schedule.
package scheduler

import (
	"sync"

	"github.com/robfig/cron/v3"

	"igtracker/pkg/logger"
)

// BatchFunc is a single scheduled tracking run
type BatchFunc func() error

// Scheduler handles periodic batch runs
type Scheduler struct {
	run    BatchFunc
	cron   *cron.Cron
	logger logger.Logger

	mu      sync.Mutex
	running bool
}

// New creates a new batch scheduler
func New(run BatchFunc, log logger.Logger) *Scheduler {
	return &Scheduler{
		run:    run,
		cron:   cron.New(),
		logger: log,
	}
}

// Start begins scheduled runs. An empty schedule defaults to once a day
// at 06:00.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = "0 6 * * *"
	}

	_, err := s.cron.AddFunc(schedule, s.runBatch)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.InfoWithFields("batch scheduler started", map[string]interface{}{
		"schedule": schedule,
	})

	return nil
}

// Stop stops the scheduler. Does not interrupt a run in progress.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("batch scheduler stopped")
}

// RunNow triggers an immediate batch run
func (s *Scheduler) RunNow() {
	go s.runBatch()
}

// runBatch skips the tick when the previous run is still going, so a slow
// scraping job never stacks concurrent batches.
func (s *Scheduler) runBatch() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("previous batch still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if err := s.run(); err != nil {
		s.logger.WithError(err).Error("Scheduled batch failed")
	}
}
