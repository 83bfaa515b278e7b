// Package jobs runs periodic maintenance in the background.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// OrphanDeleter removes tasks whose owner no longer exists.
type OrphanDeleter interface {
	DeleteOrphanTasks(ctx context.Context) (int64, error)
}

// OrphanSweeper deletes tasks left behind by deleted users on a cron schedule.
type OrphanSweeper struct {
	tasks   OrphanDeleter
	cron    *cron.Cron
	timeout time.Duration
}

// NewOrphanSweeper validates spec (standard 5-field cron) and prepares the job.
func NewOrphanSweeper(tasks OrphanDeleter, spec string) (*OrphanSweeper, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	s := &OrphanSweeper{
		tasks:   tasks,
		cron:    cron.New(),
		timeout: time.Minute,
	}
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is done and any running sweep
// has finished.
func (s *OrphanSweeper) Run(ctx context.Context) {
	log.Info().Msg("Starting orphan task sweeper...")
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopping orphan task sweeper.")
}

// Sweep deletes orphaned tasks once.
func (s *OrphanSweeper) Sweep(ctx context.Context) (int64, error) {
	n, err := s.tasks.DeleteOrphanTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphan tasks: %w", err)
	}
	return n, nil
}

func (s *OrphanSweeper) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.Sweep(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: run failed")
		return
	}
	if n > 0 {
		log.Info().Int64("deleted", n).Msg("Sweeper: removed orphan tasks")
	}
}
