package jobs

import (
	"context"
	"fmt"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/universe"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// UniverseJob refreshes the ticker universe cache on schedule, so the
// daily analysis runs never pay the scrape cost themselves.
type UniverseJob struct {
	manager  *universe.Manager
	schedule string
	logger   *logger.Logger
}

// NewUniverseJob creates a new universe refresh job
func NewUniverseJob(manager *universe.Manager, schedule string, log *logger.Logger) *UniverseJob {
	return &UniverseJob{
		manager:  manager,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *UniverseJob) Name() string {
	return "universe_refresh"
}

// Schedule returns the cron schedule
func (j *UniverseJob) Schedule() string {
	return j.schedule
}

// Run refreshes the universe cache
func (j *UniverseJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled universe refresh")

	tickers, err := j.manager.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("universe refresh: %w", err)
	}

	j.logger.WithField("tickers", len(tickers)).Info("Universe refreshed")
	return nil
}
