package jobs

import (
	"context"
	"fmt"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/report"
	"github.com/kta-cosmo-fj/jpx-stock-pred/pkg/logger"
)

// Runner executes a full analysis pass. Satisfied by *analysis.Pipeline.
type Runner interface {
	Run(ctx context.Context) (*analysis.Result, error)
}

// AnalysisJob runs the full ranking pipeline on schedule and publishes
// the result to the store and the HTML report.
type AnalysisJob struct {
	runner   Runner
	store    *analysis.Store
	reporter *report.Writer
	schedule string
	logger   *logger.Logger
}

// NewAnalysisJob creates a new analysis job
func NewAnalysisJob(runner Runner, store *analysis.Store, reporter *report.Writer, schedule string, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		runner:   runner,
		store:    store,
		reporter: reporter,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *AnalysisJob) Name() string {
	return "analysis"
}

// Schedule returns the cron schedule
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run executes the analysis pipeline
func (j *AnalysisJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled analysis")

	result, err := j.runner.Run(ctx)
	if err != nil {
		return fmt.Errorf("analysis run: %w", err)
	}

	j.store.Set(result)

	path, err := j.reporter.Write(result)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"ranked": len(result.Scores),
		"failed": result.Failed,
		"report": path,
	}).Info("Scheduled analysis completed")

	return nil
}
