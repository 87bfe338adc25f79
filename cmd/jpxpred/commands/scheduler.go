package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/analysis"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/scheduler"
	"github.com/kta-cosmo-fj/jpx-stock-pred/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the job scheduler",
	Long: `Starts the scheduler daemon.

Registered jobs:
  analysis          - full ranking pipeline, weekdays after the Tokyo close
  universe_refresh  - constituent list re-scrape, Monday mornings

Example:
  go run ./cmd/jpxpred scheduler start`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the scheduler daemon",
	RunE:  runScheduler,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	d, err := initDeps()
	if err != nil {
		return err
	}

	store := analysis.NewStore()

	sched := scheduler.New(d.log)
	if err := sched.AddJob(jobs.NewAnalysisJob(d.pipeline, store, d.reporter, d.cfg.Schedule.AnalysisSpec, d.log)); err != nil {
		return fmt.Errorf("add analysis job: %w", err)
	}
	if err := sched.AddJob(jobs.NewUniverseJob(d.manager, d.cfg.Schedule.UniverseSpec, d.log)); err != nil {
		return fmt.Errorf("add universe job: %w", err)
	}

	sched.Start()

	fmt.Println("Scheduler started")
	fmt.Println("Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}
