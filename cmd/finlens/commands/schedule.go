package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/internal/scheduler"
	"github.com/finlens/backend/internal/scheduler/jobs"
)

// scheduleCmd runs the batch analysis job on its cron schedule.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the batch analysis scheduler",
	Long: `Run the scheduler daemon. The batch analysis job rebuilds every
entity's report on the configured cron schedule (SCHEDULE_SPEC) and
writes them as JSON files.

Example:
  go run ./cmd/finlens schedule
  go run ./cmd/finlens schedule --now`,
	RunE: runSchedule,
}

var scheduleNow bool

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().BoolVar(&scheduleNow, "now", false, "run the batch job immediately as well")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, profile, source, cleanup, err := bootstrap()
	if err != nil {
		return err
	}
	defer cleanup()

	builder := analysis.NewBuilder(source, profile, log)
	outputDir := filepath.Join(filepath.Dir(cfg.DataDir), "reports")
	job := jobs.NewAnalysisJob(builder, outputDir, cfg.ScheduleSpec, log)

	sched := scheduler.New(log)
	if err := sched.AddJob(job); err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	if scheduleNow {
		if err := sched.RunJob(job.Name()); err != nil {
			return err
		}
	}

	fmt.Printf("Scheduler running (%s). Press Ctrl+C to stop.\n", cfg.ScheduleSpec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	printJobHistory(sched, job.Name())
	return nil
}

// printJobHistory reports the last few runs on shutdown.
func printJobHistory(sched *scheduler.Scheduler, jobName string) {
	history, err := sched.GetJobHistory(jobName)
	if err != nil || len(history.Results) == 0 {
		return
	}

	fmt.Printf("%s: %d run(s), success rate %.0f%%\n",
		jobName, len(history.Results), history.GetSuccessRate()*100)
	for _, r := range history.GetLatestResults(5) {
		status := "ok"
		if !r.Success {
			status = "failed: " + r.Error
		}
		fmt.Printf("  %s  %s  %s\n",
			r.StartTime.Format(time.RFC3339), r.Duration.Round(time.Millisecond), status)
	}
}
