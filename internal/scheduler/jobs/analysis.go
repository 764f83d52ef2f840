// Package jobs holds the scheduled job implementations.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/finlens/backend/internal/analysis"
	"github.com/finlens/backend/pkg/logger"
)

// AnalysisJob rebuilds every entity's report on a schedule and writes
// the results as JSON next to the data directory.
type AnalysisJob struct {
	builder   *analysis.Builder
	outputDir string
	schedule  string
	logger    *logger.Logger
}

// NewAnalysisJob creates the batch analysis job.
func NewAnalysisJob(builder *analysis.Builder, outputDir, schedule string, log *logger.Logger) *AnalysisJob {
	return &AnalysisJob{
		builder:   builder,
		outputDir: outputDir,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name.
func (j *AnalysisJob) Name() string {
	return "batch_analysis"
}

// Schedule returns the cron schedule expression.
func (j *AnalysisJob) Schedule() string {
	return j.schedule
}

// Run builds every report and persists each one as
// <output>/<entity>_<period>_report.json.
func (j *AnalysisJob) Run(ctx context.Context) error {
	reports, err := j.builder.BuildAll(ctx)
	if err != nil {
		return fmt.Errorf("batch analysis: %w", err)
	}
	if len(reports) == 0 {
		j.logger.Warn("Batch analysis produced no reports")
		return nil
	}

	if err := os.MkdirAll(j.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, report := range reports {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report %s: %w", report.EntityID, err)
		}
		name := fmt.Sprintf("%s_%s_report.json", report.EntityID, report.Period)
		if err := os.WriteFile(filepath.Join(j.outputDir, name), data, 0o644); err != nil {
			return fmt.Errorf("write report %s: %w", name, err)
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"reports": len(reports),
		"output":  j.outputDir,
	}).Info("Batch analysis reports written")

	return nil
}
