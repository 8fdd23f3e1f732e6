// Package jobs holds the scheduled pipeline jobs. Each job is one
// orchestrator batch over a fixed identifier list.
package jobs

import (
	"context"
	"fmt"

	"github.com/wenhao/stockmind/backend/internal/pipeline"
	"github.com/wenhao/stockmind/backend/internal/runlog"
)

// RefreshJob runs one step sequence over a list of identifiers on a
// cron schedule. The freshness gate keeps repeated runs cheap.
type RefreshJob struct {
	name         string
	schedule     string
	identifiers  []string
	steps        []pipeline.Step
	orchestrator *pipeline.Orchestrator
	runLog       *runlog.Writer
}

// NewSymbolRefreshJob refreshes statements, prices, ratios and scenario
// examples for the given symbols. Weekdays at 15:00, after TWSE close.
func NewSymbolRefreshJob(o *pipeline.Orchestrator, f *pipeline.Factory, runLog *runlog.Writer, symbols []string) *RefreshJob {
	return &RefreshJob{
		name:         "symbol_refresh",
		schedule:     "0 0 15 * * 1-5",
		identifiers:  symbols,
		steps:        f.SymbolSteps(),
		orchestrator: o,
		runLog:       runLog,
	}
}

// NewSocialRefreshJob refreshes board posts and sentiment examples.
// Every 6 hours; PTT has no market close.
func NewSocialRefreshJob(o *pipeline.Orchestrator, f *pipeline.Factory, runLog *runlog.Writer, boards []string) *RefreshJob {
	return &RefreshJob{
		name:         "social_refresh",
		schedule:     "0 0 */6 * * *",
		identifiers:  boards,
		steps:        f.BoardSteps(),
		orchestrator: o,
		runLog:       runLog,
	}
}

// NewNewsRefreshJob refreshes the news list. Hourly.
func NewNewsRefreshJob(o *pipeline.Orchestrator, f *pipeline.Factory, runLog *runlog.Writer, categories []string) *RefreshJob {
	return &RefreshJob{
		name:         "news_refresh",
		schedule:     "0 0 * * * *",
		identifiers:  categories,
		steps:        f.NewsSteps(),
		orchestrator: o,
		runLog:       runLog,
	}
}

// Name returns the job name
func (j *RefreshJob) Name() string { return j.name }

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string { return j.schedule }

// Run executes one batch and appends the run records
func (j *RefreshJob) Run(ctx context.Context) error {
	records := j.orchestrator.RunBatch(ctx, j.identifiers, j.steps)

	if j.runLog != nil {
		if err := j.runLog.Append(records); err != nil {
			return fmt.Errorf("append run log: %w", err)
		}
	}

	if pipeline.AnyFailed(records) {
		return fmt.Errorf("%s: %d of %d identifiers failed", j.name, countFailed(records), len(records))
	}
	return nil
}

func countFailed(records []runlog.RunRecord) int {
	n := 0
	for i := range records {
		if records[i].Failed() {
			n++
		}
	}
	return n
}
