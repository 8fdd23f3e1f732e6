// Package pipeline sequences fetch and transform steps per identifier,
// guarded by the freshness cache gate, with per-identifier failure
// isolation.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/wenhao/stockmind/backend/internal/artifact"
	"github.com/wenhao/stockmind/backend/internal/runlog"
	"github.com/wenhao/stockmind/backend/internal/storage"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// StepKind separates fetch steps (always run, network I/O) from
// transform steps (pure, gated by freshness).
type StepKind int

const (
	StepFetch StepKind = iota
	StepTransform
)

// Step is one stage of the pipeline for one identifier. Inputs and
// Outputs declare artifact paths for the cache gate; Run does the work.
type Step struct {
	Name string
	Kind StepKind

	// Inputs returns the declared input artifact paths (nil for fetch
	// steps and synthetic transformers).
	Inputs func(identifier string) ([]string, error)

	// Outputs returns the declared output artifact paths.
	Outputs func(identifier string) ([]string, error)

	Run func(ctx context.Context, identifier string) error
}

// Orchestrator runs batches of identifiers through a step sequence
// ⭐ SSOT: 批次執行順序與失敗隔離只在這裡處理
type Orchestrator struct {
	logger *logger.Logger
}

// NewOrchestrator creates a new Orchestrator
func NewOrchestrator(log *logger.Logger) *Orchestrator {
	return &Orchestrator{logger: log.WithField("module", "pipeline")}
}

// RunBatch processes each identifier through the declared steps in
// order. A failed step ends that identifier only; the batch continues
// with the next one. Cancellation is honored between identifiers; no
// mid-identifier rollback is attempted.
func (o *Orchestrator) RunBatch(ctx context.Context, identifiers []string, steps []Step) []runlog.RunRecord {
	records := make([]runlog.RunRecord, 0, len(identifiers))

	for _, id := range identifiers {
		// Cancellation checked at identifier boundaries only
		if ctx.Err() != nil {
			o.logger.WithField("identifier", id).Warn("Batch cancelled before identifier")
			break
		}

		records = append(records, o.runOne(ctx, id, steps))
	}

	o.logSummary(records)
	return records
}

// runOne drives one identifier through the state machine:
// pending → fetching → fetched | fetch_failed
// fetched → transforming → done | transform_failed
func (o *Orchestrator) runOne(ctx context.Context, identifier string, steps []Step) runlog.RunRecord {
	record := runlog.RunRecord{
		Identifier: identifier,
		StartedAt:  time.Now(),
	}
	log := o.logger.WithField("identifier", identifier)

	for _, step := range steps {
		result := o.runStep(ctx, identifier, step, log)
		record.Steps = append(record.Steps, result)

		if result.Status == runlog.StatusFailed {
			if step.Kind == StepFetch {
				record.State = runlog.StateFetchFailed
			} else {
				record.State = runlog.StateTransformFailed
			}
			record.FinishedAt = time.Now()
			return record
		}
	}

	record.State = runlog.StateDone
	record.FinishedAt = time.Now()
	return record
}

// runStep executes one step, consulting the cache gate for transforms
func (o *Orchestrator) runStep(ctx context.Context, identifier string, step Step, log *logger.Logger) runlog.StepResult {
	stepLog := log.WithField("step", step.Name)

	outputs, err := step.Outputs(identifier)
	if err != nil {
		// Typically an InvalidIdentifierError from the resolver
		stepLog.WithError(err).Error("Step failed to resolve outputs")
		return runlog.StepResult{Step: step.Name, Status: runlog.StatusFailed, Error: err.Error()}
	}

	var inputs []string
	if step.Inputs != nil {
		inputs, err = step.Inputs(identifier)
		if err != nil {
			stepLog.WithError(err).Error("Step failed to resolve inputs")
			return runlog.StepResult{Step: step.Name, Status: runlog.StatusFailed, Error: err.Error()}
		}
	}

	// Fetch steps always run: upstream sources can change without any
	// local artifact changing.
	if step.Kind == StepTransform && storage.ShouldSkip(outputs, inputs) {
		stepLog.Info("Step skipped (outputs fresh)")
		return runlog.StepResult{Step: step.Name, Status: runlog.StatusSkipped}
	}

	if err := step.Run(ctx, identifier); err != nil {
		logStepFailure(stepLog, err)
		return runlog.StepResult{Step: step.Name, Status: runlog.StatusFailed, Error: err.Error()}
	}

	stepLog.Info("Step succeeded")
	return runlog.StepResult{Step: step.Name, Status: runlog.StatusSucceeded}
}

// logStepFailure logs with the taxonomy field when the error is typed
func logStepFailure(log *logger.Logger, err error) {
	var fetchErr *artifact.FetchError
	var missingErr *artifact.MissingInputError
	var invalidErr *artifact.InvalidIdentifierError

	switch {
	case errors.As(err, &fetchErr):
		log.WithError(err).WithField("reason", string(fetchErr.Reason)).Error("Fetch step failed")
	case errors.As(err, &missingErr):
		log.WithError(err).WithField("missing_path", missingErr.Path).Error("Transform input missing")
	case errors.As(err, &invalidErr):
		log.WithError(err).Error("Invalid identifier")
	default:
		log.WithError(err).Error("Step failed")
	}
}

// logSummary emits the final per-batch count line
func (o *Orchestrator) logSummary(records []runlog.RunRecord) {
	succeeded, failed := 0, 0
	for i := range records {
		if records[i].Failed() {
			failed++
		} else {
			succeeded++
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"total":     len(records),
		"succeeded": succeeded,
		"failed":    failed,
	}).Info("Batch completed")
}

// AnyFailed reports whether any identifier ended in a failure state.
// Drives the non-zero process exit for cron/CI callers.
func AnyFailed(records []runlog.RunRecord) bool {
	for i := range records {
		if records[i].Failed() {
			return true
		}
	}
	return false
}
