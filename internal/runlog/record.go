// Package runlog records one entry per orchestrator pass per identifier.
// Records are observability only; correctness never depends on them.
package runlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Step statuses as reported per identifier per step.
const (
	StatusSucceeded = "succeeded"
	StatusSkipped   = "skipped" // cache hit
	StatusFailed    = "failed"
)

// Identifier states (terminal states of the per-identifier state machine).
const (
	StateDone            = "done"
	StateFetchFailed     = "fetch_failed"
	StateTransformFailed = "transform_failed"
)

// StepResult is the outcome of one step for one identifier
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RunRecord is one orchestrator pass over one identifier
type RunRecord struct {
	Identifier string       `json:"identifier"`
	State      string       `json:"state"`
	Steps      []StepResult `json:"steps"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
}

// Failed reports whether the identifier ended in a failure state.
func (r *RunRecord) Failed() bool {
	return r.State != StateDone
}

// Counts returns (succeeded, skipped, failed) step totals.
func (r *RunRecord) Counts() (succeeded, skipped, failed int) {
	for _, s := range r.Steps {
		switch s.Status {
		case StatusSucceeded:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return
}

// Writer appends run records to a JSONL file under the storage root.
type Writer struct {
	path string
}

// NewWriter creates a Writer for {basePath}/runs.jsonl.
func NewWriter(basePath string) *Writer {
	return &Writer{path: filepath.Join(basePath, "runs.jsonl")}
}

// Append appends records, one JSON object per line.
func (w *Writer) Append(records []RunRecord) error {
	if len(records) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode run record: %w", err)
		}
	}
	return nil
}

// Path returns the run log location.
func (w *Writer) Path() string {
	return w.path
}
