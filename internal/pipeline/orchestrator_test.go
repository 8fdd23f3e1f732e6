package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenhao/stockmind/backend/internal/artifact"
	"github.com/wenhao/stockmind/backend/internal/runlog"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// fixedPaths adapts a static path list to the Step declaration shape.
func fixedPaths(paths ...string) func(string) ([]string, error) {
	return func(string) ([]string, error) {
		return paths, nil
	}
}

func TestRunBatchAllSucceed(t *testing.T) {
	var ran []string
	steps := []Step{
		{
			Name:    "fetch",
			Kind:    StepFetch,
			Outputs: fixedPaths(),
			Run: func(_ context.Context, id string) error {
				ran = append(ran, id)
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(context.Background(), []string{"2330", "2317"}, steps)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"2330", "2317"}, ran)
	for _, rec := range records {
		assert.Equal(t, runlog.StateDone, rec.State)
	}
	assert.False(t, AnyFailed(records))
}

// One identifier failing must not stop the others.
func TestRunBatchFailureIsolation(t *testing.T) {
	var transformed []string
	steps := []Step{
		{
			Name:    "fetch",
			Kind:    StepFetch,
			Outputs: fixedPaths(),
			Run: func(_ context.Context, id string) error {
				if id == "2317" {
					return &artifact.FetchError{
						Source:     "twse",
						Identifier: id,
						Reason:     artifact.FetchNetwork,
						Err:        errors.New("connection refused"),
					}
				}
				return nil
			},
		},
		{
			Name:    "transform",
			Kind:    StepTransform,
			Outputs: fixedPaths(filepath.Join(t.TempDir(), "never-written.csv")),
			Run: func(_ context.Context, id string) error {
				transformed = append(transformed, id)
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(context.Background(), []string{"2330", "2317", "2454"}, steps)

	require.Len(t, records, 3)
	assert.Equal(t, runlog.StateDone, records[0].State)
	assert.Equal(t, runlog.StateFetchFailed, records[1].State)
	assert.Equal(t, runlog.StateDone, records[2].State)

	// The failed identifier never reaches its transform step
	assert.Equal(t, []string{"2330", "2454"}, transformed)

	// Step results carry the error message
	require.Len(t, records[1].Steps, 1)
	assert.Equal(t, runlog.StatusFailed, records[1].Steps[0].Status)
	assert.Contains(t, records[1].Steps[0].Error, "connection refused")

	assert.True(t, AnyFailed(records))
}

func TestRunBatchTransformFailureState(t *testing.T) {
	steps := []Step{
		{
			Name:    "transform",
			Kind:    StepTransform,
			Outputs: fixedPaths(filepath.Join(t.TempDir(), "out.csv")),
			Run: func(_ context.Context, _ string) error {
				return errors.New("bad data")
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(context.Background(), []string{"2330"}, steps)

	require.Len(t, records, 1)
	assert.Equal(t, runlog.StateTransformFailed, records[0].State)
}

// Cancellation is honored between identifiers: the one in flight
// finishes, the rest never start.
func TestRunBatchCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var ran []string
	steps := []Step{
		{
			Name:    "fetch",
			Kind:    StepFetch,
			Outputs: fixedPaths(),
			Run: func(_ context.Context, id string) error {
				ran = append(ran, id)
				cancel()
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(ctx, []string{"2330", "2317", "2454"}, steps)

	require.Len(t, records, 1)
	assert.Equal(t, "2330", records[0].Identifier)
	assert.Equal(t, runlog.StateDone, records[0].State)
	assert.Equal(t, []string{"2330"}, ran)
}

func TestRunBatchCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(ctx, []string{"2330"}, nil)

	assert.Empty(t, records)
}

// A transform whose outputs are fresher than its inputs is recorded as
// skipped and its Run is never invoked.
func TestRunBatchTransformSkipped(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")

	require.NoError(t, os.WriteFile(input, []byte("a\n"), 0o644))
	require.NoError(t, os.WriteFile(output, []byte("b\n"), 0o644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(input, old, old))

	runs := 0
	steps := []Step{
		{
			Name:    "transform",
			Kind:    StepTransform,
			Inputs:  fixedPaths(input),
			Outputs: fixedPaths(output),
			Run: func(_ context.Context, _ string) error {
				runs++
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(context.Background(), []string{"2330"}, steps)

	require.Len(t, records, 1)
	assert.Equal(t, runlog.StateDone, records[0].State)
	require.Len(t, records[0].Steps, 1)
	assert.Equal(t, runlog.StatusSkipped, records[0].Steps[0].Status)
	assert.Zero(t, runs)
}

// Fetch steps are never gated, even when their outputs already exist.
func TestRunBatchFetchAlwaysRuns(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "raw.csv")
	require.NoError(t, os.WriteFile(output, []byte("stale\n"), 0o644))

	runs := 0
	steps := []Step{
		{
			Name:    "fetch",
			Kind:    StepFetch,
			Outputs: fixedPaths(output),
			Run: func(_ context.Context, _ string) error {
				runs++
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	o.RunBatch(context.Background(), []string{"2330"}, steps)

	assert.Equal(t, 1, runs)
}

// A second pass with unchanged inputs skips the transform and leaves
// the output byte-identical.
func TestRunBatchIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.csv")
	output := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(input, []byte("source\n"), 0o644))

	runs := 0
	steps := []Step{
		{
			Name:    "transform",
			Kind:    StepTransform,
			Inputs:  fixedPaths(input),
			Outputs: fixedPaths(output),
			Run: func(_ context.Context, _ string) error {
				runs++
				return os.WriteFile(output, []byte("derived\n"), 0o644)
			},
		},
	}

	o := NewOrchestrator(logger.Nop())

	first := o.RunBatch(context.Background(), []string{"2330"}, steps)
	require.False(t, AnyFailed(first))
	require.Equal(t, 1, runs)
	before, err := os.ReadFile(output)
	require.NoError(t, err)

	second := o.RunBatch(context.Background(), []string{"2330"}, steps)
	require.False(t, AnyFailed(second))
	assert.Equal(t, 1, runs)
	assert.Equal(t, runlog.StatusSkipped, second[0].Steps[0].Status)

	after, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRunBatchOutputResolutionFailure(t *testing.T) {
	steps := []Step{
		{
			Name: "transform",
			Kind: StepTransform,
			Outputs: func(id string) ([]string, error) {
				return nil, &artifact.InvalidIdentifierError{Identifier: id, Reason: "contains path separator"}
			},
			Run: func(_ context.Context, _ string) error {
				t.Fatal("Run must not be called when outputs fail to resolve")
				return nil
			},
		},
	}

	o := NewOrchestrator(logger.Nop())
	records := o.RunBatch(context.Background(), []string{"../etc"}, steps)

	require.Len(t, records, 1)
	assert.Equal(t, runlog.StateTransformFailed, records[0].State)
}
