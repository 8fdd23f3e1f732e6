package runlog

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecordFailed(t *testing.T) {
	tests := []struct {
		state  string
		failed bool
	}{
		{StateDone, false},
		{StateFetchFailed, true},
		{StateTransformFailed, true},
	}

	for _, tt := range tests {
		rec := RunRecord{State: tt.state}
		assert.Equal(t, tt.failed, rec.Failed(), tt.state)
	}
}

func TestRunRecordCounts(t *testing.T) {
	rec := RunRecord{
		Steps: []StepResult{
			{Step: "fetch_prices", Status: StatusSucceeded},
			{Step: "derive_ratios", Status: StatusSkipped},
			{Step: "derive_scenarios", Status: StatusFailed, Error: "boom"},
		},
	}

	succeeded, skipped, failed := rec.Counts()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 1, failed)
}

func TestWriterAppend(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	now := time.Now()
	records := []RunRecord{
		{Identifier: "2330", State: StateDone, StartedAt: now, FinishedAt: now},
		{Identifier: "2317", State: StateFetchFailed, StartedAt: now, FinishedAt: now},
	}
	require.NoError(t, w.Append(records))

	// Second append accumulates, one object per line
	require.NoError(t, w.Append(records[:1]))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], `"identifier":"2330"`)
	assert.Contains(t, lines[1], `"fetch_failed"`)
}

func TestWriterAppendEmptyIsNoop(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	require.NoError(t, w.Append(nil))

	_, err := os.Stat(w.Path())
	assert.True(t, os.IsNotExist(err))
}
