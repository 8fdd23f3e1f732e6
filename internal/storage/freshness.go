package storage

import (
	"os"
	"time"
)

// ShouldSkip is the freshness cache gate: it reports whether a transform
// step can be skipped because every output already exists and is at
// least as fresh as every input.
//
// Rules:
//   - any output missing → run
//   - any declared input missing → run (the transformer then surfaces a
//     clear missing-input error instead of silently keeping stale output)
//   - no declared inputs → skip iff all outputs exist (synthetic
//     generation is idempotent and never goes stale on its own)
//   - equal timestamps count as fresh; mtime resolution is coarse and
//     ties favor skipping
func ShouldSkip(outputPaths, inputPaths []string) bool {
	if len(outputPaths) == 0 {
		return false
	}

	var oldestOutput time.Time
	for i, path := range outputPaths {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if i == 0 || info.ModTime().Before(oldestOutput) {
			oldestOutput = info.ModTime()
		}
	}

	var newestInput time.Time
	for _, path := range inputPaths {
		info, err := os.Stat(path)
		if err != nil {
			return false
		}
		if info.ModTime().After(newestInput) {
			newestInput = info.ModTime()
		}
	}

	return !oldestOutput.Before(newestInput)
}
