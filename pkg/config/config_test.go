package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPipelineYAML = `
storage:
  base_path: /var/lib/stockmind
  raw_subdir: raw
  processed_subdir: processed
sources:
  price:
    lookback_months: 3
    interval: day
  social:
    board: Stock
    pages: 2
  news:
    limit: 30
  politeness_delay_ms: 1500
`

func writePipelineFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPipeline(t *testing.T) {
	p, err := LoadPipeline(writePipelineFile(t, validPipelineYAML))
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stockmind", p.Storage.BasePath)
	assert.Equal(t, "raw", p.Storage.RawSubdir)
	assert.Equal(t, "processed", p.Storage.ProcessedSubdir)
	assert.Equal(t, 3, p.Sources.Price.LookbackMonths)
	assert.Equal(t, "Stock", p.Sources.Social.Board)
	assert.Equal(t, 30, p.Sources.News.Limit)
	assert.Equal(t, 1500, p.Sources.PolitenessDelayMS)
}

func TestLoadPipelineUnknownField(t *testing.T) {
	// 打錯欄位名稱要直接失敗，不能默默忽略
	yaml := validPipelineYAML + "\nstorge_typo: x\n"
	_, err := LoadPipeline(writePipelineFile(t, yaml))

	var cfgErr *ConfigurationError
	require.Error(t, err)
	assert.True(t, errors.As(err, &cfgErr))
}

func TestLoadPipelineMissingRequired(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing base_path",
			yaml: `
storage:
  raw_subdir: raw
  processed_subdir: processed
sources:
  price: {lookback_months: 3, interval: day}
  social: {board: Stock, pages: 2}
  news: {limit: 30}
  politeness_delay_ms: 1000
`,
		},
		{
			name: "raw equals processed",
			yaml: `
storage:
  base_path: /data
  raw_subdir: same
  processed_subdir: same
sources:
  price: {lookback_months: 3, interval: day}
  social: {board: Stock, pages: 2}
  news: {limit: 30}
  politeness_delay_ms: 1000
`,
		},
		{
			name: "bad interval",
			yaml: `
storage:
  base_path: /data
  raw_subdir: raw
  processed_subdir: processed
sources:
  price: {lookback_months: 3, interval: week}
  social: {board: Stock, pages: 2}
  news: {limit: 30}
  politeness_delay_ms: 1000
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPipeline(writePipelineFile(t, tt.yaml))

			var cfgErr *ConfigurationError
			require.Error(t, err)
			assert.True(t, errors.As(err, &cfgErr), "want ConfigurationError, got %T", err)
		})
	}
}

func TestLoadStorageRootOverride(t *testing.T) {
	path := writePipelineFile(t, validPipelineYAML)
	t.Setenv(EnvStorageRoot, "/mnt/relocated")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/mnt/relocated", cfg.Pipeline.Storage.BasePath)
	assert.True(t, cfg.StorageRootFromEnv)
}

func TestLoadStorageRootDefault(t *testing.T) {
	path := writePipelineFile(t, validPipelineYAML)
	t.Setenv(EnvStorageRoot, "")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/stockmind", cfg.Pipeline.Storage.BasePath)
	assert.False(t, cfg.StorageRootFromEnv)
}
