package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raw", "stock_data", "2330.csv")

	require.NoError(t, WriteFile(path, []byte("hello")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestWriteFileLeavesNoTempOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.csv")

	require.NoError(t, WriteFile(path, []byte("x")))
	require.NoError(t, WriteFile(path, []byte("y"))) // overwrite in place

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.csv", entries[0].Name())

	data, _ := os.ReadFile(path)
	assert.Equal(t, "y", string(data))
}

func TestWriteCSVHasBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")

	rows := [][]string{
		{"項目", "2024Q1_amount", "2024Q1_percent"},
		{"營業收入", "1000", "100.0"},
	}
	require.NoError(t, WriteCSV(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"), "CSV must start with UTF-8 BOM")

	got, err := ReadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}

func TestWriteJSONLKeepsChinese(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.jsonl")

	type example struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
	}
	records := []example{
		{Prompt: "台積電今日股價分析", Completion: "偏多"},
		{Prompt: "大盤走勢", Completion: "中性"},
	}
	require.NoError(t, WriteJSONL(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Chinese text must be written verbatim, not \uXXXX escaped
	assert.Contains(t, string(data), "台積電今日股價分析")
	assert.NotContains(t, string(data), `\u`)
	assert.Equal(t, 2, strings.Count(string(data), "\n"), "one object per line")

	got, err := ReadJSONL[example](path)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}
