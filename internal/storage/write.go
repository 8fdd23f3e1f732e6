package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// utf8BOM is prepended to CSV artifacts so Excel opens 中文 correctly.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteFile writes data to path atomically: temp file in the same
// directory, then rename. A crashed fetch must never leave a partial
// file that the freshness gate would treat as fresh.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteCSV writes rows as a UTF-8-with-BOM CSV artifact.
func WriteCSV(path string, rows [][]string) error {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}

	return WriteFile(path, buf.Bytes())
}

// ReadCSV reads a CSV artifact, tolerating a leading BOM.
func ReadCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1 // statement tables are ragged
	return r.ReadAll()
}

// WriteJSONL writes records as newline-delimited JSON. Chinese text is
// written as-is, not ASCII-escaped.
func WriteJSONL[T any](path string, records []T) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encode jsonl record: %w", err)
		}
	}

	return WriteFile(path, buf.Bytes())
}

// ReadJSONL reads newline-delimited JSON records from path.
func ReadJSONL[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var out []T
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var rec T
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode jsonl record: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
