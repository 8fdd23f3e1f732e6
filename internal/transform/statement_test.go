package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"673,510", 673510, true},
		{"1,234,567.89", 1234567.89, true},
		{"-219,634", -219634, true},
		{"100.00", 100, true},
		{"-", 0, true},   // textual dash means zero
		{"--", 0, true},
		{"—", 0, true},
		{"", 0, true},
		{" 42 ", 42, true},
		{"n/a", 0, false},
		{"abc", 0, false},
	}

	for _, tt := range tests {
		got, ok := CleanNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, "CleanNumber(%q) ok", tt.in)
		assert.Equal(t, tt.want, got, "CleanNumber(%q)", tt.in)
	}
}

func TestParseStatementCSVNested(t *testing.T) {
	rows := [][]string{
		{"項目", "2024Q2_amount", "2024Q2_percent", "2024Q1_amount", "2024Q1_percent"},
		{"營業收入", "673,510", "100.00", "592,644", "100.00"},
		{"營業毛利", "358,132", "53.17", "-", "-"},
	}

	s, err := ParseStatementCSV(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024Q2", "2024Q1"}, s.Periods)

	v, ok := s.Amount("營業收入", "2024Q2")
	require.True(t, ok)
	assert.Equal(t, 673510.0, v)

	// Dash cell cleaned to zero, still present
	v, ok = s.Amount("營業毛利", "2024Q1")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)

	_, ok = s.Amount("不存在的項目", "2024Q2")
	assert.False(t, ok)
}

func TestParseStatementCSVFlat(t *testing.T) {
	rows := [][]string{
		{"項目", "2024Q2", "2024Q1"},
		{"營業活動之現金流量", "377,665", "436,311"},
	}

	s, err := ParseStatementCSV(rows)
	require.NoError(t, err)

	assert.Equal(t, []string{"2024Q2", "2024Q1"}, s.Periods)
	v, ok := s.Amount("營業活動之現金流量", "2024Q1")
	require.True(t, ok)
	assert.Equal(t, 436311.0, v)
}

func TestParseStatementCSVEmpty(t *testing.T) {
	_, err := ParseStatementCSV(nil)
	assert.Error(t, err)

	_, err = ParseStatementCSV([][]string{{"項目"}})
	assert.Error(t, err)
}
