package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMomentumDeadZone(t *testing.T) {
	tests := []struct {
		name string
		row  PriceRow
		want string
	}{
		{"up beyond dead zone", PriceRow{Open: 100, Close: 102}, "偏多"},
		{"down beyond dead zone", PriceRow{Open: 100, Close: 98}, "偏空"},
		{"flat", PriceRow{Open: 100, Close: 100}, "中性"},
		{"up inside dead zone", PriceRow{Open: 100, Close: 100.4}, "中性"},
		{"down inside dead zone", PriceRow{Open: 100, Close: 99.6}, "中性"},
		{"exactly at boundary stays neutral", PriceRow{Open: 100, Close: 100.5}, "中性"},
		{"zero open never divides", PriceRow{Open: 0, Close: 50}, "中性"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Momentum(tt.row))
		})
	}
}

func TestGenerateScenarios(t *testing.T) {
	rows := []PriceRow{
		{Date: "2024-08-01", Open: 948, High: 959, Low: 940, Close: 945, Volume: 33016898},
	}

	examples := GenerateScenarios("2330", rows)
	require.Len(t, examples, 1)

	ex := examples[0]
	assert.Contains(t, ex.Prompt, "2330")
	assert.Contains(t, ex.Prompt, "2024-08-01")

	// Factual statement of the day's prices
	assert.Contains(t, ex.Completion, "開盤價 948 元")
	assert.Contains(t, ex.Completion, "最高 959 元")
	assert.Contains(t, ex.Completion, "收盤價 945 元")
	assert.Contains(t, ex.Completion, "33016898")

	// Range and rule-based direction: (945-948)/948 = -0.32%, inside dead zone
	assert.Contains(t, ex.Completion, "振幅 19 元")
	assert.Contains(t, ex.Completion, "走勢中性")
}

func TestGenerateScenariosDeterministic(t *testing.T) {
	rows := []PriceRow{
		{Date: "2024-08-01", Open: 100, High: 103, Low: 99, Close: 102, Volume: 1000},
		{Date: "2024-08-02", Open: 102, High: 102.5, Low: 100, Close: 100.5, Volume: 900},
	}

	a := GenerateScenarios("2317", rows)
	b := GenerateScenarios("2317", rows)
	assert.Equal(t, a, b)
}

func TestParsePriceCSV(t *testing.T) {
	rows := [][]string{
		PriceCSVHeader(),
		{"2024-08-01", "948", "959", "940", "945", "33016898"},
		{"2024-08-02", "940", "951", "938", "950", "28500123"},
	}

	parsed, err := ParsePriceCSV(rows)
	require.NoError(t, err)
	require.Len(t, parsed, 2)

	assert.Equal(t, "2024-08-01", parsed[0].Date)
	assert.Equal(t, 948.0, parsed[0].Open)
	assert.Equal(t, int64(33016898), parsed[0].Volume)
}

func TestParsePriceCSVCorruptCell(t *testing.T) {
	rows := [][]string{
		PriceCSVHeader(),
		{"2024-08-01", "948", "959", "940", "945", "33016898"},
		{"2024-08-02", "not-a-number", "951", "938", "950", "28500123"},
	}

	_, err := ParsePriceCSV(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad open")
	assert.Contains(t, err.Error(), "not-a-number")
}

func TestParsePriceCSVBadHeader(t *testing.T) {
	_, err := ParsePriceCSV([][]string{{"日期", "開盤"}})
	assert.Error(t, err)
}

func TestParsePriceCSVNoData(t *testing.T) {
	_, err := ParsePriceCSV([][]string{PriceCSVHeader()})
	assert.Error(t, err)
}
