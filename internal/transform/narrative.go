package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// TrainingExample is one prompt/completion pair of a derived training
// artifact. Written as JSONL, one object per line, Chinese kept verbatim.
type TrainingExample struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// PriceRow is one parsed row of a raw price-series artifact.
type PriceRow struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// priceCSVHeader is the raw price artifact column layout.
var priceCSVHeader = []string{"date", "open", "high", "low", "close", "volume"}

// PriceCSVHeader returns a copy of the raw price artifact header.
func PriceCSVHeader() []string {
	return append([]string(nil), priceCSVHeader...)
}

// ParsePriceCSV parses a raw price-series artifact.
func ParsePriceCSV(rows [][]string) ([]PriceRow, error) {
	if len(rows) < 1 {
		return nil, fmt.Errorf("price series is empty")
	}
	if len(rows[0]) < len(priceCSVHeader) || rows[0][0] != "date" {
		return nil, fmt.Errorf("unexpected price series header: %v", rows[0])
	}

	var out []PriceRow
	for i, row := range rows[1:] {
		if len(row) < len(priceCSVHeader) {
			continue
		}

		// A corrupt cell must fail the transform, not become a silent 0
		// in a training example.
		open, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad open %q", i+2, row[1])
		}
		high, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad high %q", i+2, row[2])
		}
		low, err := strconv.ParseFloat(row[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad low %q", i+2, row[3])
		}
		closeP, err := strconv.ParseFloat(row[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad close %q", i+2, row[4])
		}
		volume, err := strconv.ParseInt(row[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad volume %q", i+2, row[5])
		}

		out = append(out, PriceRow{
			Date:   row[0],
			Open:   open,
			High:   high,
			Low:    low,
			Close:  closeP,
			Volume: volume,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("price series has no data rows")
	}
	return out, nil
}

// momentumDeadZone is the ±% band around zero change treated as neutral.
const momentumDeadZone = 0.5

// Momentum classifies one day's direction from the open→close change.
// Deterministic rule, not a model call.
func Momentum(row PriceRow) string {
	if row.Open == 0 {
		return "中性"
	}
	changePct := (row.Close - row.Open) / row.Open * 100
	switch {
	case changePct > momentumDeadZone:
		return "偏多"
	case changePct < -momentumDeadZone:
		return "偏空"
	default:
		return "中性"
	}
}

// GenerateScenarios turns price rows into factual prompt/completion
// pairs: a statement of the day's prices plus the rule-based momentum
// characterization and the day's trading range.
func GenerateScenarios(symbol string, rows []PriceRow) []TrainingExample {
	examples := make([]TrainingExample, 0, len(rows))

	for _, row := range rows {
		prompt := fmt.Sprintf("請描述 %s 在 %s 的股價表現。", symbol, row.Date)

		var b strings.Builder
		fmt.Fprintf(&b, "%s 於 %s 開盤價 %s 元，最高 %s 元，最低 %s 元，收盤價 %s 元，成交量 %d 股。",
			symbol, row.Date,
			formatPrice(row.Open), formatPrice(row.High),
			formatPrice(row.Low), formatPrice(row.Close), row.Volume)
		fmt.Fprintf(&b, "當日振幅 %s 元，走勢%s。",
			formatPrice(row.High-row.Low), Momentum(row))

		examples = append(examples, TrainingExample{
			Prompt:     prompt,
			Completion: b.String(),
		})
	}
	return examples
}

// formatPrice trims trailing zeros so 945.00 prints as 945.
func formatPrice(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
