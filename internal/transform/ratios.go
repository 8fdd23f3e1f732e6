package transform

import (
	"fmt"
	"math"
)

// NotAvailable marks a ratio whose denominator was zero or missing.
// Ratio artifacts never contain Inf or NaN.
const NotAvailable = "N/A"

// Statement line items the ratio computation reads. The scrapers keep
// HiStock's item names verbatim, so these must match the site wording.
const (
	itemRevenue         = "營業收入"
	itemGrossProfit     = "營業毛利"
	itemOperatingIncome = "營業利益"
	itemNetIncome       = "本期淨利"
	itemCurrentAssets   = "流動資產"
	itemInventory       = "存貨"
	itemCurrentLiab     = "流動負債"
	itemTotalLiab       = "負債總額"
	itemTotalAssets     = "資產總額"
	itemTotalEquity     = "股東權益總額"
)

// RatioNames is the fixed column order of the derived ratio artifact.
var RatioNames = []string{
	"毛利率",
	"營業利益率",
	"淨利率",
	"流動比率",
	"速動比率",
	"負債權益比",
	"ROA",
	"ROE",
}

// RatioTable is the derived ratio artifact: one row per reporting
// period, one column per named ratio.
type RatioTable struct {
	Periods []string
	// Values[period][ratio name]; formatted, NotAvailable when undefined
	Values map[string]map[string]string
}

// ComputeRatios derives the named ratios from the three cleaned
// statements of one symbol. Periods are aligned by set intersection:
// a period present in only one or two statements is dropped, never
// interpolated.
func ComputeRatios(income, balance, cashflow *Statement) (*RatioTable, error) {
	if income == nil || balance == nil || cashflow == nil {
		return nil, fmt.Errorf("ratio computation needs all three statements")
	}

	// Income statement order wins; the others only filter
	var periods []string
	for _, p := range income.Periods {
		if balance.HasPeriod(p) && cashflow.HasPeriod(p) {
			periods = append(periods, p)
		}
	}

	values := make(map[string]map[string]string, len(periods))
	for _, period := range periods {
		revenue, _ := income.Amount(itemRevenue, period)
		gross, grossOK := income.Amount(itemGrossProfit, period)
		operating, operatingOK := income.Amount(itemOperatingIncome, period)
		net, netOK := income.Amount(itemNetIncome, period)

		currentAssets, caOK := balance.Amount(itemCurrentAssets, period)
		inventory, _ := balance.Amount(itemInventory, period) // 缺存貨時視為 0
		currentLiab, _ := balance.Amount(itemCurrentLiab, period)
		totalLiab, tlOK := balance.Amount(itemTotalLiab, period)
		totalAssets, _ := balance.Amount(itemTotalAssets, period)
		totalEquity, _ := balance.Amount(itemTotalEquity, period)

		row := map[string]string{
			"毛利率":   safeDiv(gross, revenue, grossOK),
			"營業利益率": safeDiv(operating, revenue, operatingOK),
			"淨利率":   safeDiv(net, revenue, netOK),
			"流動比率":  safeDiv(currentAssets, currentLiab, caOK),
			"速動比率":  safeDiv(currentAssets-inventory, currentLiab, caOK),
			"負債權益比": safeDiv(totalLiab, totalEquity, tlOK),
			"ROA":   safeDiv(net, totalAssets, netOK),
			"ROE":   safeDiv(net, totalEquity, netOK),
		}
		values[period] = row
	}

	return &RatioTable{Periods: periods, Values: values}, nil
}

// safeDiv divides and formats, returning NotAvailable instead of ever
// propagating Inf/NaN (zero or missing denominator, missing numerator).
func safeDiv(num, den float64, numOK bool) string {
	if !numOK || den == 0 {
		return NotAvailable
	}
	v := num / den
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return NotAvailable
	}
	return fmt.Sprintf("%.4f", v)
}

// CSVRows renders the ratio artifact: 期別 index column plus one column
// per ratio name.
func (t *RatioTable) CSVRows() [][]string {
	header := append([]string{"期別"}, RatioNames...)
	rows := [][]string{header}

	for _, period := range t.Periods {
		row := []string{period}
		for _, name := range RatioNames {
			row = append(row, t.Values[period][name])
		}
		rows = append(rows, row)
	}
	return rows
}
