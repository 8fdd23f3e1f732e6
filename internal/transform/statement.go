// Package transform holds the pure derivation functions of the pipeline:
// financial ratio computation, price-bar narrative generation and
// rule-based sentiment labeling. Everything here is deterministic and
// free of I/O; reading and writing artifacts is the pipeline's job.
package transform

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is a cleaned financial statement: line-item amounts keyed by
// item name and reporting period.
type Statement struct {
	Periods []string
	// Amounts[item][period]; cleaned numerics, dashes already zeroed
	Amounts map[string]map[string]float64
}

// CleanNumber normalizes one raw statement cell: thousands separators
// stripped, textual dashes treated as zero. Returns ok=false only for
// text that is not a number at all.
func CleanNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")

	switch s {
	case "", "-", "--", "—", "─":
		return 0, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ParseStatementCSV turns raw statement CSV rows (as written by the
// statement fetch step) back into a Statement. Income and balance sheets
// carry {period}_amount/{period}_percent column pairs; cash flow carries
// flat {period} columns. Percent columns are ignored here: ratios are
// recomputed from amounts.
func ParseStatementCSV(rows [][]string) (*Statement, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("statement has no data rows")
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("statement header has no period columns")
	}

	// Column index → period, amount columns only
	type amountCol struct {
		index  int
		period string
	}
	var cols []amountCol
	var periods []string

	for i := 1; i < len(header); i++ {
		name := strings.TrimSpace(header[i])
		if strings.HasSuffix(name, "_percent") {
			continue
		}
		period := strings.TrimSuffix(name, "_amount")
		if period == "" {
			continue
		}
		cols = append(cols, amountCol{index: i, period: period})
		periods = append(periods, period)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("statement header has no amount columns")
	}

	amounts := make(map[string]map[string]float64)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		item := strings.TrimSpace(row[0])
		if item == "" {
			continue
		}

		byPeriod := make(map[string]float64, len(cols))
		for _, col := range cols {
			if col.index >= len(row) {
				continue
			}
			if v, ok := CleanNumber(row[col.index]); ok {
				byPeriod[col.period] = v
			}
		}
		amounts[item] = byPeriod
	}

	return &Statement{Periods: periods, Amounts: amounts}, nil
}

// Amount returns the cleaned value for (item, period).
func (s *Statement) Amount(item, period string) (float64, bool) {
	byPeriod, ok := s.Amounts[item]
	if !ok {
		return 0, false
	}
	v, ok := byPeriod[period]
	return v, ok
}

// HasPeriod reports whether the statement carries the given period.
func (s *Statement) HasPeriod(period string) bool {
	for _, p := range s.Periods {
		if p == period {
			return true
		}
	}
	return false
}
