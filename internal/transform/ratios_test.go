package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// statementOf builds a Statement from item → period → value.
func statementOf(periods []string, amounts map[string]map[string]float64) *Statement {
	return &Statement{Periods: periods, Amounts: amounts}
}

func TestComputeRatiosPeriodAlignment(t *testing.T) {
	// Income {Q1,Q2,Q3}, balance {Q2,Q3,Q4}, cashflow {Q2,Q3}
	// → intersection is exactly {Q2,Q3}
	income := statementOf([]string{"Q1", "Q2", "Q3"}, map[string]map[string]float64{
		itemRevenue:   {"Q1": 100, "Q2": 200, "Q3": 300},
		itemNetIncome: {"Q1": 10, "Q2": 20, "Q3": 30},
	})
	balance := statementOf([]string{"Q2", "Q3", "Q4"}, map[string]map[string]float64{
		itemTotalAssets: {"Q2": 1000, "Q3": 1000, "Q4": 1000},
	})
	cashflow := statementOf([]string{"Q2", "Q3"}, map[string]map[string]float64{})

	table, err := ComputeRatios(income, balance, cashflow)
	require.NoError(t, err)

	assert.Equal(t, []string{"Q2", "Q3"}, table.Periods)
}

func TestComputeRatiosValues(t *testing.T) {
	income := statementOf([]string{"2024Q2"}, map[string]map[string]float64{
		itemRevenue:         {"2024Q2": 1000},
		itemGrossProfit:     {"2024Q2": 500},
		itemOperatingIncome: {"2024Q2": 400},
		itemNetIncome:       {"2024Q2": 300},
	})
	balance := statementOf([]string{"2024Q2"}, map[string]map[string]float64{
		itemCurrentAssets: {"2024Q2": 800},
		itemInventory:     {"2024Q2": 200},
		itemCurrentLiab:   {"2024Q2": 400},
		itemTotalLiab:     {"2024Q2": 600},
		itemTotalAssets:   {"2024Q2": 2000},
		itemTotalEquity:   {"2024Q2": 1400},
	})
	cashflow := statementOf([]string{"2024Q2"}, nil)

	table, err := ComputeRatios(income, balance, cashflow)
	require.NoError(t, err)
	require.Equal(t, []string{"2024Q2"}, table.Periods)

	row := table.Values["2024Q2"]
	assert.Equal(t, "0.5000", row["毛利率"])
	assert.Equal(t, "0.4000", row["營業利益率"])
	assert.Equal(t, "0.3000", row["淨利率"])
	assert.Equal(t, "2.0000", row["流動比率"])
	assert.Equal(t, "1.5000", row["速動比率"]) // (800-200)/400
	assert.Equal(t, "0.4286", row["負債權益比"])
	assert.Equal(t, "0.1500", row["ROA"])
	assert.Equal(t, "0.2143", row["ROE"])
}

func TestComputeRatiosZeroAndMissingDenominators(t *testing.T) {
	// Revenue 0 (textual dash in the raw artifact), equity missing,
	// current liabilities zero. Everything divides safely.
	income := statementOf([]string{"Q1"}, map[string]map[string]float64{
		itemRevenue:     {"Q1": 0},
		itemGrossProfit: {"Q1": 500},
		itemNetIncome:   {"Q1": 300},
	})
	balance := statementOf([]string{"Q1"}, map[string]map[string]float64{
		itemCurrentAssets: {"Q1": 800},
		itemCurrentLiab:   {"Q1": 0},
		itemTotalLiab:     {"Q1": 600},
	})
	cashflow := statementOf([]string{"Q1"}, nil)

	table, err := ComputeRatios(income, balance, cashflow)
	require.NoError(t, err)

	row := table.Values["Q1"]
	for _, name := range RatioNames {
		assert.Equal(t, NotAvailable, row[name], "ratio %s", name)
	}

	// The rendered artifact must never carry Inf or NaN
	for _, csvRow := range table.CSVRows() {
		joined := strings.Join(csvRow, ",")
		assert.NotContains(t, joined, "Inf")
		assert.NotContains(t, joined, "NaN")
	}
}

func TestComputeRatiosEmptyIntersection(t *testing.T) {
	income := statementOf([]string{"Q1"}, nil)
	balance := statementOf([]string{"Q2"}, nil)
	cashflow := statementOf([]string{"Q3"}, nil)

	table, err := ComputeRatios(income, balance, cashflow)
	require.NoError(t, err)
	assert.Empty(t, table.Periods)

	rows := table.CSVRows()
	require.Len(t, rows, 1) // header only
}

func TestComputeRatiosNilStatement(t *testing.T) {
	_, err := ComputeRatios(nil, &Statement{}, &Statement{})
	assert.Error(t, err)
}

func TestCSVRowsLayout(t *testing.T) {
	income := statementOf([]string{"Q1"}, map[string]map[string]float64{
		itemRevenue:   {"Q1": 100},
		itemNetIncome: {"Q1": 10},
	})
	balance := statementOf([]string{"Q1"}, map[string]map[string]float64{
		itemTotalAssets: {"Q1": 500},
	})
	cashflow := statementOf([]string{"Q1"}, nil)

	table, err := ComputeRatios(income, balance, cashflow)
	require.NoError(t, err)

	rows := table.CSVRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "期別", rows[0][0])
	assert.Equal(t, len(RatioNames)+1, len(rows[0]))
	assert.Equal(t, "Q1", rows[1][0])
	assert.Equal(t, "0.0200", rows[1][len(RatioNames)-1]) // ROA column
	assert.Equal(t, NotAvailable, rows[1][len(RatioNames)]) // ROE, equity missing
}
