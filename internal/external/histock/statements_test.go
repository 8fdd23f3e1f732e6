package histock

import (
	"testing"
)

const incomeHTML = `
<html><body>
<table class="tb-stock">
	<tr><th rowspan="2">項目</th><th colspan="2">2024Q2</th><th colspan="2">2024Q1</th></tr>
	<tr><th>金額</th><th>％</th><th>金額</th><th>％</th></tr>
	<tr><td>營業收入</td><td>673,510</td><td>100.00</td><td>592,644</td><td>100.00</td></tr>
	<tr><td>營業毛利</td><td>358,132</td><td>53.17</td><td>315,007</td><td>53.15</td></tr>
	<tr><td>營業費用</td><td>-</td><td>-</td><td>70,002</td><td>11.81</td></tr>
</table>
</body></html>`

const cashflowHTML = `
<html><body>
<table class="tb-stock">
	<tr><th>項目</th><th>2024Q2</th><th>2024Q1</th></tr>
	<tr><td>營業活動之現金流量</td><td>377,665</td><td>436,311</td></tr>
	<tr><td>投資活動之現金流量</td><td>-219,634</td><td>-159,311</td></tr>
</table>
</body></html>`

func TestParseStatementHTMLIncome(t *testing.T) {
	table, err := parseStatementHTML(incomeHTML, "2330", Income)
	if err != nil {
		t.Fatalf("parseStatementHTML() error = %v", err)
	}

	if len(table.Periods) != 2 {
		t.Fatalf("got %d periods, want 2", len(table.Periods))
	}
	if table.Periods[0] != "2024Q2" || table.Periods[1] != "2024Q1" {
		t.Errorf("Periods = %v", table.Periods)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(table.Rows))
	}

	row := table.Rows[0]
	if row.Item != "營業收入" {
		t.Errorf("Item = %s, want 營業收入", row.Item)
	}
	if row.Amounts[0] != "673,510" {
		t.Errorf("Amounts[0] = %s, want 673,510", row.Amounts[0])
	}
	if row.Percents[0] != "100.00" {
		t.Errorf("Percents[0] = %s, want 100.00", row.Percents[0])
	}

	// Textual dashes survive parsing; cleaning happens downstream
	if table.Rows[2].Amounts[0] != "-" {
		t.Errorf("dash cell = %s, want -", table.Rows[2].Amounts[0])
	}
}

func TestParseStatementHTMLCashFlow(t *testing.T) {
	table, err := parseStatementHTML(cashflowHTML, "2330", CashFlow)
	if err != nil {
		t.Fatalf("parseStatementHTML() error = %v", err)
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(table.Rows))
	}
	if table.Rows[0].Percents != nil {
		t.Error("cash flow rows must not carry percent columns")
	}
	if table.Rows[1].Amounts[0] != "-219,634" {
		t.Errorf("Amounts[0] = %s, want -219,634", table.Rows[1].Amounts[0])
	}
}

func TestParseStatementHTMLNoTable(t *testing.T) {
	if _, err := parseStatementHTML("<html><body></body></html>", "2330", Income); err == nil {
		t.Error("expected error when statement table is missing")
	}
}

func TestCSVRows(t *testing.T) {
	table, err := parseStatementHTML(incomeHTML, "2330", Income)
	if err != nil {
		t.Fatalf("parseStatementHTML() error = %v", err)
	}

	rows := table.CSVRows()
	wantHeader := []string{"項目", "2024Q2_amount", "2024Q2_percent", "2024Q1_amount", "2024Q1_percent"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %s, want %s", i, rows[0][i], col)
		}
	}
	if len(rows) != 4 {
		t.Errorf("got %d rows, want 4 (header + 3 items)", len(rows))
	}

	cf, err := parseStatementHTML(cashflowHTML, "2330", CashFlow)
	if err != nil {
		t.Fatalf("parseStatementHTML() error = %v", err)
	}
	cfRows := cf.CSVRows()
	if len(cfRows[0]) != 3 {
		t.Errorf("cash flow header has %d columns, want 3 (項目 + flat periods)", len(cfRows[0]))
	}
	if cfRows[0][1] != "2024Q2" {
		t.Errorf("cash flow header[1] = %s, want 2024Q2", cfRows[0][1])
	}
}
