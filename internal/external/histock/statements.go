package histock

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wenhao/stockmind/backend/internal/artifact"
)

// FetchStatement fetches one financial statement page for a symbol.
func (c *Client) FetchStatement(ctx context.Context, symbol string, reportType ReportType) (*StatementTable, error) {
	fullURL := fmt.Sprintf("%s/stock/%s/%s", c.baseURL, symbol, pagePath(reportType))

	resp, err := c.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"Referer": c.baseURL + "/",
	})
	if err != nil {
		return nil, &artifact.FetchError{Source: "histock", Identifier: statementID(symbol, reportType),
			Reason: artifact.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &artifact.FetchError{Source: "histock", Identifier: statementID(symbol, reportType),
			Reason: artifact.FetchNotFound, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &artifact.FetchError{Source: "histock", Identifier: statementID(symbol, reportType),
			Reason: artifact.FetchNetwork, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &artifact.FetchError{Source: "histock", Identifier: statementID(symbol, reportType),
			Reason: artifact.FetchNetwork, Err: err}
	}

	table, err := parseStatementHTML(string(body), symbol, reportType)
	if err != nil {
		return nil, &artifact.FetchError{Source: "histock", Identifier: statementID(symbol, reportType),
			Reason: artifact.FetchParse, Err: err}
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"report":  string(reportType),
		"periods": len(table.Periods),
		"rows":    len(table.Rows),
	}).Debug("Fetched statement")
	return table, nil
}

// pagePath maps a report type to its page path
func pagePath(reportType ReportType) string {
	return fmt.Sprintf("financial?t=%s", pageParam[reportType])
}

// statementID is the artifact identifier for one (symbol, report) pair
func statementID(symbol string, reportType ReportType) string {
	return fmt.Sprintf("%s_%s", symbol, reportType)
}

// StatementID exposes the identifier scheme to the pipeline layer.
func StatementID(symbol string, reportType ReportType) string {
	return statementID(symbol, reportType)
}

// parseStatementHTML extracts the statement table from a HiStock page.
//
// 損益表/資產負債表 use a two-row header: periods with colspan=2 on the
// first row, 金額/百分比 pairs on the second. 現金流量表 has a single
// header row with flat period columns.
func parseStatementHTML(html, symbol string, reportType ReportType) (*StatementTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	table := doc.Find("table.tb-stock").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("statement table not found")
	}

	rows := table.Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("statement table has no data rows")
	}

	// Header row: first cell is 項目, the rest are periods
	var periods []string
	rows.Eq(0).Find("th").Each(func(i int, cell *goquery.Selection) {
		if i == 0 {
			return
		}
		period := strings.TrimSpace(cell.Text())
		if period != "" {
			periods = append(periods, period)
		}
	})
	if len(periods) == 0 {
		return nil, fmt.Errorf("no reporting periods in header")
	}

	dataStart := 1
	if reportType.HasPercent() {
		// Second header row holds the 金額/％ labels
		dataStart = 2
	}

	var items []StatementRow
	rows.Slice(dataStart, rows.Length()).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")

		want := 1 + len(periods)
		if reportType.HasPercent() {
			want = 1 + 2*len(periods)
		}
		if cells.Length() < want {
			return
		}

		item := StatementRow{Item: strings.TrimSpace(cells.Eq(0).Text())}
		if item.Item == "" {
			return
		}

		if reportType.HasPercent() {
			for p := 0; p < len(periods); p++ {
				item.Amounts = append(item.Amounts, strings.TrimSpace(cells.Eq(1+2*p).Text()))
				item.Percents = append(item.Percents, strings.TrimSpace(cells.Eq(2+2*p).Text()))
			}
		} else {
			for p := 0; p < len(periods); p++ {
				item.Amounts = append(item.Amounts, strings.TrimSpace(cells.Eq(1+p).Text()))
			}
		}
		items = append(items, item)
	})

	if len(items) == 0 {
		return nil, fmt.Errorf("no line items parsed")
	}

	return &StatementTable{
		Symbol:  symbol,
		Type:    reportType,
		Periods: periods,
		Rows:    items,
	}, nil
}

// CSVRows renders the table in the raw artifact layout: a header row of
// 項目 plus {period}_amount/{period}_percent (or flat {period}) columns,
// then one row per line item.
func (t *StatementTable) CSVRows() [][]string {
	header := []string{"項目"}
	for _, period := range t.Periods {
		if t.Type.HasPercent() {
			header = append(header, period+"_amount", period+"_percent")
		} else {
			header = append(header, period)
		}
	}

	rows := [][]string{header}
	for _, item := range t.Rows {
		row := []string{item.Item}
		for p := range t.Periods {
			row = append(row, item.Amounts[p])
			if t.Type.HasPercent() {
				row = append(row, item.Percents[p])
			}
		}
		rows = append(rows, row)
	}
	return rows
}
