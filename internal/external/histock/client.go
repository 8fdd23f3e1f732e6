// Package histock scrapes quarterly financial statement tables from
// HiStock stock pages.
package histock

import (
	"github.com/wenhao/stockmind/backend/pkg/httputil"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// Client handles communication with HiStock
// ⭐ SSOT: 財報頁面只從這個 client 抓
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new HiStock client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://histock.tw",
	}
}

// ReportType identifies one of the three statement pages
type ReportType string

const (
	Income   ReportType = "income"
	Balance  ReportType = "balance"
	CashFlow ReportType = "cashflow"
)

// ReportTypes lists all statement pages fetched per symbol
var ReportTypes = []ReportType{Income, Balance, CashFlow}

// pageParam maps a report type to HiStock's t query parameter
var pageParam = map[ReportType]string{
	Income:   "2",
	Balance:  "1",
	CashFlow: "3",
}

// HasPercent reports whether the statement page carries 百分比 columns
// next to 金額. Cash flow pages only carry flat amounts.
func (rt ReportType) HasPercent() bool {
	return rt == Income || rt == Balance
}

// StatementRow is one line item across all reporting periods
type StatementRow struct {
	Item     string
	Amounts  []string // one per period, raw text ("673,510", "-")
	Percents []string // nil for cash flow statements
}

// StatementTable is one scraped financial statement
type StatementTable struct {
	Symbol  string
	Type    ReportType
	Periods []string // e.g. ["2024Q2", "2024Q1", ...]
	Rows    []StatementRow
}
