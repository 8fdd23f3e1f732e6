package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wenhao/stockmind/backend/internal/artifact"
)

// stockDayResponse is the shape of the STOCK_DAY JSON endpoint.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// FetchPrices fetches daily bars for a symbol over the last
// lookbackMonths months. The endpoint is month-scoped, so one request
// per month.
func (c *Client) FetchPrices(ctx context.Context, symbol string, lookbackMonths int) ([]PriceBar, error) {
	var bars []PriceBar

	for _, month := range monthsBack(time.Now(), lookbackMonths) {
		monthBars, err := c.fetchMonth(ctx, symbol, month)
		if err != nil {
			return nil, err
		}
		bars = append(bars, monthBars...)
	}

	if len(bars) == 0 {
		return nil, &artifact.FetchError{
			Source:     "twse",
			Identifier: symbol,
			Reason:     artifact.FetchNotFound,
			Err:        fmt.Errorf("no trading data in the last %d months", lookbackMonths),
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].TradeDate.Before(bars[j].TradeDate) })

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(bars),
	}).Debug("Fetched prices")
	return bars, nil
}

// monthsBack enumerates the first day of the last n months, newest
// first. Anchoring on day 1 before stepping back keeps AddDate from
// normalizing a 31st into the next month, which would fetch the same
// month twice and skip a shorter one.
func monthsBack(now time.Time, n int) []time.Time {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	months := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		months = append(months, first.AddDate(0, -i, 0))
	}
	return months
}

// fetchMonth fetches one month of daily bars
func (c *Client) fetchMonth(ctx context.Context, symbol string, month time.Time) ([]PriceBar, error) {
	fullURL := fmt.Sprintf(
		"%s/rwd/zh/afterTrading/STOCK_DAY?date=%s01&stockNo=%s&response=json",
		c.baseURL, month.Format("200601"), symbol,
	)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, &artifact.FetchError{Source: "twse", Identifier: symbol, Reason: artifact.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &artifact.FetchError{Source: "twse", Identifier: symbol, Reason: artifact.FetchNotFound,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &artifact.FetchError{Source: "twse", Identifier: symbol, Reason: artifact.FetchNetwork,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &artifact.FetchError{Source: "twse", Identifier: symbol, Reason: artifact.FetchNetwork, Err: err}
	}

	bars, err := parseStockDay(symbol, body)
	if err != nil {
		return nil, &artifact.FetchError{Source: "twse", Identifier: symbol, Reason: artifact.FetchParse, Err: err}
	}
	return bars, nil
}

// parseStockDay parses the STOCK_DAY JSON body.
// Columns: 日期, 成交股數, 成交金額, 開盤價, 最高價, 最低價, 收盤價, ...
func parseStockDay(symbol string, body []byte) ([]PriceBar, error) {
	var payload stockDayResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// 該月無資料時 stat 會是「很抱歉，沒有符合條件的資料!」
	if payload.Stat != "OK" {
		return nil, nil
	}

	var bars []PriceBar
	for _, row := range payload.Data {
		if len(row) < 7 {
			continue
		}

		tradeDate, err := parseROCDate(row[0])
		if err != nil {
			continue
		}

		bars = append(bars, PriceBar{
			Symbol:    symbol,
			TradeDate: tradeDate,
			Volume:    parseInt(row[1]),
			Open:      parseFloat(row[3]),
			High:      parseFloat(row[4]),
			Low:       parseFloat(row[5]),
			Close:     parseFloat(row[6]),
		})
	}
	return bars, nil
}

// parseROCDate converts a 民國 date like "113/08/01" to time.Time.
func parseROCDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("bad ROC date: %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC year: %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC month: %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("bad ROC day: %q", s)
	}

	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func parseInt(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "--" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
