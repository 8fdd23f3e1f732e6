// Package twse fetches daily price bars from the TWSE after-trading
// report endpoint.
package twse

import (
	"time"

	"github.com/wenhao/stockmind/backend/pkg/httputil"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// Client handles communication with the TWSE exchange API
// ⭐ SSOT: 證交所行情只從這個 client 抓
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://www.twse.com.tw",
	}
}

// PriceBar represents one trading day for one symbol
type PriceBar struct {
	Symbol    string    `json:"symbol"`
	TradeDate time.Time `json:"trade_date"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}
