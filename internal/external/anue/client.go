// Package anue fetches Taiwan stock news headlines from the Anue (鉅亨網)
// list API.
package anue

import (
	"time"

	"github.com/wenhao/stockmind/backend/pkg/httputil"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// Client handles communication with the Anue news API
// ⭐ SSOT: 新聞只從這個 client 抓
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new Anue client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://api.cnyes.com",
	}
}

// NewsItem is one news headline with summary
type NewsItem struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}
