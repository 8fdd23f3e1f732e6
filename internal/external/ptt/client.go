// Package ptt scrapes board posts and push comments from the PTT web
// frontend.
package ptt

import (
	"github.com/wenhao/stockmind/backend/pkg/httputil"
	"github.com/wenhao/stockmind/backend/pkg/logger"
)

// Client handles communication with www.ptt.cc
// ⭐ SSOT: PTT 網頁只從這個 client 抓
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new PTT client
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    "https://www.ptt.cc",
	}
}

// Push is one push comment (推文) under a post
type Push struct {
	Tag     string `json:"tag"` // 推 / 噓 / →
	Content string `json:"content"`
}

// Post is one board post with its push comments
type Post struct {
	Board   string `json:"board"`
	ID      string `json:"id"` // e.g. M.1722500000.A.1B2
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
	URL     string `json:"url"`
	Pushes  []Push `json:"pushes"`
}
