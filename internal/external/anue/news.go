package anue

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wenhao/stockmind/backend/internal/artifact"
)

// newsListResponse is the shape of the newslist API payload.
type newsListResponse struct {
	Items struct {
		Data []struct {
			NewsID    int64  `json:"newsId"`
			Title     string `json:"title"`
			Summary   string `json:"summary"`
			PublishAt int64  `json:"publishAt"` // unix seconds
		} `json:"data"`
	} `json:"items"`
}

// FetchNews fetches up to limit Taiwan stock news items for a category
// (e.g. "tw_stock").
func (c *Client) FetchNews(ctx context.Context, category string, limit int) ([]NewsItem, error) {
	fullURL := fmt.Sprintf("%s/media/api/v1/newslist/category/%s?limit=%d&page=1",
		c.baseURL, category, limit)

	resp, err := c.httpClient.Get(ctx, fullURL)
	if err != nil {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchNotFound,
			Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchNetwork,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchNetwork, Err: err}
	}

	items, err := parseNewsList(body)
	if err != nil {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchParse, Err: err}
	}
	if len(items) == 0 {
		return nil, &artifact.FetchError{Source: "anue", Identifier: category, Reason: artifact.FetchNotFound,
			Err: fmt.Errorf("empty news list")}
	}

	c.logger.WithFields(map[string]interface{}{
		"category": category,
		"count":    len(items),
	}).Debug("Fetched news")
	return items, nil
}

// parseNewsList parses the newslist JSON body
func parseNewsList(body []byte) ([]NewsItem, error) {
	var payload newsListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var items []NewsItem
	for _, raw := range payload.Items.Data {
		if raw.Title == "" {
			continue
		}
		items = append(items, NewsItem{
			ID:          raw.NewsID,
			Title:       raw.Title,
			Summary:     raw.Summary,
			PublishedAt: time.Unix(raw.PublishAt, 0).UTC(),
		})
	}
	return items, nil
}
