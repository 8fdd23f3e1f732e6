package ptt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wenhao/stockmind/backend/internal/artifact"
)

// FetchBoard fetches up to maxPages of posts (with push comments) from a
// board, newest first.
func (c *Client) FetchBoard(ctx context.Context, board string, maxPages int) ([]Post, error) {
	var posts []Post
	pageURL := fmt.Sprintf("%s/bbs/%s/index.html", c.baseURL, board)

	for page := 0; page < maxPages; page++ {
		select {
		case <-ctx.Done():
			return posts, ctx.Err()
		default:
		}

		html, err := c.fetchPage(ctx, board, pageURL)
		if err != nil {
			return nil, err
		}

		entries, prevPage := parseIndexHTML(html, board)
		if len(entries) == 0 && prevPage == "" {
			return nil, &artifact.FetchError{Source: "ptt", Identifier: board,
				Reason: artifact.FetchParse, Err: fmt.Errorf("index page has no entries")}
		}

		for _, entry := range entries {
			post, err := c.fetchPost(ctx, board, entry)
			if err != nil {
				// 個別文章可能已被刪除，跳過不中斷整個看板
				c.logger.WithError(err).WithField("url", entry.url).Warn("Skipping post")
				continue
			}
			posts = append(posts, *post)
		}

		if prevPage == "" {
			break
		}
		pageURL = c.baseURL + prevPage
	}

	if len(posts) == 0 {
		return nil, &artifact.FetchError{Source: "ptt", Identifier: board,
			Reason: artifact.FetchNotFound, Err: fmt.Errorf("no readable posts in %d pages", maxPages)}
	}

	c.logger.WithFields(map[string]interface{}{
		"board": board,
		"count": len(posts),
	}).Debug("Fetched posts")
	return posts, nil
}

// fetchPage fetches one HTML page with the over18 cookie set
func (c *Client) fetchPage(ctx context.Context, board, url string) (string, error) {
	resp, err := c.httpClient.GetWithHeaders(ctx, url, map[string]string{
		"Cookie": "over18=1", // 分類看板需要年齡確認
	})
	if err != nil {
		return "", &artifact.FetchError{Source: "ptt", Identifier: board, Reason: artifact.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &artifact.FetchError{Source: "ptt", Identifier: board, Reason: artifact.FetchNotFound,
			Err: fmt.Errorf("status %d for %s", resp.StatusCode, url)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &artifact.FetchError{Source: "ptt", Identifier: board, Reason: artifact.FetchNetwork,
			Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &artifact.FetchError{Source: "ptt", Identifier: board, Reason: artifact.FetchNetwork, Err: err}
	}
	return string(body), nil
}

// indexEntry is one row of the board index
type indexEntry struct {
	title  string
	author string
	url    string
}

// parseIndexHTML extracts post entries and the 上頁 link from a board
// index page.
func parseIndexHTML(html, board string) ([]indexEntry, string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, ""
	}

	var entries []indexEntry
	doc.Find("div.r-ent").Each(func(_ int, ent *goquery.Selection) {
		link := ent.Find("div.title a")
		href, ok := link.Attr("href")
		if !ok {
			// 被刪除的文章沒有連結
			return
		}

		entries = append(entries, indexEntry{
			title:  strings.TrimSpace(link.Text()),
			author: strings.TrimSpace(ent.Find("div.meta div.author").Text()),
			url:    href,
		})
	})

	var prevPage string
	doc.Find("div.btn-group-paging a.btn").Each(func(_ int, a *goquery.Selection) {
		if strings.Contains(a.Text(), "上頁") {
			prevPage, _ = a.Attr("href")
		}
	})

	return entries, prevPage
}

// fetchPost fetches one post page and parses body + pushes
func (c *Client) fetchPost(ctx context.Context, board string, entry indexEntry) (*Post, error) {
	html, err := c.fetchPage(ctx, board, c.baseURL+entry.url)
	if err != nil {
		return nil, err
	}

	content, pushes, err := parsePostHTML(html)
	if err != nil {
		return nil, &artifact.FetchError{Source: "ptt", Identifier: board, Reason: artifact.FetchParse, Err: err}
	}

	return &Post{
		Board:   board,
		ID:      postID(entry.url),
		Title:   entry.title,
		Author:  entry.author,
		Content: content,
		URL:     c.baseURL + entry.url,
		Pushes:  pushes,
	}, nil
}

// postID derives the stable post ID from its URL
// /bbs/Stock/M.1722500000.A.1B2.html → M.1722500000.A.1B2
func postID(href string) string {
	return strings.TrimSuffix(path.Base(href), ".html")
}

// parsePostHTML extracts the post body and push comments.
func parsePostHTML(html string) (string, []Push, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", nil, fmt.Errorf("parse html: %w", err)
	}

	main := doc.Find("#main-content")
	if main.Length() == 0 {
		return "", nil, fmt.Errorf("main content not found")
	}

	var pushes []Push
	main.Find("div.push").Each(func(_ int, push *goquery.Selection) {
		tag := strings.TrimSpace(push.Find("span.push-tag").Text())
		content := strings.TrimSpace(push.Find("span.push-content").Text())
		content = strings.TrimPrefix(content, ":")
		pushes = append(pushes, Push{
			Tag:     tag,
			Content: strings.TrimSpace(content),
		})
	})

	// Body text: main content minus metadata lines and pushes
	clone := main.Clone()
	clone.Find("div.article-metaline, div.article-metaline-right, div.push").Remove()
	content := strings.TrimSpace(clone.Text())

	return content, pushes, nil
}
