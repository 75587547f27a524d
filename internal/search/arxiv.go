package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const arxivDefaultBaseURL = "http://export.arxiv.org/api/query"

// ArxivEngine queries the arXiv Atom feed, newest submissions first.
type ArxivEngine struct {
	baseURL string
	client  *http.Client
}

func NewArxivEngine(timeout time.Duration) *ArxivEngine {
	return &ArxivEngine{
		baseURL: arxivDefaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *ArxivEngine) Name() string {
	return "arxiv"
}

func (e *ArxivEngine) Available() bool {
	return true
}

func (e *ArxivEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("search_query", "all:"+query)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")

	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("arxiv returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var feed struct {
		Entries []struct {
			Title   string `xml:"title"`
			Summary string `xml:"summary"`
			ID      string `xml:"id"`
		} `xml:"entry"`
	}

	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(feed.Entries))

	for _, entry := range feed.Entries {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			continue
		}

		snippet := strings.TrimSpace(entry.Summary)
		if len(snippet) > 300 {
			cut := 300
			for cut > 0 && !utf8.RuneStart(snippet[cut]) {
				cut--
			}
			snippet = snippet[:cut]
		}

		results = append(results, Result{
			Title:       title,
			URL:         strings.Replace(entry.ID, "http://", "https://", 1),
			Snippet:     snippet,
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: retrievedAt,
		})
	}

	return results, nil
}
