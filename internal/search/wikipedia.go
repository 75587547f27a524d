package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const wikipediaDefaultBaseURL = "https://en.wikipedia.org/w/api.php"

// WikipediaEngine queries the MediaWiki search API. It needs no
// credential, which makes it the first unconditional fallback.
type WikipediaEngine struct {
	baseURL string
	client  *http.Client
}

func NewWikipediaEngine(timeout time.Duration) *WikipediaEngine {
	return &WikipediaEngine{
		baseURL: wikipediaDefaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *WikipediaEngine) Name() string {
	return "wikipedia"
}

func (e *WikipediaEngine) Available() bool {
	return true
}

func (e *WikipediaEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", strconv.Itoa(limit))
	params.Set("srwhat", "text")

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
		return nil, fmt.Errorf("wikipedia returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Query struct {
			Search []struct {
				Title   string `json:"title"`
				Snippet string `json:"snippet"`
			} `json:"search"`
		} `json:"query"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse wikipedia response: %w", err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(apiResponse.Query.Search))

	for _, r := range apiResponse.Query.Search {
		results = append(results, Result{
			Title:       r.Title,
			URL:         "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(r.Title, " ", "_"),
			Snippet:     stripSearchMatch(r.Snippet),
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: retrievedAt,
		})
	}

	return results, nil
}

// stripSearchMatch removes the highlight markers MediaWiki embeds in
// search snippets.
func stripSearchMatch(s string) string {
	s = strings.ReplaceAll(s, `<span class="searchmatch">`, "")
	return strings.ReplaceAll(s, "</span>", "")
}
