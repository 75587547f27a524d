package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const googleDefaultBaseURL = "https://www.googleapis.com/customsearch/v1"

// GoogleEngine queries the Google Custom Search API. It needs both an
// API key and a search engine id; without either it reports unavailable.
type GoogleEngine struct {
	apiKey   string
	engineID string
	baseURL  string
	client   *http.Client
}

func NewGoogleEngine(apiKey, engineID string, timeout time.Duration) *GoogleEngine {
	return &GoogleEngine{
		apiKey:   apiKey,
		engineID: engineID,
		baseURL:  googleDefaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *GoogleEngine) Name() string {
	return "google"
}

func (e *GoogleEngine) Available() bool {
	return e.apiKey != "" && e.engineID != ""
}

func (e *GoogleEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	// The API caps a single page at 10 items.
	num := limit
	if num > 10 {
		num = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("key", e.apiKey)
	params.Set("cx", e.engineID)
	params.Set("num", strconv.Itoa(num))

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
		return nil, fmt.Errorf("google returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Items []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"items"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse google response: %w", err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(apiResponse.Items))

	for i, item := range apiResponse.Items {
		if i >= limit {
			break
		}
		results = append(results, Result{
			Title:       item.Title,
			URL:         item.Link,
			Snippet:     item.Snippet,
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: retrievedAt,
		})
	}

	return results, nil
}
