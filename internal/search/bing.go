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

const bingDefaultBaseURL = "https://api.bing.microsoft.com/v7.0/search"

// BingEngine queries the Bing Web Search API, gated on a subscription key.
type BingEngine struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewBingEngine(apiKey string, timeout time.Duration) *BingEngine {
	return &BingEngine{
		apiKey:  apiKey,
		baseURL: bingDefaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *BingEngine) Name() string {
	return "bing"
}

func (e *BingEngine) Available() bool {
	return e.apiKey != ""
}

func (e *BingEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, "GET", e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", e.apiKey)
	req.Header.Set("User-Agent", UserAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bing returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		WebPages struct {
			Value []struct {
				Name    string `json:"name"`
				URL     string `json:"url"`
				Snippet string `json:"snippet"`
			} `json:"value"`
		} `json:"webPages"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse bing response: %w", err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(apiResponse.WebPages.Value))

	for i, item := range apiResponse.WebPages.Value {
		if i >= limit {
			break
		}
		results = append(results, Result{
			Title:       item.Name,
			URL:         item.URL,
			Snippet:     item.Snippet,
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: retrievedAt,
		})
	}

	return results, nil
}
