package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const tavilyDefaultBaseURL = "https://api.tavily.com"

// TavilyEngine queries the Tavily answer-engine API. It is the primary
// backend of the chain and the only one that can return a direct answer
// in addition to plain web results.
type TavilyEngine struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewTavilyEngine(apiKey string, timeout time.Duration) *TavilyEngine {
	return &TavilyEngine{
		apiKey:  apiKey,
		baseURL: tavilyDefaultBaseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (e *TavilyEngine) Name() string {
	return "tavily"
}

func (e *TavilyEngine) Available() bool {
	return e.apiKey != ""
}

func (e *TavilyEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	requestBody := map[string]interface{}{
		"api_key":             e.apiKey,
		"query":               query,
		"max_results":         limit,
		"include_answer":      true,
		"include_raw_content": true,
		"topic":               "general",
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.baseURL+"/search", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("tavily returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var apiResponse struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title      string `json:"title"`
			URL        string `json:"url"`
			Content    string `json:"content"`
			RawContent string `json:"raw_content"`
		} `json:"results"`
	}

	if err := json.Unmarshal(body, &apiResponse); err != nil {
		return nil, fmt.Errorf("failed to parse tavily response: %w", err)
	}

	retrievedAt := time.Now()
	results := make([]Result, 0, len(apiResponse.Results)+1)

	// Direct answers sort ahead of web results.
	if apiResponse.Answer != "" {
		results = append(results, Result{
			Title:       "Direct Answer",
			Snippet:     apiResponse.Answer,
			Source:      e.Name(),
			Kind:        KindAnswer,
			RetrievedAt: retrievedAt,
		})
	}

	for i, r := range apiResponse.Results {
		if i >= limit {
			break
		}
		results = append(results, Result{
			Title:       r.Title,
			URL:         r.URL,
			Snippet:     r.Content,
			FullContent: r.RawContent,
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: retrievedAt,
		})
	}

	return results, nil
}
