package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/kayz/sourcerouter/internal/config"
	"github.com/kayz/sourcerouter/internal/search"
)

func testFetcher(maxChars int) *Fetcher {
	f := NewFetcher(config.FetchConfig{TimeoutSeconds: 2, MaxChars: maxChars})
	f.pause = time.Millisecond
	return f
}

func TestTextStripsMarkupAndChrome(t *testing.T) {
	page := `<html><head>
<script>var tracking = "noise";</script>
<style>body { color: red; }</style>
</head><body>
<nav><a href="/">Home</a></nav>
<h1>Query   Routing</h1>
<p>Route queries to the   best source.</p>
<footer>Copyright 2025</footer>
</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Fatal("expected a User-Agent header")
		}
		w.Write([]byte(page))
	}))
	defer server.Close()

	text, ok := testFetcher(3000).Text(context.Background(), server.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if text != "Query Routing Route queries to the best source." {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestTextTruncatesToBudget(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>" + strings.Repeat("word ", 200) + "</p>"))
	}))
	defer server.Close()

	text, ok := testFetcher(50).Text(context.Background(), server.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if len(text) != 50 {
		t.Fatalf("expected 50 chars, got %d", len(text))
	}
}

func TestTextTruncatesOnRuneBoundary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A leading ASCII byte puts the 50-byte cut mid-rune.
		w.Write([]byte("<p>x" + strings.Repeat("é", 100) + "</p>"))
	}))
	defer server.Close()

	text, ok := testFetcher(50).Text(context.Background(), server.URL)
	if !ok {
		t.Fatal("expected fetch to succeed")
	}
	if len(text) > 50 {
		t.Fatalf("text exceeds budget: %d bytes", len(text))
	}
	if !utf8.ValidString(text) {
		t.Fatalf("truncation split a rune: %q", text[len(text)-4:])
	}
}

func TestTextRejectsBadInput(t *testing.T) {
	f := testFetcher(3000)

	if _, ok := f.Text(context.Background(), "ftp://example.com/file"); ok {
		t.Fatal("non-http scheme must be rejected")
	}
	if _, ok := f.Text(context.Background(), "::not a url::"); ok {
		t.Fatal("unparseable URL must be rejected")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	if _, ok := f.Text(context.Background(), server.URL); ok {
		t.Fatal("non-2xx status must be reported as a failure")
	}
}

func TestEnrichKeepsSnippetOnFailure(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>full page text</p>"))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	results := []search.Result{
		{Title: "good", URL: good.URL, Snippet: "good snippet"},
		{Title: "bad", URL: bad.URL, Snippet: "bad snippet"},
		{Title: "answer", Snippet: "direct answer, no URL"},
	}

	enriched := testFetcher(3000).Enrich(context.Background(), results)
	if enriched[0].FullContent != "full page text" {
		t.Fatalf("expected fetched content, got %q", enriched[0].FullContent)
	}
	if enriched[1].FullContent != "bad snippet" {
		t.Fatalf("failed fetch must fall back to the snippet, got %q", enriched[1].FullContent)
	}
	if enriched[2].FullContent != "direct answer, no URL" {
		t.Fatalf("URL-less result must keep its snippet, got %q", enriched[2].FullContent)
	}
}

func TestEnrichKeepsExistingFullContent(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	results := []search.Result{
		{Title: "raw", URL: server.URL, Snippet: "snippet", FullContent: "raw content from the provider"},
	}

	enriched := testFetcher(3000).Enrich(context.Background(), results)
	if enriched[0].FullContent != "raw content from the provider" {
		t.Fatalf("provider content must not be overwritten: %q", enriched[0].FullContent)
	}
	if hits != 0 {
		t.Fatalf("no fetch should happen for an already-filled result, got %d", hits)
	}
}

func TestDropElementsUnclosedTag(t *testing.T) {
	got := dropElements("<p>visible</p><script>never closed")
	if strings.Contains(got, "never closed") {
		t.Fatalf("unclosed script content leaked: %q", got)
	}
	if !strings.Contains(got, "visible") {
		t.Fatalf("visible text lost: %q", got)
	}
}
