package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kayz/sourcerouter/internal/config"
	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/search"
)

const maxBodyBytes = 512 * 1024

// Fetcher retrieves a page and reduces it to plain text, bounded in
// size and time. Every failure mode yields ("", false); enrichment is
// strictly best effort.
type Fetcher struct {
	client   *http.Client
	maxChars int
	pause    time.Duration
}

func NewFetcher(cfg config.FetchConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = 3000
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		maxChars: maxChars,
		pause:    200 * time.Millisecond,
	}
}

// Text fetches a URL and returns its visible text, truncated to the
// configured budget. The second return value is false when the URL is
// unusable or the fetch failed in any way.
func (f *Fetcher) Text(ctx context.Context, rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", false
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", search.UserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		logger.Debug("fetch failed for %s: %v", rawURL, err)
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.Debug("fetch for %s returned status %d", rawURL, resp.StatusCode)
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", false
	}

	text := collapseWhitespace(stripTags(dropElements(string(body))))
	text = truncateRunes(text, f.maxChars)
	if text == "" {
		return "", false
	}

	return text, true
}

// Enrich fills FullContent on results that lack it, pausing briefly
// between requests. Results that already carry full content are left
// alone. A failed fetch keeps the snippet; one bad page never aborts
// the batch.
func (f *Fetcher) Enrich(ctx context.Context, results []search.Result) []search.Result {
	for i := range results {
		if results[i].FullContent != "" {
			continue
		}
		if results[i].URL == "" || !strings.HasPrefix(results[i].URL, "http") {
			results[i].FullContent = results[i].Snippet
			continue
		}

		if content, ok := f.Text(ctx, results[i].URL); ok {
			results[i].FullContent = content
		} else {
			results[i].FullContent = results[i].Snippet
		}

		if i < len(results)-1 {
			select {
			case <-time.After(f.pause):
			case <-ctx.Done():
			}
		}
	}
	return results
}

// dropElements removes whole elements whose content is never visible
// text: scripts, styles, navigation and footers.
func dropElements(html string) string {
	for _, tag := range []string{"script", "style", "noscript", "nav", "footer"} {
		for {
			lower := strings.ToLower(html)
			start := strings.Index(lower, "<"+tag)
			if start == -1 {
				break
			}
			end := strings.Index(lower[start:], "</"+tag+">")
			if end == -1 {
				html = html[:start]
				break
			}
			html = html[:start] + html[start+end+len("</"+tag+">"):]
		}
	}
	return html
}

func stripTags(s string) string {
	var result strings.Builder
	inTag := false
	for _, r := range s {
		if r == '<' {
			inTag = true
		} else if r == '>' {
			inTag = false
		} else if !inTag {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
