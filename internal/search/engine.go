package search

import (
	"context"
	"math/rand"
)

// Engine is a single search backend in the fallback chain.
type Engine interface {
	Name() string

	// Available reports whether the engine can be queried at all. An
	// engine whose credential is missing returns false and is skipped
	// without any network I/O.
	Available() bool

	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
}

// UserAgent returns a browser user agent, rotated per request.
func UserAgent() string {
	return userAgents[rand.Intn(len(userAgents))]
}
