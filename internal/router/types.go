package router

import (
	"context"
	"time"

	"github.com/kayz/sourcerouter/internal/classify"
	"github.com/kayz/sourcerouter/internal/search"
)

// LocalRetriever is the boundary to the local document retrieval
// capability. internal/docstore provides the embedded implementation;
// callers may pass their own, or nil when no documents exist.
type LocalRetriever interface {
	GetRelevantDocuments(ctx context.Context, query string) ([]DocumentChunk, error)
}

// DocumentChunk is one ranked chunk returned by a local retriever.
type DocumentChunk struct {
	Content  string `json:"content"`
	SourceID string `json:"source"`
	Page     string `json:"page,omitempty"`
	Chunk    string `json:"chunk,omitempty"`
}

type SourceType string

const (
	SourceLocal SourceType = "local"
	SourceWeb   SourceType = "web"
)

// SourceRef is a caller-facing citation record derived from either a
// web result or a local chunk.
type SourceRef struct {
	Type     SourceType `json:"type"`
	Title    string     `json:"title,omitempty"`
	URL      string     `json:"url,omitempty"`
	SourceID string     `json:"source,omitempty"`
	Page     string     `json:"page,omitempty"`
	Chunk    string     `json:"chunk,omitempty"`
	Snippet  string     `json:"snippet,omitempty"`
	Content  string     `json:"content"`
	Provider string     `json:"provider,omitempty"`
	Kind     string     `json:"result_kind,omitempty"`
}

// RetrievalType names the path that actually produced an outcome.
type RetrievalType string

const (
	RetrievalLocal  RetrievalType = "local_rag"
	RetrievalWeb    RetrievalType = "web_search"
	RetrievalHybrid RetrievalType = "hybrid"
)

// Counts reports how many results each side of a retrieval produced.
type Counts struct {
	Local int `json:"local"`
	Web   int `json:"web"`
	Total int `json:"total"`
}

// Outcome is the unit returned to the caller. A failed retrieval is
// still a well-formed Outcome with Err set; nothing in this package
// surfaces an error any other way.
type Outcome struct {
	Query         string            `json:"query"`
	Decision      classify.Decision `json:"routing"`
	Context       string            `json:"context"`
	Sources       []SourceRef       `json:"sources"`
	RetrievalType RetrievalType     `json:"retrieval_type"`
	Counts        Counts            `json:"counts"`
	Err           string            `json:"error,omitempty"`
	RawResults    []search.Result   `json:"raw_search_results,omitempty"`
}

// HistoryEntry records one routing call. Entries are immutable after
// append.
type HistoryEntry struct {
	ID            string              `json:"id"`
	Query         string              `json:"query"`
	Datasource    classify.Datasource `json:"datasource"`
	Reasoning     string              `json:"reasoning"`
	Confidence    float64             `json:"confidence"`
	RetrievalType RetrievalType       `json:"retrieval_type"`
	SourceCount   int                 `json:"num_sources"`
	Err           string              `json:"error,omitempty"`
	Timestamp     time.Time           `json:"timestamp"`
}

// Stats is a pure aggregation over the history, recomputed on demand.
type Stats struct {
	TotalQueries    int            `json:"total_queries"`
	BySource        map[string]int `json:"by_source"`
	ByRetrievalType map[string]int `json:"by_retrieval_type"`
	AvgConfidence   float64        `json:"avg_confidence"`
	ErrorCount      int            `json:"error_count"`
	SuccessRate     float64        `json:"success_rate"`
	History         []HistoryEntry `json:"routing_history,omitempty"`
}
