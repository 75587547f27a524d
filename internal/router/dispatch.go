package router

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kayz/sourcerouter/internal/classify"
	"github.com/kayz/sourcerouter/internal/fetch"
	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/search"
)

// Dispatcher executes the retrieval path a decision selected and
// formats a unified context document plus a source list. Every mode
// converts its delegate's failures into an Outcome with Err set.
type Dispatcher struct {
	chain      *search.Chain
	fetcher    *fetch.Fetcher // nil disables content enrichment
	maxResults int
	now        func() time.Time
}

func NewDispatcher(chain *search.Chain, fetcher *fetch.Fetcher, maxResults int) *Dispatcher {
	if maxResults <= 0 {
		maxResults = 5
	}
	return &Dispatcher{
		chain:      chain,
		fetcher:    fetcher,
		maxResults: maxResults,
		now:        time.Now,
	}
}

// Retrieve runs the mode keyed by the decision's datasource. The
// default arm covers a corrupted Datasource value; the classifier
// already coerces unknown strings to web, but the dispatcher does not
// lean on that.
func (d *Dispatcher) Retrieve(ctx context.Context, query string, decision classify.Decision, retriever LocalRetriever) Outcome {
	var outcome Outcome
	switch decision.Datasource {
	case classify.DatasourceLocal:
		outcome = d.retrieveLocal(ctx, query, retriever)
	case classify.DatasourceWeb:
		outcome = d.retrieveWeb(ctx, query)
	case classify.DatasourceHybrid:
		outcome = d.retrieveHybrid(ctx, query, retriever)
	default:
		logger.Warn("unknown datasource %d, defaulting to web search", decision.Datasource)
		outcome = d.retrieveWeb(ctx, query)
	}

	outcome.Query = query
	outcome.Decision = decision
	return outcome
}

func (d *Dispatcher) retrieveLocal(ctx context.Context, query string, retriever LocalRetriever) Outcome {
	if retriever == nil {
		logger.Warn("no local retriever configured")
		return Outcome{
			Context:       "No local documents available.",
			Sources:       []SourceRef{},
			RetrievalType: RetrievalLocal,
			Err:           "No local retriever configured",
		}
	}

	docs, err := retriever.GetRelevantDocuments(ctx, query)
	if err != nil {
		logger.Error("local retrieval failed: %v", err)
		return Outcome{
			Context:       fmt.Sprintf("Error retrieving local documents: %v", err),
			Sources:       []SourceRef{},
			RetrievalType: RetrievalLocal,
			Err:           err.Error(),
		}
	}

	if len(docs) == 0 {
		return Outcome{
			Context:       "No relevant documents found in uploaded files.",
			Sources:       []SourceRef{},
			RetrievalType: RetrievalLocal,
		}
	}

	var sb strings.Builder
	sb.WriteString("=== LOCAL DOCUMENT RESULTS ===\n\n")
	sources := make([]SourceRef, 0, len(docs))

	for i, doc := range docs {
		writeLocalBlock(&sb, i+1, "Document", doc)
		sources = append(sources, localSourceRef(doc))
	}

	logger.Info("retrieved %d local documents", len(docs))
	return Outcome{
		Context:       sb.String(),
		Sources:       sources,
		RetrievalType: RetrievalLocal,
		Counts:        Counts{Local: len(docs), Total: len(docs)},
	}
}

func (d *Dispatcher) retrieveWeb(ctx context.Context, query string) Outcome {
	if d.chain == nil {
		logger.Warn("web search not enabled")
		return Outcome{
			Context:       "Web search is not enabled.",
			Sources:       []SourceRef{},
			RetrievalType: RetrievalWeb,
			Err:           "Web search not enabled",
		}
	}

	results := d.searchWeb(ctx, query)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== WEB SEARCH RESULTS (As of %s) ===\n\n", d.now().Format("January 2, 2006")))
	sb.WriteString("Search Query: " + query + "\n")
	sb.WriteString(strings.Repeat("=", 70) + "\n\n")

	sources := make([]SourceRef, 0, len(results))
	for i, result := range results {
		writeWebBlock(&sb, i+1, result)
		sources = append(sources, webSourceRef(result))
	}

	logger.Info("retrieved %d web search results", len(results))
	return Outcome{
		Context:       sb.String(),
		Sources:       sources,
		RetrievalType: RetrievalWeb,
		Counts:        Counts{Web: len(results), Total: len(results)},
		RawResults:    results,
	}
}

func (d *Dispatcher) retrieveHybrid(ctx context.Context, query string, retriever LocalRetriever) Outcome {
	var (
		wg       sync.WaitGroup
		docs     []DocumentChunk
		localErr error
		results  []search.Result
	)

	// The two sides touch disjoint data; run them concurrently and let
	// each fail on its own. Each goroutine recovers its own panics:
	// a deferred recover on the caller cannot reach them.
	if retriever != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					localErr = fmt.Errorf("local retrieval panic: %v", rec)
				}
			}()
			docs, localErr = retriever.GetRelevantDocuments(ctx, query)
		}()
	}

	if d.chain != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("hybrid: web search panic: %v", rec)
					results = nil
				}
			}()
			results = d.searchWeb(ctx, query)
		}()
	}

	wg.Wait()

	if localErr != nil {
		logger.Warn("hybrid: local retrieval failed: %v", localErr)
		docs = nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== HYBRID RETRIEVAL RESULTS (As of %s) ===\n\n", d.now().Format("January 2, 2006")))

	sb.WriteString("LOCAL DOCUMENTS:\n")
	sb.WriteString(strings.Repeat("-", 70) + "\n")
	if len(docs) > 0 {
		for i, doc := range docs {
			writeLocalBlock(&sb, i+1, "Local", doc)
		}
	} else {
		sb.WriteString("No local documents found.\n\n")
	}

	sb.WriteString("\nWEB SEARCH RESULTS:\n")
	sb.WriteString(strings.Repeat("-", 70) + "\n")
	if len(results) > 0 {
		for i, result := range results {
			sb.WriteString(fmt.Sprintf("[Web %d] %s (%s)\n", i+1, result.Title, result.Source))
			if result.URL != "" {
				sb.WriteString("URL: " + result.URL + "\n")
			}
			sb.WriteString("Content: " + result.Content() + "\n\n")
		}
	} else {
		sb.WriteString("No web results found.\n\n")
	}

	sources := make([]SourceRef, 0, len(docs)+len(results))
	for _, doc := range docs {
		sources = append(sources, localSourceRef(doc))
	}
	for _, result := range results {
		sources = append(sources, webSourceRef(result))
	}

	logger.Info("hybrid retrieval: %d local + %d web", len(docs), len(results))
	return Outcome{
		Context:       sb.String(),
		Sources:       sources,
		RetrievalType: RetrievalHybrid,
		Counts:        Counts{Local: len(docs), Web: len(results), Total: len(docs) + len(results)},
		RawResults:    results,
	}
}

// searchWeb runs the chain and applies optional content enrichment.
func (d *Dispatcher) searchWeb(ctx context.Context, query string) []search.Result {
	results := d.chain.Search(ctx, query, d.maxResults)
	if d.fetcher != nil {
		results = d.fetcher.Enrich(ctx, results)
	}
	return results
}

func writeLocalBlock(sb *strings.Builder, n int, label string, doc DocumentChunk) {
	sb.WriteString(fmt.Sprintf("[%s %d] %s\n", label, n, doc.SourceID))
	if doc.Page != "" {
		sb.WriteString("Page: " + doc.Page + " | ")
	}
	if doc.Chunk != "" {
		sb.WriteString("Chunk: " + doc.Chunk + "\n")
	} else if doc.Page != "" {
		sb.WriteString("\n")
	}
	sb.WriteString("Content: " + doc.Content + "\n\n")
}

func writeWebBlock(sb *strings.Builder, n int, result search.Result) {
	sb.WriteString(fmt.Sprintf("[Result %d] (%s - %s)\n", n, result.Source, result.Kind))
	sb.WriteString("Title: " + result.Title + "\n")
	if result.URL != "" {
		sb.WriteString("URL: " + result.URL + "\n")
	}
	sb.WriteString("Content:\n" + result.Content() + "\n")
	sb.WriteString(strings.Repeat("-", 70) + "\n\n")
}

func localSourceRef(doc DocumentChunk) SourceRef {
	return SourceRef{
		Type:     SourceLocal,
		SourceID: doc.SourceID,
		Page:     doc.Page,
		Chunk:    doc.Chunk,
		Content:  doc.Content,
	}
}

func webSourceRef(result search.Result) SourceRef {
	return SourceRef{
		Type:     SourceWeb,
		Title:    result.Title,
		URL:      result.URL,
		Snippet:  result.Snippet,
		Content:  result.Content(),
		Provider: result.Source,
		Kind:     string(result.Kind),
	}
}
