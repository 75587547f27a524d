package router

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kayz/sourcerouter/internal/classify"
	"github.com/kayz/sourcerouter/internal/logger"
)

// Router composes the classifier and the dispatcher and records one
// history entry per call. Route never propagates a failure: the worst
// case is an Outcome with Err set and degraded content.
type Router struct {
	classifier *classify.Classifier
	dispatcher *Dispatcher
	history    *History
}

func New(classifier *classify.Classifier, dispatcher *Dispatcher, historyLimit int) *Router {
	return &Router{
		classifier: classifier,
		dispatcher: dispatcher,
		history:    NewHistory(historyLimit),
	}
}

// Route classifies the query, dispatches retrieval and appends exactly
// one history entry, error outcomes included.
func (r *Router) Route(ctx context.Context, query string, retriever LocalRetriever, hasLocalDocs bool) (outcome Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("routing panic: %v", rec)
			outcome = Outcome{
				Query:         query,
				Decision:      defaultDecision(),
				Context:       fmt.Sprintf("Error during routing: %v", rec),
				Sources:       []SourceRef{},
				RetrievalType: RetrievalWeb,
				Err:           fmt.Sprintf("routing panic: %v", rec),
			}
		}
		r.record(outcome)
	}()

	logger.Info("routing query: %s", truncate(query, 50))

	decision := r.classify(ctx, query, hasLocalDocs)
	logger.Info("selected datasource: %s", decision.Datasource)

	return r.dispatcher.Retrieve(ctx, query, decision, retriever)
}

// classify isolates a structural fault in the classifier from the rest
// of the call; a panic degrades to the default web decision.
func (r *Router) classify(ctx context.Context, query string, hasLocalDocs bool) (decision classify.Decision) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("classifier panic: %v", rec)
			decision = defaultDecision()
		}
	}()
	return r.classifier.Classify(ctx, query, hasLocalDocs)
}

func defaultDecision() classify.Decision {
	return classify.Decision{
		Datasource: classify.DatasourceWeb,
		Reasoning:  "Default routing",
		Confidence: 0.5,
	}
}

func (r *Router) record(outcome Outcome) {
	r.history.Append(HistoryEntry{
		ID:            uuid.NewString(),
		Query:         outcome.Query,
		Datasource:    outcome.Decision.Datasource,
		Reasoning:     outcome.Decision.Reasoning,
		Confidence:    outcome.Decision.Confidence,
		RetrievalType: outcome.RetrievalType,
		SourceCount:   len(outcome.Sources),
		Err:           outcome.Err,
		Timestamp:     time.Now(),
	})
}

// History returns a copy of the routing log.
func (r *Router) History() []HistoryEntry {
	return r.history.Snapshot()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
