package classify

import (
	"context"
	"time"

	"github.com/kayz/sourcerouter/internal/logger"
)

const classifyTimeout = 20 * time.Second

const routerSystemPrompt = `You are an expert query router for a RAG system.
Analyze the user's query and determine the best data source(s) to use.

Available sources:
- local_rag: ONLY for questions EXPLICITLY about UPLOADED DOCUMENTS
- web_search: For ALL general knowledge, facts, definitions, current events, external information
- hybrid: ONLY when the query explicitly needs BOTH uploaded documents AND external web information

CRITICAL ROUTING RULES:

1. web_search (DEFAULT for most queries):
   - General knowledge questions (e.g., "What is X?", "Explain Y", "How does Z work?")
   - Current events, news, "latest", "recent", real-time data
   - Facts, definitions, explanations NOT about uploaded files
   - ANY question that doesn't explicitly mention documents

2. local_rag (ONLY when EXPLICITLY about documents):
   - Query mentions: "my document", "uploaded file", "the PDF", "in my paper"
   - Asks about: "what does my document say", "according to my file"

3. hybrid (Rare - only when BOTH needed):
   - "Compare my document with current industry standards"
   - Explicitly asks to combine document content with web information

Respond with ONLY a JSON object:
{
  "datasource": "local_rag" or "web_search" or "hybrid",
  "reasoning": "brief explanation",
  "confidence": 0.85
}

No other text, just the JSON.`

// ChatCompleter is the external classification capability: given a
// system prompt and a user message it returns the model's raw text.
type ChatCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// Classifier decides which datasource should answer a query. Classify
// never fails: when the LLM is unreachable or talks garbage it degrades
// to the keyword heuristic.
type Classifier struct {
	completer ChatCompleter
}

// NewClassifier wraps a chat completer. A nil completer is valid and
// means heuristic-only classification.
func NewClassifier(completer ChatCompleter) *Classifier {
	return &Classifier{completer: completer}
}

func (c *Classifier) Classify(ctx context.Context, query string, hasLocalDocs bool) Decision {
	if c.completer == nil {
		logger.Debug("no classifier backend configured, using heuristic")
		return heuristicClassify(query, hasLocalDocs)
	}

	contextInfo := "User has NO uploaded documents"
	if hasLocalDocs {
		contextInfo = "User has uploaded documents available"
	}
	userPrompt := "User Query: " + query + "\n\nContext: " + contextInfo + "\n\nRoute this query:"

	callCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	defer cancel()

	raw, err := c.completer.Complete(callCtx, routerSystemPrompt, userPrompt)
	if err != nil {
		logger.Warn("classifier backend %s failed: %v, using heuristic", c.completer.Name(), err)
		return heuristicClassify(query, hasLocalDocs)
	}

	decision := parseDecision(raw)
	return applyOverrides(decision, query, hasLocalDocs)
}

// applyOverrides enforces the deterministic rules that may reject the
// model's answer.
func applyOverrides(d Decision, query string, hasLocalDocs bool) Decision {
	if !hasLocalDocs && (d.Datasource == DatasourceLocal || d.Datasource == DatasourceHybrid) {
		logger.Info("no docs available, overriding %s to web_search", d.Datasource)
		return Decision{
			Datasource: DatasourceWeb,
			Reasoning:  "No local documents available - using web search",
			Confidence: 0.9,
		}
	}

	if hasLocalDocs && d.Datasource == DatasourceLocal &&
		isGeneralKnowledge(query) && !hasExplicitDocReference(query) {
		logger.Info("general knowledge query, overriding local_rag to web_search")
		return Decision{
			Datasource: DatasourceWeb,
			Reasoning:  "General knowledge question - using web search",
			Confidence: 0.85,
		}
	}

	return d
}
