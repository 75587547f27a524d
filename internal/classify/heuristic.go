package classify

import "strings"

// Keyword lists for the no-LLM fallback path.
var documentKeywords = []string{
	"my document", "my file", "my pdf", "my paper",
	"the document", "the file", "the pdf", "uploaded file",
	"in my document", "according to my document",
	"what does my", "summarize my", "analyze my",
}

var webKeywords = []string{
	"latest", "current", "recent", "news", "today", "now",
	"what is", "what are", "explain", "define", "how does",
	"weather", "temperature", "forecast",
	"2025", "2024", "this year",
}

var generalKnowledgePatterns = []string{
	"what is", "what are", "who is", "who are",
	"explain", "how does", "how do", "how to",
	"define", "definition of",
	"tell me about", "describe",
	"why", "when", "where",
	"weather", "temperature", "forecast",
	"news", "latest", "current", "recent",
	"history of", "background on",
}

var documentIndicators = []string{
	"my document", "my file", "my pdf", "my paper",
	"the document", "the file", "the pdf", "the paper",
	"uploaded", "attachment",
	"according to my", "based on my",
	"in my file", "in the document",
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// isGeneralKnowledge reports whether a query should go to the web even
// when documents are uploaded. Anything that does not explicitly
// reference a document counts as general knowledge.
func isGeneralKnowledge(query string) bool {
	lower := strings.ToLower(query)

	if containsAny(lower, documentIndicators) {
		return false
	}
	if containsAny(lower, generalKnowledgePatterns) {
		return true
	}
	return true
}

// hasExplicitDocReference reports whether the query names an uploaded
// document outright.
func hasExplicitDocReference(query string) bool {
	return containsAny(strings.ToLower(query), documentKeywords)
}

// heuristicClassify routes with keyword predicates only. Used when the
// LLM backend is missing or failed.
func heuristicClassify(query string, hasLocalDocs bool) Decision {
	lower := strings.ToLower(query)

	hasDocRef := containsAny(lower, documentKeywords)
	hasWebIntent := containsAny(lower, webKeywords)

	if !hasLocalDocs {
		return Decision{
			Datasource: DatasourceWeb,
			Reasoning:  "No local documents available - using web search",
			Confidence: 0.9,
		}
	}

	if hasDocRef {
		if hasWebIntent {
			return Decision{
				Datasource: DatasourceHybrid,
				Reasoning:  "Query mentions both uploaded documents and external information",
				Confidence: 0.75,
			}
		}
		return Decision{
			Datasource: DatasourceLocal,
			Reasoning:  "Query explicitly references uploaded documents",
			Confidence: 0.85,
		}
	}

	if hasWebIntent || isGeneralKnowledge(query) {
		return Decision{
			Datasource: DatasourceWeb,
			Reasoning:  "General knowledge or external information query",
			Confidence: 0.8,
		}
	}

	return Decision{
		Datasource: DatasourceWeb,
		Reasoning:  "General query - using web search by default",
		Confidence: 0.7,
	}
}
