package search

import "time"

// ResultKind distinguishes a synthesized direct answer from an ordinary
// web result.
type ResultKind string

const (
	KindAnswer ResultKind = "answer"
	KindWeb    ResultKind = "web"
)

type Result struct {
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Snippet     string     `json:"snippet"`
	FullContent string     `json:"full_content,omitempty"`
	Source      string     `json:"source"`
	Kind        ResultKind `json:"kind"`
	RetrievedAt time.Time  `json:"retrieved_at"`
}

// Content returns the best text available for a result: the fetched page
// content when present, the snippet otherwise.
func (r Result) Content() string {
	if r.FullContent != "" {
		return r.FullContent
	}
	return r.Snippet
}
