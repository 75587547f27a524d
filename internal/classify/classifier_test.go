package classify

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) Name() string { return "fake" }

func TestClassifyNilCompleterUsesHeuristic(t *testing.T) {
	c := NewClassifier(nil)

	d := c.Classify(context.Background(), "What is the weather in Tokyo?", false)
	if d.Datasource != DatasourceWeb {
		t.Fatalf("expected web_search, got %s", d.Datasource)
	}
	if d.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", d.Confidence)
	}
}

func TestClassifyBackendErrorFallsBackToHeuristic(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("rate limited")}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "Summarize my uploaded PDF", true)
	if fc.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", fc.calls)
	}
	if d.Datasource != DatasourceLocal {
		t.Fatalf("expected local_rag from heuristic, got %s", d.Datasource)
	}
}

func TestClassifyNoDocsOverridesLocalToWeb(t *testing.T) {
	fc := &fakeCompleter{reply: `{"datasource": "local_rag", "reasoning": "mentions a file", "confidence": 0.95}`}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "What does my file say?", false)
	if d.Datasource != DatasourceWeb {
		t.Fatalf("expected override to web_search, got %s", d.Datasource)
	}
	if d.Confidence != 0.9 {
		t.Fatalf("expected override confidence 0.9, got %v", d.Confidence)
	}
}

func TestClassifyNoDocsOverridesHybridToWeb(t *testing.T) {
	fc := &fakeCompleter{reply: `{"datasource": "hybrid", "reasoning": "both", "confidence": 0.8}`}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "Compare my notes with current standards", false)
	if d.Datasource != DatasourceWeb {
		t.Fatalf("expected override to web_search, got %s", d.Datasource)
	}
}

func TestClassifyGeneralKnowledgeOverridesLocal(t *testing.T) {
	fc := &fakeCompleter{reply: `{"datasource": "local_rag", "reasoning": "model guess", "confidence": 0.6}`}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "What is quantum computing?", true)
	if d.Datasource != DatasourceWeb {
		t.Fatalf("expected override to web_search, got %s", d.Datasource)
	}
	if d.Confidence != 0.85 {
		t.Fatalf("expected override confidence 0.85, got %v", d.Confidence)
	}
}

func TestClassifyExplicitDocReferenceBlocksOverride(t *testing.T) {
	fc := &fakeCompleter{reply: `{"datasource": "local_rag", "reasoning": "asks about the user's own report", "confidence": 0.9}`}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "Summarize my report findings", true)
	if d.Datasource != DatasourceLocal {
		t.Fatalf("explicit document reference must not be overridden, got %s", d.Datasource)
	}
	if d.Confidence != 0.9 {
		t.Fatalf("expected model confidence preserved, got %v", d.Confidence)
	}
}

func TestClassifyKeepsLocalForExplicitDocQuery(t *testing.T) {
	fc := &fakeCompleter{reply: `{"datasource": "local_rag", "reasoning": "explicit document reference", "confidence": 0.93}`}
	c := NewClassifier(fc)

	d := c.Classify(context.Background(), "Summarize my uploaded PDF", true)
	if d.Datasource != DatasourceLocal {
		t.Fatalf("expected local_rag, got %s", d.Datasource)
	}
	if d.Confidence != 0.93 {
		t.Fatalf("expected model confidence preserved, got %v", d.Confidence)
	}
}

func TestHeuristicClassify(t *testing.T) {
	cases := []struct {
		name         string
		query        string
		hasLocalDocs bool
		want         Datasource
	}{
		{"no docs forces web", "Summarize my uploaded PDF", false, DatasourceWeb},
		{"explicit doc reference", "Summarize my uploaded PDF", true, DatasourceLocal},
		{"doc plus web intent", "Compare the latest news with my document", true, DatasourceHybrid},
		{"general knowledge with docs", "What is the weather in Tokyo?", true, DatasourceWeb},
		{"plain query defaults to web", "bananas", true, DatasourceWeb},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := heuristicClassify(tc.query, tc.hasLocalDocs)
			if d.Datasource != tc.want {
				t.Fatalf("heuristicClassify(%q, %v) = %s, want %s",
					tc.query, tc.hasLocalDocs, d.Datasource, tc.want)
			}
			if d.Confidence <= 0 || d.Confidence > 1 {
				t.Fatalf("confidence out of range: %v", d.Confidence)
			}
			if d.Reasoning == "" {
				t.Fatal("expected non-empty reasoning")
			}
		})
	}
}

func TestIsGeneralKnowledge(t *testing.T) {
	if !isGeneralKnowledge("What is quantum computing?") {
		t.Fatal("expected general knowledge")
	}
	if isGeneralKnowledge("What does my document say about pricing?") {
		t.Fatal("document reference should not be general knowledge")
	}
}
