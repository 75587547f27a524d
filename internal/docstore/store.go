package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"

	"github.com/kayz/sourcerouter/internal/config"
	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/router"
)

const (
	collectionName = "sourcerouter-docs"
	maxChunkSize   = 1000
	defaultTopK    = 5
)

// Store is an embedded vector store over uploaded documents. It
// implements router.LocalRetriever, so the dispatcher can treat it like
// any other local retrieval backend.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	embedder   EmbeddingProvider
}

// NewStore opens (or creates) the persistent store. A disabled config
// returns (nil, nil); callers treat a nil store as "no local documents".
func NewStore(cfg config.DocStoreConfig) (*Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	embedder, err := NewEmbeddingProvider(cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create docstore directory: %w", err)
	}

	db, err := chromem.NewPersistentDB(filepath.Join(cfg.Dir, "chromem.db"), false)
	if err != nil {
		return nil, fmt.Errorf("failed to open docstore: %w", err)
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		embedder:   embedder,
	}, nil
}

// AddDocument chunks, embeds and stores one document under a source id.
// Page may be empty for unpaginated sources.
func (s *Store) AddDocument(ctx context.Context, sourceID, page, content string) error {
	chunks := splitIntoChunks(content)
	if len(chunks) == 0 {
		return nil
	}

	embeddings, err := s.embedder.CreateEmbedding(ctx, chunks)
	if err != nil {
		return fmt.Errorf("failed to embed document: %w", err)
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		metadata := map[string]string{
			"source": sourceID,
			"chunk":  strconv.Itoa(i),
		}
		if page != "" {
			metadata["page"] = page
		}

		docs = append(docs, chromem.Document{
			ID:        fmt.Sprintf("%s-%s-%d", sourceID, page, i),
			Embedding: embeddings[i],
			Metadata:  metadata,
			Content:   chunk,
		})
	}

	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}

	logger.Debug("docstore: added %s (%d chunks)", sourceID, len(chunks))
	return nil
}

// HasDocuments reports whether anything has been ingested.
func (s *Store) HasDocuments() bool {
	if s == nil {
		return false
	}
	return s.collection.Count() > 0
}

// GetRelevantDocuments returns the top chunks for a query, ranked by
// embedding similarity.
func (s *Store) GetRelevantDocuments(ctx context.Context, query string) ([]router.DocumentChunk, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}

	queryEmbedding, err := s.embedder.CreateEmbedding(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	topK := defaultTopK
	if topK > count {
		topK = count
	}

	results, err := s.collection.QueryEmbedding(ctx, queryEmbedding[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query docstore: %w", err)
	}

	chunks := make([]router.DocumentChunk, 0, len(results))
	for _, res := range results {
		chunks = append(chunks, router.DocumentChunk{
			Content:  res.Content,
			SourceID: res.Metadata["source"],
			Page:     res.Metadata["page"],
			Chunk:    res.Metadata["chunk"],
		})
	}

	logger.Debug("docstore: %d chunks for query %q", len(chunks), query)
	return chunks, nil
}

// splitIntoChunks breaks text on paragraph boundaries, then on
// sentences when a single paragraph exceeds the chunk size.
func splitIntoChunks(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	current := ""

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(current)+len(para)+2 <= maxChunkSize {
			if current != "" {
				current += "\n\n"
			}
			current += para
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if len(para) <= maxChunkSize {
			current = para
			continue
		}

		small := ""
		for _, sent := range strings.SplitAfter(para, ". ") {
			if len(small)+len(sent) <= maxChunkSize {
				small += sent
				continue
			}
			if small != "" {
				chunks = append(chunks, small)
			}
			small = sent
		}
		if small != "" {
			chunks = append(chunks, small)
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
