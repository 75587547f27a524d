package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kayz/sourcerouter/internal/logger"
	"github.com/kayz/sourcerouter/internal/search"
)

// Store is a SQLite-backed cache of provider search results, consulted
// by the chain before any network backend is tried. Rows expire after
// the configured TTL. Cache failures are logged and otherwise invisible
// to callers; a broken cache must never break a search.
type Store struct {
	db  *sql.DB
	ttl time.Duration
	mu  sync.RWMutex
}

func NewStore(path string, ttl time.Duration) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Store{db: db, ttl: ttl}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS search_results (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			result_limit INTEGER NOT NULL,
			results TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_search_results_key
			ON search_results(query, result_limit);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// Get returns cached results for a query if a fresh enough row exists.
func (s *Store) Get(ctx context.Context, query string, limit int) ([]search.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT results, created_at
		FROM search_results
		WHERE query = ? AND result_limit >= ?
		ORDER BY created_at DESC
		LIMIT 1
	`, query, limit)

	var raw, createdAt string
	if err := row.Scan(&raw, &createdAt); err != nil {
		if err != sql.ErrNoRows {
			logger.Warn("cache lookup failed: %v", err)
		}
		return nil, false
	}

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil || time.Since(t) > s.ttl {
		return nil, false
	}

	var results []search.Result
	if err := json.Unmarshal([]byte(raw), &results); err != nil {
		logger.Warn("cache row for %q is corrupt: %v", query, err)
		return nil, false
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results, len(results) > 0
}

// Put stores a result set and drops expired rows on the way.
func (s *Store) Put(ctx context.Context, query string, limit int, results []search.Result) {
	if len(results) == 0 {
		return
	}

	raw, err := json.Marshal(results)
	if err != nil {
		logger.Warn("cache encode failed: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO search_results (id, query, result_limit, results, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), query, limit, string(raw), now.Format(time.RFC3339))
	if err != nil {
		logger.Warn("cache write failed: %v", err)
		return
	}

	cutoff := now.Add(-s.ttl).Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM search_results WHERE created_at < ?`, cutoff); err != nil {
		logger.Debug("cache prune failed: %v", err)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}
