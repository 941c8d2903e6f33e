package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// CacheEntry is a raw analysis response kept for reuse. The text is stored
// unparsed so parser changes apply to cached responses too.
type CacheEntry struct {
	Analysis string
	Alerts   []string
}

// GetAnalysisCache retrieves a cached response by key.
// Returns nil, nil if no cache entry exists.
func (s *SQLiteStore) GetAnalysisCache(ctx context.Context, key string) (*CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entry CacheEntry
	var alerts string
	err := s.db.QueryRowContext(ctx,
		"SELECT analysis, alerts FROM analysis_cache WHERE cache_key = ?",
		key,
	).Scan(&entry.Analysis, &alerts)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis cache: %w", err)
	}

	if err := json.Unmarshal([]byte(alerts), &entry.Alerts); err != nil {
		return nil, fmt.Errorf("failed to decode cached alerts: %w", err)
	}
	if len(entry.Alerts) == 0 {
		entry.Alerts = nil
	}

	return &entry, nil
}

// SetAnalysisCache stores a response in the cache, replacing any previous one.
func (s *SQLiteStore) SetAnalysisCache(ctx context.Context, key string, entry *CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := entry.Alerts
	if alerts == nil {
		alerts = []string{}
	}
	encoded, err := json.Marshal(alerts)
	if err != nil {
		return fmt.Errorf("failed to encode alerts: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_cache (cache_key, analysis, alerts)
		VALUES (?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			analysis = excluded.analysis,
			alerts = excluded.alerts,
			created_at = CURRENT_TIMESTAMP
	`, key, entry.Analysis, string(encoded))

	if err != nil {
		return fmt.Errorf("failed to cache analysis: %w", err)
	}
	return nil
}

// PruneAnalysisCache removes cache entries created more than olderThan ago
// and returns how many were deleted.
func (s *SQLiteStore) PruneAnalysisCache(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// created_at is written by SQLite as UTC text, so compare in that layout.
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.DateTime)
	result, err := s.db.ExecContext(ctx, `DELETE FROM analysis_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune analysis cache: %w", err)
	}

	return result.RowsAffected()
}
