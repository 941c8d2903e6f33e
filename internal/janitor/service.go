// Package janitor runs periodic housekeeping on the local database.
package janitor

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// PruneInterval is the time between prune cycles.
	PruneInterval = 24 * time.Hour

	// CacheMaxAge is how long a cached analysis response is reused.
	CacheMaxAge = 30 * 24 * time.Hour
)

// CachePruner deletes cached analysis responses older than a given age.
type CachePruner interface {
	PruneAnalysisCache(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Service prunes the analysis cache on a fixed interval.
type Service struct {
	store    CachePruner
	interval time.Duration
	maxAge   time.Duration
}

// NewService creates a janitor with the default interval and cache age.
func NewService(store CachePruner) *Service {
	return &Service{
		store:    store,
		interval: PruneInterval,
		maxAge:   CacheMaxAge,
	}
}

// WithInterval overrides how often pruning runs.
func (s *Service) WithInterval(d time.Duration) *Service {
	s.interval = d
	return s
}

// WithMaxAge overrides how old a cache entry may get.
func (s *Service) WithMaxAge(d time.Duration) *Service {
	s.maxAge = d
	return s
}

// Run prunes once and then on every tick. It blocks until the context is
// cancelled.
func (s *Service) Run(ctx context.Context) {
	log.Info().Dur("interval", s.interval).Dur("maxAge", s.maxAge).Msg("starting janitor service")

	s.prune(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("janitor service stopped")
			return
		case <-ticker.C:
			s.prune(ctx)
		}
	}
}

func (s *Service) prune(ctx context.Context) {
	count, err := s.store.PruneAnalysisCache(ctx, s.maxAge)
	if err != nil {
		log.Error().Err(err).Msg("failed to prune analysis cache")
		return
	}
	if count > 0 {
		log.Info().Int64("pruned", count).Msg("pruned old analysis cache entries")
	}
}
