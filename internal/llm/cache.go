package llm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/raine/platescan/internal/analysis"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/storage"
	"github.com/raine/platescan/internal/stream"
	"github.com/rs/zerolog/log"
)

// CachedAnalyzer wraps a Transcriber with SQLite caching. Raw transcripts are
// cached, so a hit is parsed again with the current parser.
type CachedAnalyzer struct {
	inner Transcriber
	store storage.CacheStore
}

// NewCachedAnalyzer creates a cached analyzer.
func NewCachedAnalyzer(inner Transcriber, store storage.CacheStore) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, store: store}
}

// cacheKey hashes the image together with the medication list, since alerts
// depend on both.
func cacheKey(image []byte, meds []models.Medication) string {
	h := sha256.New()
	// Length prefix prevents boundary collisions between image and meds.
	binary.Write(h, binary.LittleEndian, int64(len(image)))
	h.Write(image)
	if len(meds) > 0 {
		normalized := make([]models.Medication, len(meds))
		for i, m := range meds {
			normalized[i] = m.Normalized()
		}
		b, _ := json.Marshal(normalized)
		h.Write(b)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedAnalyzer) Transcribe(ctx context.Context, image []byte, meds []models.Medication) (stream.Transcript, error) {
	key := cacheKey(image, meds)

	if c.store != nil {
		cached, err := c.store.GetAnalysisCache(ctx, key)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check analysis cache")
		} else if cached != nil {
			log.Debug().Str("hash", key[:16]).Msg("analysis cache hit")
			return stream.Transcript{Analysis: cached.Analysis, Alerts: cached.Alerts}, nil
		}
	}

	t, err := c.inner.Transcribe(ctx, image, meds)
	if err != nil {
		return stream.Transcript{}, err
	}

	// Empty answers are not cached.
	if c.store != nil && t.Analysis != "" {
		entry := &storage.CacheEntry{Analysis: t.Analysis, Alerts: t.Alerts}
		if err := c.store.SetAnalysisCache(ctx, key, entry); err != nil {
			log.Warn().Err(err).Msg("failed to cache analysis")
		} else {
			log.Debug().Str("hash", key[:16]).Msg("cached analysis")
		}
	}

	return t, nil
}

func (c *CachedAnalyzer) AnalyzeImage(ctx context.Context, image []byte, meds []models.Medication) (*analysis.Result, error) {
	return analyze(ctx, c, image, meds)
}
