package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/rs/zerolog/log"

	"github.com/relist-app/relist/internal/catalog"
	"github.com/relist-app/relist/internal/storage"
)

// CachedAnalyzer wraps an Analyzer with SQLite caching of per-image results.
// Batch calls pass through uncached: the grouping proposal depends on the
// whole batch, so a cached single-image analysis cannot stand in for it.
type CachedAnalyzer struct {
	inner catalog.Analyzer
	store storage.Store
}

// NewCachedAnalyzer creates a cached analyzer.
func NewCachedAnalyzer(inner catalog.Analyzer, store storage.Store) *CachedAnalyzer {
	return &CachedAnalyzer{inner: inner, store: store}
}

// hashImage creates a SHA256 hash of the image bytes for cache keying.
func hashImage(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// AnalyzeImage implements catalog.Analyzer with caching.
func (c *CachedAnalyzer) AnalyzeImage(ctx context.Context, img catalog.SourceImage) (*catalog.ImageAnalysis, error) {
	hash := hashImage(img.Data)

	if c.store != nil {
		cached, err := c.store.GetVisionCache(hash)
		if err != nil {
			log.Warn().Err(err).Msg("failed to check vision cache")
		} else if cached != nil {
			log.Debug().Str("hash", hash[:16]).Msg("vision cache hit")
			// The same photo may arrive under a different upload ID.
			result := *cached
			result.ImageID = img.ID
			return &result, nil
		}
	}

	result, err := c.inner.AnalyzeImage(ctx, img)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.SetVisionCache(hash, result); err != nil {
			log.Warn().Err(err).Msg("failed to cache vision result")
		} else {
			log.Debug().Str("hash", hash[:16]).Msg("cached vision result")
		}
	}

	return result, nil
}

// AnalyzeAndGroup implements catalog.Analyzer, delegating without caching.
func (c *CachedAnalyzer) AnalyzeAndGroup(ctx context.Context, imgs []catalog.SourceImage) (*catalog.HolisticResult, error) {
	return c.inner.AnalyzeAndGroup(ctx, imgs)
}
