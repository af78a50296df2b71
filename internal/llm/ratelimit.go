package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/relist-app/relist/internal/catalog"
)

// RateLimitedAnalyzer throttles calls to the underlying analyzer so a burst
// of uploads cannot exhaust the provider's request quota.
type RateLimitedAnalyzer struct {
	inner   catalog.Analyzer
	limiter *rate.Limiter
}

// NewRateLimitedAnalyzer wraps inner with a token bucket allowing rps
// requests per second with the given burst.
func NewRateLimitedAnalyzer(inner catalog.Analyzer, rps float64, burst int) *RateLimitedAnalyzer {
	return &RateLimitedAnalyzer{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// AnalyzeImage implements catalog.Analyzer, waiting for limiter capacity.
func (r *RateLimitedAnalyzer) AnalyzeImage(ctx context.Context, img catalog.SourceImage) (*catalog.ImageAnalysis, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.inner.AnalyzeImage(ctx, img)
}

// AnalyzeAndGroup implements catalog.Analyzer. A batch call counts as one
// request regardless of image count.
func (r *RateLimitedAnalyzer) AnalyzeAndGroup(ctx context.Context, imgs []catalog.SourceImage) (*catalog.HolisticResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}
	return r.inner.AnalyzeAndGroup(ctx, imgs)
}
