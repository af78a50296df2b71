package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relist-app/relist/internal/catalog"
	"github.com/relist-app/relist/internal/storage"
)

// memStore is an in-memory Store for cache tests.
type memStore struct {
	cache map[string]*catalog.ImageAnalysis
}

func newMemStore() *memStore {
	return &memStore{cache: map[string]*catalog.ImageAnalysis{}}
}

func (m *memStore) GetVisionCache(hash string) (*catalog.ImageAnalysis, error) {
	if a, ok := m.cache[hash]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *memStore) SetVisionCache(hash string, a *catalog.ImageAnalysis) error {
	cp := *a
	m.cache[hash] = &cp
	return nil
}

func (m *memStore) SaveResult(*catalog.Result) error { return nil }

func (m *memStore) GetResult(string) (*catalog.Result, error) { return nil, nil }

func (m *memStore) ListResults(int) ([]storage.ResultSummary, error) { return nil, nil }

func (m *memStore) Close() error { return nil }

// countingAnalyzer records how often the inner analyzer is reached.
type countingAnalyzer struct {
	imageCalls int
	batchCalls int
}

func (c *countingAnalyzer) AnalyzeImage(ctx context.Context, img catalog.SourceImage) (*catalog.ImageAnalysis, error) {
	c.imageCalls++
	return &catalog.ImageAnalysis{ImageID: img.ID, Title: "Oak Desk", Confidence: 0.8}, nil
}

func (c *countingAnalyzer) AnalyzeAndGroup(ctx context.Context, imgs []catalog.SourceImage) (*catalog.HolisticResult, error) {
	c.batchCalls++
	return &catalog.HolisticResult{}, nil
}

func TestCachedAnalyzerHitSkipsInner(t *testing.T) {
	inner := &countingAnalyzer{}
	cached := NewCachedAnalyzer(inner, newMemStore())
	img := catalog.SourceImage{ID: "img_01", Data: []byte("photo bytes")}

	first, err := cached.AnalyzeImage(context.Background(), img)
	require.NoError(t, err)

	second, err := cached.AnalyzeImage(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.imageCalls)
	assert.Equal(t, first.Title, second.Title)
}

func TestCachedAnalyzerRewritesImageID(t *testing.T) {
	inner := &countingAnalyzer{}
	cached := NewCachedAnalyzer(inner, newMemStore())

	// Same bytes uploaded twice under different IDs
	_, err := cached.AnalyzeImage(context.Background(), catalog.SourceImage{ID: "img_01", Data: []byte("same")})
	require.NoError(t, err)

	hit, err := cached.AnalyzeImage(context.Background(), catalog.SourceImage{ID: "img_07", Data: []byte("same")})
	require.NoError(t, err)

	assert.Equal(t, "img_07", hit.ImageID)
}

func TestCachedAnalyzerDifferentImagesMiss(t *testing.T) {
	inner := &countingAnalyzer{}
	cached := NewCachedAnalyzer(inner, newMemStore())

	_, err := cached.AnalyzeImage(context.Background(), catalog.SourceImage{ID: "a", Data: []byte("one")})
	require.NoError(t, err)
	_, err = cached.AnalyzeImage(context.Background(), catalog.SourceImage{ID: "b", Data: []byte("two")})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.imageCalls)
}

func TestCachedAnalyzerBatchPassesThrough(t *testing.T) {
	inner := &countingAnalyzer{}
	cached := NewCachedAnalyzer(inner, newMemStore())
	imgs := []catalog.SourceImage{{ID: "a", Data: []byte("one")}}

	_, err := cached.AnalyzeAndGroup(context.Background(), imgs)
	require.NoError(t, err)
	_, err = cached.AnalyzeAndGroup(context.Background(), imgs)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.batchCalls)
}

func TestCachedAnalyzerNilStore(t *testing.T) {
	inner := &countingAnalyzer{}
	cached := NewCachedAnalyzer(inner, nil)

	_, err := cached.AnalyzeImage(context.Background(), catalog.SourceImage{ID: "a", Data: []byte("one")})
	require.NoError(t, err)
	assert.Equal(t, 1, inner.imageCalls)
}
