package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestScorer() *Scorer {
	return NewScorer(NewSynonymTable())
}

func TestScoreIdenticalAnalyses(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "White Leather Sofa", Category: "Sofa", Color: "white", Style: "modern"}

	assert.Equal(t, 1.0, s.Score(a, a))
}

func TestScoreIsSymmetric(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "Oak Writing Desk", Category: "Desk", Color: "brown", Style: "mission"}
	b := &ImageAnalysis{Title: "Wooden Computer Desk", Category: "Desk", Color: "walnut", Style: "craftsman"}

	assert.Equal(t, s.Score(a, b), s.Score(b, a))
}

func TestScoreBounds(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "Gray Sectional Sofa", Category: "Sofa", Color: "gray", Style: "modern"}
	b := &ImageAnalysis{Title: "Charcoal Couch", Category: "Couch", Color: "charcoal", Style: "contemporary"}

	score := s.Score(a, b)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}

func TestScoreEmptyAnalysesIsZero(t *testing.T) {
	s := newTestScorer()
	empty := &ImageAnalysis{}
	full := &ImageAnalysis{Title: "White Sofa", Category: "Sofa", Color: "white"}

	// Two items the AI failed to describe must not look identical
	assert.Equal(t, 0.0, s.Score(empty, empty))
	assert.Equal(t, 0.0, s.Score(empty, full))
}

func TestScoreSynonymsMatch(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "White Sofa", Category: "Sofa", Color: "white", Style: "modern"}
	b := &ImageAnalysis{Title: "Ivory Couch", Category: "Couch", Color: "ivory", Style: "contemporary"}

	// Same piece photographed twice with different vocabulary
	assert.GreaterOrEqual(t, s.Score(a, b), 0.7)
}

func TestScoreDifferentItemsStayLow(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "Red Leather Recliner", Category: "Chair", Color: "red", Style: "traditional"}
	b := &ImageAnalysis{Title: "Glass Coffee Table", Category: "Table", Color: "clear", Style: "modern"}

	assert.Less(t, s.Score(a, b), 0.5)
}

func TestScoreCategoryBoost(t *testing.T) {
	s := newTestScorer()
	a := &ImageAnalysis{Title: "Tall Oak Bookshelf", Category: "Bookshelf", Color: "brown"}
	b := &ImageAnalysis{Title: "Wide Pine Bookcase", Category: "Bookcase", Color: "tan"}

	withBoost := s.Score(a, b)

	c := &ImageAnalysis{Title: "Wide Pine Bookcase", Category: "Table", Color: "tan"}
	withoutBoost := s.Score(a, c)

	assert.Greater(t, withBoost, withoutBoost)
}
