package catalog

import "strings"

// Similarity boosts applied on top of the token Jaccard score. These were
// tuned empirically against real batches; treat them as calibration
// constants, not derived values.
const (
	categoryMatchBoost = 0.15
	colorMatchBoost    = 0.10
)

// Scorer computes a similarity score in [0,1] between two image analyses
// using canonicalized token overlap. It is pure: no I/O, no side effects,
// and symmetric in its arguments.
type Scorer struct {
	syn *SynonymTable
}

// NewScorer creates a scorer over the given synonym table.
func NewScorer(syn *SynonymTable) *Scorer {
	return &Scorer{syn: syn}
}

// Score returns the similarity between a and b. Two analyses with no usable
// tokens at all score 0, never 1 — items the AI failed to describe must not
// mass-merge with each other.
func (s *Scorer) Score(a, b *ImageAnalysis) float64 {
	ta := s.tokenSet(a)
	tb := s.tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	score := float64(inter) / float64(union)

	if ca, cb := s.categoryKey(a), s.categoryKey(b); ca != "" && ca == cb {
		score += categoryMatchBoost
	}
	if ca, cb := s.syn.CanonicalColor(a.Color), s.syn.CanonicalColor(b.Color); ca != "" && ca == cb {
		score += colorMatchBoost
	}

	if score > 1 {
		score = 1
	}
	return score
}

// tokenSet tokenizes title, category, color and style into a set of
// canonicalized words with stop words and single characters removed.
func (s *Scorer) tokenSet(a *ImageAnalysis) map[string]bool {
	set := make(map[string]bool)
	for _, field := range []string{a.Title, a.Category, a.Color, a.Style} {
		for _, w := range strings.Fields(strings.ToLower(field)) {
			w = strings.Trim(w, ".,;:!?()\"'")
			if len(w) < 2 || stopWords[w] {
				continue
			}
			set[s.syn.Canonical(w)] = true
		}
	}
	return set
}

// categoryKey is the canonical furniture category used for the exact-match
// boost. Falls back to the canonicalized raw category string when the
// category is outside the known type families.
func (s *Scorer) categoryKey(a *ImageAnalysis) string {
	if c := s.syn.CanonicalType(a.Category); c != "" {
		return c
	}
	return s.syn.Canonical(a.Category)
}
