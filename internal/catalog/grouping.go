package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// GroupingConfig holds the clustering thresholds. The defaults are
// empirically tuned and deliberately aggressive: listing the same piece
// twice is worse for sellers than occasionally merging two similar pieces,
// so the engine leans toward over-grouping.
type GroupingConfig struct {
	// MergeThreshold merges on similarity alone.
	MergeThreshold float64
	// CategoryThreshold merges when the canonical category also matches.
	CategoryThreshold float64
	// TypeThreshold merges when the canonical furniture type also matches.
	TypeThreshold float64
}

// DefaultGroupingConfig returns the tuned production thresholds.
func DefaultGroupingConfig() GroupingConfig {
	return GroupingConfig{
		MergeThreshold:    0.7,
		CategoryThreshold: 0.6,
		TypeThreshold:     0.5,
	}
}

// Engine partitions image analyses into furniture groups. Its output is
// always a strict partition of the input: every image lands in exactly one
// group, regardless of how malformed the analyses or the AI's grouping
// proposal are.
type Engine struct {
	syn    *SynonymTable
	scorer *Scorer
	cfg    GroupingConfig
}

// NewEngine creates a grouping engine.
func NewEngine(syn *SynonymTable, cfg GroupingConfig) *Engine {
	return &Engine{syn: syn, scorer: NewScorer(syn), cfg: cfg}
}

// Group clusters analyses greedily in input order: each unassigned image is
// compared against the representative (first member) of every existing group
// and joins the best-scoring group that clears a threshold, earliest group
// winning ties. Unmatched images start new singleton groups.
func (e *Engine) Group(analyses []ImageAnalysis) []FurnitureGroup {
	var groups []FurnitureGroup

	for _, a := range analyses {
		bestIdx := -1
		bestScore := 0.0

		for i := range groups {
			rep := &groups[i].Members[0]
			score := e.scorer.Score(&a, rep)
			if !e.shouldMerge(&a, rep, score) {
				continue
			}
			// Strictly greater keeps the earliest group on ties.
			if score > bestScore || bestIdx == -1 {
				bestIdx = i
				bestScore = score
			}
		}

		if bestIdx >= 0 {
			groups[bestIdx].Members = append(groups[bestIdx].Members, a)
			groups[bestIdx].ImageIDs = append(groups[bestIdx].ImageIDs, a.ImageID)
			log.Debug().
				Str("imageID", a.ImageID).
				Str("groupID", groups[bestIdx].ID).
				Float64("score", bestScore).
				Msg("image joined existing group")
			continue
		}

		groups = append(groups, e.newGroup(a))
	}

	for i := range groups {
		e.finalize(&groups[i])
	}
	return groups
}

// shouldMerge applies the tiered thresholds: high similarity alone, moderate
// similarity plus category agreement, or low similarity plus furniture-type
// agreement.
func (e *Engine) shouldMerge(a, rep *ImageAnalysis, score float64) bool {
	if score >= e.cfg.MergeThreshold {
		return true
	}
	if score >= e.cfg.CategoryThreshold {
		ca, cb := e.scorer.categoryKey(a), e.scorer.categoryKey(rep)
		if ca != "" && ca == cb {
			return true
		}
	}
	if score >= e.cfg.TypeThreshold {
		ta, tb := e.syn.TypeOf(a), e.syn.TypeOf(rep)
		if ta != "" && ta == tb {
			return true
		}
	}
	return false
}

// GroupWithDecision applies a grouping proposed by the holistic AI call,
// correcting it so the result strictly partitions the input: image IDs the
// proposal never mentions become singleton groups, duplicate memberships
// keep only their first occurrence, and unknown IDs are dropped.
func (e *Engine) GroupWithDecision(analyses []ImageAnalysis, proposed [][]string) []FurnitureGroup {
	byID := make(map[string]ImageAnalysis, len(analyses))
	for _, a := range analyses {
		byID[a.ImageID] = a
	}

	assigned := make(map[string]bool, len(analyses))
	var groups []FurnitureGroup

	for _, ids := range proposed {
		var members []ImageAnalysis
		for _, id := range ids {
			a, known := byID[id]
			if !known {
				log.Warn().Str("imageID", id).Msg("grouping proposal references unknown image")
				continue
			}
			if assigned[id] {
				log.Warn().Str("imageID", id).Msg("grouping proposal duplicates image, keeping first placement")
				continue
			}
			assigned[id] = true
			members = append(members, a)
		}
		if len(members) == 0 {
			continue
		}
		g := e.newGroup(members[0])
		for _, m := range members[1:] {
			g.Members = append(g.Members, m)
			g.ImageIDs = append(g.ImageIDs, m.ImageID)
		}
		groups = append(groups, g)
	}

	// Images the proposal omitted become singletons, in input order.
	for _, a := range analyses {
		if !assigned[a.ImageID] {
			log.Warn().Str("imageID", a.ImageID).Msg("grouping proposal omitted image, creating singleton group")
			groups = append(groups, e.newGroup(a))
		}
	}

	for i := range groups {
		e.finalize(&groups[i])
	}
	return groups
}

func (e *Engine) newGroup(a ImageAnalysis) FurnitureGroup {
	return FurnitureGroup{
		ID:       uuid.NewString(),
		ImageIDs: []string{a.ImageID},
		Members:  []ImageAnalysis{a},
	}
}

// finalize fills the group's aggregate fields from its representative.
func (e *Engine) finalize(g *FurnitureGroup) {
	rep := g.Representative()
	if rep == nil {
		return
	}
	g.Category = rep.Category
	g.Color = rep.Color
	g.Title = rep.Title
	var sum float64
	for _, m := range g.Members {
		sum += m.Confidence
	}
	g.Confidence = sum / float64(len(g.Members))
	if g.Reasoning == "" && len(g.Members) > 1 {
		g.Reasoning = fmt.Sprintf("%d photos grouped by attribute similarity", len(g.Members))
	}
}
