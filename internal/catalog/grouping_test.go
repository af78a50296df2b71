package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *Engine {
	return NewEngine(NewSynonymTable(), DefaultGroupingConfig())
}

// assertPartition checks that every input image appears in exactly one group.
func assertPartition(t *testing.T, analyses []ImageAnalysis, groups []FurnitureGroup) {
	t.Helper()

	seen := make(map[string]int)
	for _, g := range groups {
		assert.Equal(t, len(g.ImageIDs), len(g.Members), "group %s ids and members out of sync", g.ID)
		for _, id := range g.ImageIDs {
			seen[id]++
		}
	}
	for _, a := range analyses {
		assert.Equal(t, 1, seen[a.ImageID], "image %s should appear in exactly one group", a.ImageID)
	}
	total := 0
	for _, g := range groups {
		total += len(g.ImageIDs)
	}
	assert.Equal(t, len(analyses), total, "groups must not contain extra images")
}

func TestGroupMergesSamePiece(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Leather Sofa", Category: "Sofa", Color: "white", Style: "modern", Confidence: 0.9},
		{ImageID: "b", Title: "Ivory Couch", Category: "Couch", Color: "ivory", Style: "contemporary", Confidence: 0.8},
		{ImageID: "c", Title: "Oak Writing Desk", Category: "Desk", Color: "brown", Style: "mission", Confidence: 0.85},
	}

	groups := e.Group(analyses)

	require.Len(t, groups, 2)
	assertPartition(t, analyses, groups)
	assert.ElementsMatch(t, []string{"a", "b"}, groups[0].ImageIDs)
	assert.Equal(t, []string{"c"}, groups[1].ImageIDs)
}

func TestGroupKeepsDistinctPiecesApart(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "Red Leather Recliner", Category: "Chair", Color: "red", Confidence: 0.9},
		{ImageID: "b", Title: "Glass Coffee Table", Category: "Table", Color: "clear", Confidence: 0.9},
		{ImageID: "c", Title: "Queen Bed Frame", Category: "Bed", Color: "black", Confidence: 0.9},
	}

	groups := e.Group(analyses)

	assert.Len(t, groups, 3)
	assertPartition(t, analyses, groups)
}

func TestGroupMalformedAnalysesStaySingletons(t *testing.T) {
	e := newTestEngine()
	// Empty analyses score 0 against everything, including each other
	analyses := []ImageAnalysis{
		{ImageID: "a"},
		{ImageID: "b"},
		{ImageID: "c", Title: "Gray Sofa", Category: "Sofa", Color: "gray"},
	}

	groups := e.Group(analyses)

	assert.Len(t, groups, 3)
	assertPartition(t, analyses, groups)
}

func TestGroupAggregatesFromRepresentative(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Sofa", Category: "Sofa", Color: "white", Confidence: 0.6},
		{ImageID: "b", Title: "Ivory Couch", Category: "Sofa", Color: "ivory", Confidence: 0.9},
	}

	groups := e.Group(analyses)

	require.Len(t, groups, 1)
	g := groups[0]
	// Highest-confidence member provides the aggregate fields
	assert.Equal(t, "Ivory Couch", g.Title)
	assert.InDelta(t, 0.75, g.Confidence, 1e-9)
}

func TestGroupWithDecisionAppliesProposal(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Sofa", Confidence: 0.9},
		{ImageID: "b", Title: "White Sofa Side", Confidence: 0.8},
		{ImageID: "c", Title: "Oak Desk", Confidence: 0.85},
	}

	groups := e.GroupWithDecision(analyses, [][]string{{"a", "b"}, {"c"}})

	require.Len(t, groups, 2)
	assertPartition(t, analyses, groups)
	assert.Equal(t, []string{"a", "b"}, groups[0].ImageIDs)
}

func TestGroupWithDecisionCorrectsOmissions(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Sofa", Confidence: 0.9},
		{ImageID: "b", Title: "Oak Desk", Confidence: 0.8},
		{ImageID: "c", Title: "Bookshelf", Confidence: 0.7},
	}

	// Proposal forgot image c entirely
	groups := e.GroupWithDecision(analyses, [][]string{{"a"}, {"b"}})

	require.Len(t, groups, 3)
	assertPartition(t, analyses, groups)
	assert.Equal(t, []string{"c"}, groups[2].ImageIDs)
}

func TestGroupWithDecisionCorrectsDuplicates(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Sofa", Confidence: 0.9},
		{ImageID: "b", Title: "Oak Desk", Confidence: 0.8},
	}

	// Proposal places a in two groups; first placement wins
	groups := e.GroupWithDecision(analyses, [][]string{{"a", "b"}, {"a"}})

	require.Len(t, groups, 1)
	assertPartition(t, analyses, groups)
	assert.Equal(t, []string{"a", "b"}, groups[0].ImageIDs)
}

func TestGroupWithDecisionDropsUnknownIDs(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "a", Title: "White Sofa", Confidence: 0.9},
	}

	groups := e.GroupWithDecision(analyses, [][]string{{"a", "ghost"}})

	require.Len(t, groups, 1)
	assertPartition(t, analyses, groups)
	assert.Equal(t, []string{"a"}, groups[0].ImageIDs)
}

func TestGroupJoinsBestScoringGroup(t *testing.T) {
	e := newTestEngine()
	analyses := []ImageAnalysis{
		{ImageID: "b", Title: "Queen Bed Frame", Category: "Bed", Color: "black", Confidence: 0.9},
		{ImageID: "c", Title: "Glass Coffee Table", Category: "Table", Color: "clear", Confidence: 0.9},
		{ImageID: "d", Title: "Queen Bed Frame", Category: "Bed", Color: "black", Confidence: 0.9},
	}

	groups := e.Group(analyses)

	require.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{"b", "d"}, groups[0].ImageIDs)
}
