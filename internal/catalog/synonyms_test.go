package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalIsIdempotent(t *testing.T) {
	syn := NewSynonymTable()

	for _, term := range []string{"ivory", "couch", "contemporary", "walnut", "zebra"} {
		once := syn.Canonical(term)
		assert.Equal(t, once, syn.Canonical(once), "canonical form of %q should be stable", term)
	}
}

func TestCanonicalMapsAliases(t *testing.T) {
	syn := NewSynonymTable()

	tests := []struct {
		term string
		want string
	}{
		{"ivory", "white"},
		{"Off-White", "white"},
		{"couch", "sofa"},
		{"loveseat", "sofa"},
		{"contemporary", "modern"},
		{"craftsman", "mission"},
		{"charcoal", "gray"},
		{"grey", "gray"},
		{"unknownword", "unknownword"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, syn.Canonical(tt.term), "term %q", tt.term)
	}
}

func TestCanonicalColor(t *testing.T) {
	syn := NewSynonymTable()

	assert.Equal(t, "brown", syn.CanonicalColor("dark walnut brown"))
	assert.Equal(t, "white", syn.CanonicalColor("Cream"))
	assert.Equal(t, "", syn.CanonicalColor("psychedelic"))
	assert.Equal(t, "", syn.CanonicalColor(""))
}

func TestCanonicalTypePrefersWholePhrase(t *testing.T) {
	syn := NewSynonymTable()

	// "writing desk" is a desk alias even though "writing" alone matches nothing
	assert.Equal(t, "desk", syn.CanonicalType("writing desk"))
	assert.Equal(t, "desk", syn.CanonicalType("Computer Desk"))
	assert.Equal(t, "table", syn.CanonicalType("coffee table"))
	assert.Equal(t, "sofa", syn.CanonicalType("sectional"))
	assert.Equal(t, "", syn.CanonicalType("lamp"))
}

func TestTypeOfFallsBackThroughFields(t *testing.T) {
	syn := NewSynonymTable()

	a := &ImageAnalysis{Category: "Seating", Subcategory: "recliner"}
	assert.Equal(t, "chair", syn.TypeOf(a))

	b := &ImageAnalysis{Category: "Furniture", Title: "Vintage Oak Bookcase"}
	assert.Equal(t, "storage", syn.TypeOf(b))

	c := &ImageAnalysis{Category: "Furniture", Title: "Mystery Piece"}
	assert.Equal(t, "", syn.TypeOf(c))
}
