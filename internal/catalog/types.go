package catalog

import (
	"context"
	"time"
)

// SourceImage is one uploaded photo handed to the pipeline.
type SourceImage struct {
	ID   string // stable identifier assigned by the upload layer
	Name string // original filename, used in exports
	Data []byte
}

// ImageAnalysis holds the structured attributes extracted from one image.
// It is immutable once produced by an analyzer tier.
type ImageAnalysis struct {
	ImageID     string  `json:"image_id"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory"`
	Color       string  `json:"color"`
	Material    string  `json:"material"`
	Style       string  `json:"style"`
	Condition   string  `json:"condition"`
	Price       float64 `json:"price"`
	Confidence  float64 `json:"confidence"`
	Reasoning   string  `json:"reasoning"`
}

// FurnitureGroup is a set of images judged to depict the same physical piece.
// Members reference analyses by value; images stay owned by the upload layer.
type FurnitureGroup struct {
	ID         string          `json:"id"`
	ImageIDs   []string        `json:"image_ids"`
	Members    []ImageAnalysis `json:"members"`
	Category   string          `json:"category"`
	Color      string          `json:"color"`
	Title      string          `json:"title"`
	Confidence float64         `json:"confidence"`
	Reasoning  string          `json:"reasoning,omitempty"`
}

// Representative returns the member used for the group's aggregate fields:
// the highest-confidence analysis, first member winning ties.
func (g *FurnitureGroup) Representative() *ImageAnalysis {
	if len(g.Members) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(g.Members); i++ {
		if g.Members[i].Confidence > g.Members[best].Confidence {
			best = i
		}
	}
	return &g.Members[best]
}

// Listing is the final marketplace-ready record produced from one group.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Price       float64   `json:"price"`
	Condition   string    `json:"condition"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	ImageIDs    []string  `json:"image_ids"`
	PhotoCount  int       `json:"photo_count"`
	Confidence  float64   `json:"confidence"`
	Tier        Tier      `json:"analysis_tier"`
	CreatedAt   time.Time `json:"created_at"`
}

// HolisticResult is the outcome of a single batch analyze-and-group call.
type HolisticResult struct {
	Analyses []ImageAnalysis
	Groups   [][]string // image IDs, one slice per proposed group
}

// Analyzer is the external vision/LLM capability consumed by the
// orchestrator. Implementations live outside this package and are injected
// at construction so tests can substitute fakes.
type Analyzer interface {
	// AnalyzeImage extracts structured attributes from a single image.
	AnalyzeImage(ctx context.Context, img SourceImage) (*ImageAnalysis, error)
	// AnalyzeAndGroup analyzes a whole batch in one call and proposes a
	// grouping of the images into physical items.
	AnalyzeAndGroup(ctx context.Context, imgs []SourceImage) (*HolisticResult, error)
}

// Result is what the pipeline returns for one batch of images. Every input
// image is covered by exactly one group and one listing.
type Result struct {
	RequestID   string           `json:"request_id"`
	Analyses    []ImageAnalysis  `json:"analyses"`
	Groups      []FurnitureGroup `json:"groups"`
	Listings    []Listing        `json:"listings"`
	TierByImage map[string]Tier  `json:"tier_by_image"`
	TiersUsed   []Tier           `json:"tiers_used"`
	Warning     string           `json:"warning,omitempty"`
}
