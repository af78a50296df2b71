package catalog

import "strings"

// Marketplace category paths keyed by furniture category.
var marketplaceCategories = map[string]string{
	"Chair":      "Home & Garden//Furniture//Chairs",
	"Table":      "Home & Garden//Furniture//Tables",
	"Sofa":       "Home & Garden//Furniture//Sofas & Loveseats",
	"Bed":        "Home & Garden//Furniture//Beds & Mattresses",
	"Desk":       "Home & Garden//Furniture//Desks",
	"Cabinet":    "Home & Garden//Furniture//Cabinets & Storage",
	"Bookshelf":  "Home & Garden//Furniture//Bookcases & Shelving",
	"Dresser":    "Home & Garden//Furniture//Dressers & Armoires",
	"Nightstand": "Home & Garden//Furniture//Nightstands",
	"Ottoman":    "Home & Garden//Furniture//Ottomans, Footrests & Poufs",
}

const fallbackMarketplaceCategory = "Home & Garden//Furniture"

// Baseline prices per category, used when no tier produced a price and the
// comparison search found too few comps.
var categoryBasePrices = map[string]float64{
	"Chair":     85,
	"Table":     140,
	"Sofa":      300,
	"Bed":       200,
	"Desk":      120,
	"Cabinet":   150,
	"Bookshelf": 80,
}

const defaultBasePrice = 100

// Template-tier defaults.
const (
	defaultTitle       = "Quality Furniture"
	defaultCondition   = "Good"
	defaultConfidence  = 0.5
	defaultDescription = "Quality furniture in good condition. Perfect for your home!"
)

// conditionLabels maps the AI's condition vocabulary to the marketplace's
// fixed condition values.
var conditionLabels = map[string]string{
	"new":       "New",
	"excellent": "Used - Like New",
	"like new":  "Used - Like New",
	"very good": "Used - Like New",
	"good":      "Used - Good",
	"fair":      "Used - Fair",
	"poor":      "Used - Fair",
}

// marketplaceCondition maps an AI condition assessment onto a marketplace
// condition label, defaulting to "Used - Good".
func marketplaceCondition(aiCondition string) string {
	if label, ok := conditionLabels[strings.ToLower(strings.TrimSpace(aiCondition))]; ok {
		return label
	}
	return "Used - Good"
}

// marketplaceCategory resolves the marketplace path for a category name.
func marketplaceCategory(category string) string {
	if path, ok := marketplaceCategories[category]; ok {
		return path
	}
	// Title-case single-word categories so "sofa" still resolves.
	c := strings.TrimSpace(category)
	if len(c) > 1 {
		titled := strings.ToUpper(c[:1]) + strings.ToLower(c[1:])
		if path, ok := marketplaceCategories[titled]; ok {
			return path
		}
	}
	return fallbackMarketplaceCategory
}

// basePrice returns the baseline price for a category.
func basePrice(category string) float64 {
	if p, ok := categoryBasePrices[category]; ok {
		return p
	}
	c := strings.TrimSpace(category)
	if len(c) > 1 {
		titled := strings.ToUpper(c[:1]) + strings.ToLower(c[1:])
		if p, ok := categoryBasePrices[titled]; ok {
			return p
		}
	}
	return defaultBasePrice
}

// templateAnalysis builds the tertiary-tier default analysis for an image.
// Descriptive fields stay empty on purpose: without AI analysis there is no
// evidence two images show the same piece, and empty fields keep the scorer
// from merging unrelated unanalyzed images. The assembler fills in the
// display defaults.
func templateAnalysis(imageID string) ImageAnalysis {
	return ImageAnalysis{
		ImageID:    imageID,
		Condition:  defaultCondition,
		Price:      defaultBasePrice,
		Confidence: defaultConfidence,
		Reasoning:  "template defaults, no AI analysis available",
	}
}
