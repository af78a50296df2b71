package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// PriceSearcher estimates a market price for a listing title from comparable
// listings. Implementations may fail or return no estimate; the assembler
// always has a usable fallback price without one.
type PriceSearcher interface {
	EstimatePrice(ctx context.Context, query string) (float64, error)
}

// Assembler turns furniture groups into marketplace-ready listings. Every
// group becomes exactly one listing, in the order the groups were formed.
type Assembler struct {
	searcher PriceSearcher
}

// NewAssembler creates an assembler. searcher may be nil, in which case
// prices come from member analyses and category baselines only.
func NewAssembler(searcher PriceSearcher) *Assembler {
	return &Assembler{searcher: searcher}
}

// Assemble builds one listing per group. tierOf reports which analysis tier
// produced each image; the listing carries the lowest (worst) tier among its
// members so callers can see how much of it is AI-derived.
func (as *Assembler) Assemble(ctx context.Context, groups []FurnitureGroup, tierOf map[string]Tier) []Listing {
	listings := make([]Listing, 0, len(groups))
	for _, g := range groups {
		listings = append(listings, as.assembleOne(ctx, g, tierOf))
	}
	return listings
}

func (as *Assembler) assembleOne(ctx context.Context, g FurnitureGroup, tierOf map[string]Tier) Listing {
	rep := g.Representative()

	title := as.listingTitle(rep)
	price := as.listingPrice(ctx, title, g, rep)

	condition := "Used - Good"
	category := fallbackMarketplaceCategory
	description := defaultDescription
	if rep != nil {
		condition = marketplaceCondition(rep.Condition)
		category = marketplaceCategory(rep.Category)
		description = buildDescription(rep, len(g.Members))
	}

	return Listing{
		ID:          uuid.NewString(),
		Title:       title,
		Price:       price,
		Condition:   condition,
		Description: description,
		Category:    category,
		ImageIDs:    append([]string(nil), g.ImageIDs...),
		PhotoCount:  len(g.ImageIDs),
		Confidence:  g.Confidence,
		Tier:        worstTier(g.ImageIDs, tierOf),
		CreatedAt:   time.Now().UTC(),
	}
}

// listingTitle uses the representative's title, falling back to a
// "<Color> <Style> <Category>" template when the AI produced none.
func (as *Assembler) listingTitle(rep *ImageAnalysis) string {
	if rep == nil {
		return defaultTitle
	}
	if t := strings.TrimSpace(rep.Title); t != "" {
		return t
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{rep.Color, rep.Style, rep.Category} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return defaultTitle
	}
	return titleCase(strings.Join(parts, " "))
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// listingPrice prefers the representative member's AI price estimate, then
// the median of the other members' estimates, then a comparable-listing
// search, then the category baseline.
func (as *Assembler) listingPrice(ctx context.Context, title string, g FurnitureGroup, rep *ImageAnalysis) float64 {
	if rep != nil && rep.Price > 0 {
		return rep.Price
	}
	if p := medianPrice(g.Members); p > 0 {
		return p
	}

	if as.searcher != nil {
		p, err := as.searcher.EstimatePrice(ctx, title)
		if err != nil {
			log.Warn().Err(err).Str("title", title).Msg("price search failed, using category baseline")
		} else if p > 0 {
			return p
		}
	}

	category := ""
	if rep != nil {
		category = rep.Category
	}
	return basePrice(category)
}

// medianPrice is the median of the members' positive price estimates, 0 when
// no member has one.
func medianPrice(members []ImageAnalysis) float64 {
	var prices []float64
	for _, m := range members {
		if m.Price > 0 {
			prices = append(prices, m.Price)
		}
	}
	if len(prices) == 0 {
		return 0
	}
	sort.Float64s(prices)
	mid := len(prices) / 2
	if len(prices)%2 == 1 {
		return prices[mid]
	}
	return (prices[mid-1] + prices[mid]) / 2
}

// worstTier returns the lowest-quality tier among the group's images, so a
// listing mixing AI analyses with template defaults is labeled by its weakest
// member.
func worstTier(imageIDs []string, tierOf map[string]Tier) Tier {
	worst := TierPrimary
	for _, id := range imageIDs {
		if t, ok := tierOf[id]; ok && t > worst {
			worst = t
		}
	}
	return worst
}

func buildDescription(rep *ImageAnalysis, photoCount int) string {
	subject := strings.TrimSpace(rep.Title)
	if subject == "" && strings.TrimSpace(rep.Color) == "" && strings.TrimSpace(rep.Material) == "" {
		// Nothing descriptive to work with, use the template text.
		return defaultDescription
	}
	if subject == "" {
		subject = "furniture piece"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s in %s condition.", subject, strings.ToLower(nonEmpty(rep.Condition, defaultCondition)))

	var details []string
	if c := strings.TrimSpace(rep.Color); c != "" {
		details = append(details, "Color: "+c)
	}
	if m := strings.TrimSpace(rep.Material); m != "" {
		details = append(details, "Material: "+m)
	}
	if s := strings.TrimSpace(rep.Style); s != "" {
		details = append(details, "Style: "+s)
	}
	if len(details) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(details, ". "))
		b.WriteString(".")
	}

	if photoCount > 1 {
		fmt.Fprintf(&b, " %d photos included.", photoCount)
	}
	return b.String()
}

func nonEmpty(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
