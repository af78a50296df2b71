package catalog

import "strings"

// SynonymTable maps free-text vocabulary from AI output onto canonical terms
// so that "ivory" and "off-white" or "couch" and "loveseat" compare equal.
// It is built once at startup and read-only afterwards.
type SynonymTable struct {
	terms  map[string]string // any known alias -> canonical term
	colors map[string]string // color aliases only
	types  map[string]string // furniture type aliases only
}

// Built-in vocabulary: canonical term -> aliases. The canonical term is
// always a member of its own family.
var colorFamilies = map[string][]string{
	"white": {"white", "off-white", "ivory", "cream", "beige", "ecru", "alabaster"},
	"brown": {"brown", "tan", "coffee", "mocha", "chocolate", "chestnut", "mahogany", "walnut"},
	"gray":  {"gray", "grey", "silver", "charcoal", "slate", "ash", "pewter"},
	"black": {"black", "ebony", "onyx", "jet", "coal"},
	"red":   {"red", "burgundy", "wine", "cherry", "crimson", "maroon", "rust"},
	"blue":  {"blue", "navy", "teal", "turquoise", "indigo", "cerulean"},
	"green": {"green", "olive", "sage", "forest", "emerald", "mint"},
	"wood":  {"wood", "wooden", "oak", "pine", "cedar", "birch", "maple", "teak", "bamboo"},
}

var typeFamilies = map[string][]string{
	"sofa":    {"sofa", "couch", "sectional", "loveseat", "settee", "divan"},
	"chair":   {"chair", "armchair", "recliner", "rocker", "stool", "dining chair", "gaming chair"},
	"desk":    {"desk", "writing desk", "computer desk", "office desk", "study desk", "workstation", "bureau"},
	"table":   {"table", "coffee table", "dining table", "end table", "side table", "console"},
	"bed":     {"bed", "mattress", "headboard", "footboard", "bedframe", "daybed", "futon"},
	"storage": {"storage", "dresser", "cabinet", "wardrobe", "armoire", "chest", "hutch", "bookshelf", "bookcase", "credenza", "sideboard"},
}

var styleFamilies = map[string][]string{
	"modern":      {"modern", "contemporary", "minimalist", "sleek", "streamlined"},
	"traditional": {"traditional", "classic", "vintage", "antique", "heritage"},
	"rustic":      {"rustic", "farmhouse", "country", "distressed", "weathered"},
	"industrial":  {"industrial", "steel", "iron", "pipe"},
	"mission":     {"mission", "craftsman", "stickley"},
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true,
}

// NewSynonymTable builds the table from the built-in families.
func NewSynonymTable() *SynonymTable {
	t := &SynonymTable{
		terms:  make(map[string]string),
		colors: make(map[string]string),
		types:  make(map[string]string),
	}
	add := func(dst map[string]string, families map[string][]string) {
		for canonical, aliases := range families {
			for _, alias := range aliases {
				dst[alias] = canonical
				t.terms[alias] = canonical
			}
		}
	}
	add(t.colors, colorFamilies)
	add(t.types, typeFamilies)
	add(t.terms, styleFamilies)
	return t
}

// Canonical maps a single term to its canonical form. Unknown terms map to
// themselves (lowercased), which makes canonicalization idempotent.
func (t *SynonymTable) Canonical(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if c, ok := t.terms[term]; ok {
		return c
	}
	return term
}

// CanonicalColor extracts the canonical color family from a free-text color
// description, e.g. "dark walnut brown" -> "brown". Returns "" when no known
// color term appears.
func (t *SynonymTable) CanonicalColor(text string) string {
	phrase := strings.ToLower(strings.TrimSpace(text))
	if c, ok := t.colors[phrase]; ok {
		return c
	}
	for _, w := range strings.Fields(phrase) {
		if c, ok := t.colors[w]; ok {
			return c
		}
	}
	return ""
}

// CanonicalType extracts the canonical furniture type from free text,
// checking the whole phrase first so multi-word aliases like "writing desk"
// win over their parts. Returns "" when nothing matches.
func (t *SynonymTable) CanonicalType(text string) string {
	phrase := strings.ToLower(strings.TrimSpace(text))
	if c, ok := t.types[phrase]; ok {
		return c
	}
	for _, w := range strings.Fields(phrase) {
		if c, ok := t.types[w]; ok {
			return c
		}
	}
	return ""
}

// TypeOf resolves the canonical furniture type of an analysis, trying the
// category first, then the subcategory, then title words.
func (t *SynonymTable) TypeOf(a *ImageAnalysis) string {
	for _, field := range []string{a.Category, a.Subcategory, a.Title} {
		if c := t.CanonicalType(field); c != "" {
			return c
		}
	}
	return ""
}
