package catalog

import "fmt"

// Tier is one ranked fallback strategy for producing image analyses.
// Tiers are always tried in order and never revisited within a batch.
type Tier int

const (
	// TierPrimary runs the holistic workflow: vision analysis and grouping
	// in a single batch call to the AI provider.
	TierPrimary Tier = iota
	// TierSecondary analyzes each image independently and groups the
	// results heuristically.
	TierSecondary
	// TierTertiary assigns template defaults with no external calls.
	// It cannot fail; it is the floor of the fallback chain.
	TierTertiary
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText makes tiers render as their names in JSON output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses a tier name back into a Tier.
func (t *Tier) UnmarshalText(b []byte) error {
	switch string(b) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	default:
		return fmt.Errorf("unknown tier %q", b)
	}
	return nil
}
