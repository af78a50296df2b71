package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const defaultParallelism = 4

// Orchestrator runs the tiered analysis pipeline: a holistic batch call
// first, a per-image call for whatever that missed, and template defaults
// for whatever is still left. It always produces a complete result; provider
// failures degrade quality, never availability.
type Orchestrator struct {
	primary   Analyzer
	secondary Analyzer
	engine    *Engine
	assembler *Assembler
	parallel  int
}

// NewOrchestrator wires the pipeline. Either analyzer may be nil; a nil tier
// is skipped entirely. With both nil every image falls through to template
// defaults.
func NewOrchestrator(primary, secondary Analyzer, engine *Engine, assembler *Assembler) *Orchestrator {
	return &Orchestrator{
		primary:   primary,
		secondary: secondary,
		engine:    engine,
		assembler: assembler,
		parallel:  defaultParallelism,
	}
}

// Process analyzes a batch of images and returns grouped listings. The only
// error it returns is context cancellation; every provider failure is
// absorbed by falling back a tier.
func (o *Orchestrator) Process(ctx context.Context, images []SourceImage) (*Result, error) {
	requestID := uuid.NewString()
	logger := log.With().Str("requestID", requestID).Int("images", len(images)).Logger()

	analyses := make(map[string]ImageAnalysis, len(images))
	tierOf := make(map[string]Tier, len(images))

	proposal := o.runPrimary(ctx, logger, images, analyses, tierOf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o.runSecondary(ctx, logger, images, analyses, tierOf)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Tertiary floor: whatever is still unanalyzed gets template defaults.
	for _, img := range images {
		if _, ok := analyses[img.ID]; !ok {
			analyses[img.ID] = templateAnalysis(img.ID)
			tierOf[img.ID] = TierTertiary
			logger.Warn().Str("imageID", img.ID).Msg("all analysis tiers failed, using template defaults")
		}
	}

	ordered := make([]ImageAnalysis, 0, len(images))
	for _, img := range images {
		ordered = append(ordered, analyses[img.ID])
	}

	// The AI's own grouping is only trusted when it analyzed the whole batch;
	// a partial view cannot place the images it never saw.
	var groups []FurnitureGroup
	if proposal != nil && allPrimary(images, tierOf) {
		groups = o.engine.GroupWithDecision(ordered, proposal)
	} else {
		groups = o.engine.Group(ordered)
	}

	listings := o.assembler.Assemble(ctx, groups, tierOf)

	res := &Result{
		RequestID:   requestID,
		Analyses:    ordered,
		Groups:      groups,
		Listings:    listings,
		TierByImage: tierOf,
		TiersUsed:   tiersUsed(tierOf),
	}
	for _, t := range res.TiersUsed {
		if t == TierTertiary {
			res.Warning = "some images could not be analyzed; listings for them use template defaults"
		}
	}

	logger.Info().
		Int("groups", len(groups)).
		Int("listings", len(listings)).
		Strs("tiers", tierStrings(res.TiersUsed)).
		Msg("batch processed")
	return res, nil
}

// runPrimary attempts the holistic batch analysis. It fills analyses/tierOf
// for every image the provider covered and returns the provider's grouping
// proposal, or nil when the tier was skipped or failed.
func (o *Orchestrator) runPrimary(ctx context.Context, logger zerolog.Logger, images []SourceImage, analyses map[string]ImageAnalysis, tierOf map[string]Tier) [][]string {
	if o.primary == nil {
		logger.Debug().Msg("no batch analyzer configured, skipping tier")
		return nil
	}

	res, err := o.primary.AnalyzeAndGroup(ctx, images)
	if err != nil && IsTransient(err) && ctx.Err() == nil {
		logger.Warn().Err(err).Msg("batch analysis failed transiently, retrying once")
		res, err = o.primary.AnalyzeAndGroup(ctx, images)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("batch analysis failed, falling back to per-image tier")
		return nil
	}

	known := make(map[string]bool, len(images))
	for _, img := range images {
		known[img.ID] = true
	}
	for _, a := range res.Analyses {
		if !known[a.ImageID] {
			logger.Warn().Str("imageID", a.ImageID).Msg("batch analysis returned unknown image id, dropping")
			continue
		}
		analyses[a.ImageID] = a
		tierOf[a.ImageID] = TierPrimary
	}
	return res.Groups
}

// runSecondary analyzes the not-yet-covered images one by one, concurrently.
// Each image gets at most one in-place retry on a transient failure.
func (o *Orchestrator) runSecondary(ctx context.Context, logger zerolog.Logger, images []SourceImage, analyses map[string]ImageAnalysis, tierOf map[string]Tier) {
	if o.secondary == nil {
		return
	}

	var pending []SourceImage
	for _, img := range images {
		if _, ok := analyses[img.ID]; !ok {
			pending = append(pending, img)
		}
	}
	if len(pending) == 0 {
		return
	}
	logger.Info().Int("pending", len(pending)).Msg("running per-image analysis tier")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallel)

	for _, img := range pending {
		g.Go(func() error {
			a, err := o.secondary.AnalyzeImage(gctx, img)
			if err != nil && IsTransient(err) && gctx.Err() == nil {
				logger.Warn().Err(err).Str("imageID", img.ID).Msg("per-image analysis failed transiently, retrying once")
				a, err = o.secondary.AnalyzeImage(gctx, img)
			}
			if err != nil {
				logger.Warn().Err(err).Str("imageID", img.ID).Msg("per-image analysis failed")
				return nil
			}
			if a == nil {
				logger.Warn().Str("imageID", img.ID).Msg("per-image analysis returned nothing")
				return nil
			}
			a.ImageID = img.ID
			mu.Lock()
			analyses[img.ID] = *a
			tierOf[img.ID] = TierSecondary
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors, so this only waits.
	_ = g.Wait()
}

func allPrimary(images []SourceImage, tierOf map[string]Tier) bool {
	for _, img := range images {
		if tierOf[img.ID] != TierPrimary {
			return false
		}
	}
	return true
}

func tiersUsed(tierOf map[string]Tier) []Tier {
	seen := make(map[Tier]bool)
	for _, t := range tierOf {
		seen[t] = true
	}
	tiers := make([]Tier, 0, len(seen))
	for t := range seen {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })
	return tiers
}

func tierStrings(tiers []Tier) []string {
	out := make([]string, len(tiers))
	for i, t := range tiers {
		out[i] = t.String()
	}
	return out
}
