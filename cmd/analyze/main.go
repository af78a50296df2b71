// Command analyze runs the listing pipeline against a directory of photos
// and writes the bulk-upload CSV and photo archive to disk.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/relist-app/relist/config"
	"github.com/relist-app/relist/internal/catalog"
	"github.com/relist-app/relist/internal/export"
	"github.com/relist-app/relist/internal/llm"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <photo-dir> [output.zip]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment variables:\n")
		fmt.Fprintf(os.Stderr, "  GEMINI_API_KEY - Enables AI analysis (optional, template defaults without it)\n")
		os.Exit(1)
	}

	photoDir := os.Args[1]
	outPath := "listings.zip"
	if len(os.Args) >= 3 {
		outPath = os.Args[2]
	}

	config.LoadEnvFile()
	cfg := config.Load()

	images, err := readImages(photoDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read photos: %v\n", err)
		os.Exit(1)
	}
	if len(images) == 0 {
		fmt.Fprintf(os.Stderr, "No jpg/png photos found in %s\n", photoDir)
		os.Exit(1)
	}

	ctx := context.Background()

	var primary, secondary catalog.Analyzer
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create analyzer: %v\n", err)
			os.Exit(1)
		}
		limited := llm.NewRateLimitedAnalyzer(gemini, cfg.VisionRPS, cfg.VisionBurst)
		primary = limited
		secondary = limited
	}

	syn := catalog.NewSynonymTable()
	engine := catalog.NewEngine(syn, catalog.DefaultGroupingConfig())
	orchestrator := catalog.NewOrchestrator(primary, secondary, engine, catalog.NewAssembler(nil))

	result, err := orchestrator.Process(ctx, images)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}

	for _, l := range result.Listings {
		fmt.Printf("%-45s $%-7.0f %-16s %d photo(s) [%s]\n", l.Title, l.Price, l.Condition, l.PhotoCount, l.Tier)
	}
	if result.Warning != "" {
		fmt.Println("Warning:", result.Warning)
	}

	byID := make(map[string]catalog.SourceImage, len(images))
	for _, img := range images {
		byID[img.ID] = img
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := export.BuildArchive(out, result.Listings, byID); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build archive: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d listings to %s\n", len(result.Listings), outPath)
}

func readImages(dir string) ([]catalog.SourceImage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var images []catalog.SourceImage
	for i, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		images = append(images, catalog.SourceImage{
			ID:   fmt.Sprintf("img_%02d", i+1),
			Name: name,
			Data: data,
		})
	}
	return images, nil
}
