// Package export renders finished listings into the CSV and photo-archive
// formats the Facebook Marketplace bulk uploader accepts.
package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/relist-app/relist/internal/catalog"
)

// csvHeader is the column order the bulk uploader expects.
var csvHeader = []string{"TITLE", "PRICE", "CONDITION", "DESCRIPTION", "CATEGORY"}

// WriteCSV writes all listings as a bulk-upload CSV.
func WriteCSV(w io.Writer, listings []catalog.Listing) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, l := range listings {
		record := []string{
			l.Title,
			fmt.Sprintf("%.0f", l.Price),
			l.Condition,
			l.Description,
			l.Category,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// BuildArchive writes a zip archive containing the bulk-upload CSV, one
// photo folder per listing, and an upload README.
func BuildArchive(w io.Writer, listings []catalog.Listing, images map[string]catalog.SourceImage) error {
	zw := zip.NewWriter(w)

	csvFile, err := zw.Create("listings.csv")
	if err != nil {
		return fmt.Errorf("failed to create csv in archive: %w", err)
	}
	if err := WriteCSV(csvFile, listings); err != nil {
		return err
	}

	for i, l := range listings {
		folder := listingFolder(i+1, l.Title)
		for j, imageID := range l.ImageIDs {
			img, ok := images[imageID]
			if !ok {
				log.Warn().Str("imageID", imageID).Str("listingID", l.ID).Msg("image missing from archive input")
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("photo_%02d.jpg", j+1)
			}
			f, err := zw.Create(folder + "/" + name)
			if err != nil {
				return fmt.Errorf("failed to create photo in archive: %w", err)
			}
			if _, err := f.Write(img.Data); err != nil {
				return fmt.Errorf("failed to write photo to archive: %w", err)
			}
		}
	}

	readme, err := zw.Create("README.txt")
	if err != nil {
		return fmt.Errorf("failed to create readme in archive: %w", err)
	}
	if _, err := readme.Write([]byte(readmeText(len(listings)))); err != nil {
		return fmt.Errorf("failed to write readme: %w", err)
	}

	return zw.Close()
}

// listingFolder builds a filesystem-safe folder name like
// "Listing_01_Oak_Writing_Desk".
func listingFolder(n int, title string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_':
			return '_'
		default:
			return -1
		}
	}, title)
	safe = strings.Trim(safe, "_")
	if len(safe) > 40 {
		safe = safe[:40]
	}
	if safe == "" {
		safe = "Untitled"
	}
	return fmt.Sprintf("Listing_%02d_%s", n, safe)
}

func readmeText(count int) string {
	return fmt.Sprintf(`Marketplace bulk upload package
===============================

Contents:
- listings.csv: %d listings in Facebook Marketplace bulk upload format
- Listing_NN_* folders: photos for each listing, in CSV row order

Upload listings.csv through the Marketplace bulk uploader, then attach
the photos from each listing's folder to the matching row.
`, count)
}
