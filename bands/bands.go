// Package bands carries a table of known band and disk layouts for the
// machines these images come from, so tools can sanity-check an image file
// against the hardware it claims to be from.
package bands

import (
	_ "embed"
	"fmt"

	"github.com/gocarina/gocsv"
)

// BandGeometry describes one known band layout.
type BandGeometry struct {
	Name    string `csv:"name"`
	Slug    string `csv:"slug"`
	Machine string `csv:"machine"`

	// BlockSize is the logical block size in bytes. Every known SysV band
	// uses 1024.
	BlockSize uint `csv:"block_size"`

	// TotalBlocks gives the number of logical blocks in the band.
	TotalBlocks uint64 `csv:"total_blocks"`

	Notes string `csv:"notes"`
}

// TotalSizeBytes gives the size of the band, in bytes. This is the expected
// size of the image file.
func (g *BandGeometry) TotalSizeBytes() int64 {
	return int64(g.BlockSize) * int64(g.TotalBlocks)
}

//go:embed band-geometries.csv
var bandGeometriesRawCSV string
var bandGeometries map[string]BandGeometry

// GetPredefinedBandGeometry looks up a known band layout by its slug.
func GetPredefinedBandGeometry(slug string) (BandGeometry, error) {
	geometry, ok := bandGeometries[slug]
	if ok {
		return geometry, nil
	}

	err := fmt.Errorf("no predefined band geometry exists with slug %q", slug)
	return BandGeometry{}, err
}

// MatchImageSize returns every known band layout whose total size equals the
// given image file size. An empty result just means the image isn't a stock
// band; partition images and trimmed dumps won't match anything.
func MatchImageSize(sizeBytes int64) []BandGeometry {
	var matches []BandGeometry
	for _, geometry := range bandGeometries {
		if geometry.TotalSizeBytes() == sizeBytes {
			matches = append(matches, geometry)
		}
	}
	return matches
}

func init() {
	var rows []BandGeometry
	err := gocsv.UnmarshalString(bandGeometriesRawCSV, &rows)
	if err != nil {
		panic(fmt.Errorf("failed to decode band geometry table: %w", err))
	}

	bandGeometries = make(map[string]BandGeometry, len(rows))
	for i, row := range rows {
		_, exists := bandGeometries[row.Slug]
		if exists {
			panic(fmt.Errorf(
				"duplicate definition for band %q found on row %d", row.Slug, i+1))
		}
		bandGeometries[row.Slug] = row
	}
}
