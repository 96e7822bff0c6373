package dataset

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jgoulah/powercurve/pkg/models"
)

// maxParallelFiles bounds how many yearly files are parsed at once
const maxParallelFiles = 4

// Loader reads the yearly load curve files
type Loader struct {
	pathFor  func(year int) string
	location *time.Location
}

// NewLoader creates a loader resolving file paths with pathFor
func NewLoader(pathFor func(year int) string, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.UTC
	}
	return &Loader{pathFor: pathFor, location: loc}
}

// Load reads every year's file and concatenates them in the order of years.
// A missing or malformed file fails the whole load.
func (l *Loader) Load(ctx context.Context, years []int) ([]models.Record, error) {
	perYear := make([][]models.Record, len(years))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, year := range years {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := ReadFile(l.pathFor(year), l.location)
			if err != nil {
				return fmt.Errorf("loading %d: %w", year, err)
			}
			perYear[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, records := range perYear {
		total += len(records)
	}
	all := make([]models.Record, 0, total)
	for _, records := range perYear {
		all = append(all, records...)
	}
	return all, nil
}

// ReadFile parses a single load curve file
func ReadFile(path string, loc *time.Location) ([]models.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	records, err := ParseCSV(f, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return records, nil
}
