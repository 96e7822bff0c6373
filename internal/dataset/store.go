package dataset

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/jgoulah/powercurve/pkg/models"
)

// Store is the immutable, enriched data set shared by all reports.
// It is built once and never modified; callers must not mutate the slice returned by Records.
type Store struct {
	records  []models.EnrichedRecord
	years    []int
	latest   time.Time
	loadedAt time.Time
}

// NewStore wraps enriched records
func NewStore(records []models.EnrichedRecord) *Store {
	years := lo.Uniq(lo.Map(records, func(r models.EnrichedRecord, _ int) int { return r.Year }))
	sort.Ints(years)

	var latest time.Time
	for _, r := range records {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	return &Store{
		records:  records,
		years:    years,
		latest:   latest,
		loadedAt: time.Now(),
	}
}

// Build loads, cleans and enriches the given years
func Build(ctx context.Context, loader *Loader, cleaner Cleaner, years []int) (*Store, error) {
	raw, err := loader.Load(ctx, years)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("building data set: %w", ErrNoRecords)
	}
	return NewStore(EnrichAll(cleaner.Clean(raw))), nil
}

// Records returns the enriched records in load order
func (s *Store) Records() []models.EnrichedRecord {
	return s.records
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.records)
}

// Years returns the distinct years present, ascending
func (s *Store) Years() []int {
	return append([]int(nil), s.years...)
}

// Latest returns the newest timestamp in the data set
func (s *Store) Latest() time.Time {
	return s.latest
}

// LoadedAt returns when the store was built
func (s *Store) LoadedAt() time.Time {
	return s.loadedAt
}
