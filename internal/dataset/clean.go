package dataset

import (
	"time"

	"github.com/jgoulah/powercurve/pkg/models"
)

// Reading is a cleaned record: timestamp and consumption in display units
type Reading struct {
	Timestamp time.Time
	Value     float64
}

// Cleaner removes the provisional duplicates and converts units.
//
// From WindowStart on, the source published provisional and final rows for the same
// quarter hours; only final rows are kept inside [WindowStart, WindowEnd).
// WindowStart and WindowEnd are calendar dates, compared against each timestamp's local date.
type Cleaner struct {
	WindowStart time.Time
	WindowEnd   time.Time // Zero = open ended
	FinalStatus string
	Scale       float64
}

// DefaultCleaner returns the cleaner matching the published data set
func DefaultCleaner() Cleaner {
	return Cleaner{
		WindowStart: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		FinalStatus: models.StatusFinal,
		Scale:       1e6,
	}
}

// Clean drops non-final rows inside the window and scales values
func (c Cleaner) Clean(records []models.Record) []Reading {
	scale := c.Scale
	if scale == 0 {
		scale = 1
	}

	out := make([]Reading, 0, len(records))
	for _, r := range records {
		if r.Status != c.FinalStatus && c.InWindow(r.Timestamp) {
			continue
		}
		out = append(out, Reading{
			Timestamp: r.Timestamp,
			Value:     r.Value / scale,
		})
	}
	return out
}

// InWindow reports whether t falls inside the duplicate window
func (c Cleaner) InWindow(t time.Time) bool {
	start := localMidnight(c.WindowStart, t.Location())
	if t.Before(start) {
		return false
	}
	if c.WindowEnd.IsZero() {
		return true
	}
	return t.Before(localMidnight(c.WindowEnd, t.Location()))
}

func localMidnight(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}
