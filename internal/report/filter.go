package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/jgoulah/powercurve/pkg/models"
)

// Range is an inclusive bucket range, e.g. days 1..365
type Range struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Default ranges offered by the range selectors
var (
	DefaultDays  = Range{From: 1, To: 365}
	DefaultWeeks = Range{From: 1, To: 53}

	DayLimits  = Range{From: 1, To: 366}
	WeekLimits = Range{From: 1, To: 53}
)

// Contains reports whether v lies inside the range
func (r Range) Contains(v int) bool {
	return v >= r.From && v <= r.To
}

// IsZero reports whether the range was left unset
func (r Range) IsZero() bool {
	return r.From == 0 && r.To == 0
}

// Validate checks that the range is ordered and inside limits
func (r Range) Validate(limits Range) error {
	if r.From > r.To {
		return fmt.Errorf("range start %d is after end %d", r.From, r.To)
	}
	if r.From < limits.From || r.To > limits.To {
		return fmt.Errorf("range %d-%d outside %d-%d", r.From, r.To, limits.From, limits.To)
	}
	return nil
}

func (r Range) orDefault(def Range) Range {
	if r.IsZero() {
		return def
	}
	return r
}

// Filter selects the records a report aggregates.
// Days applies to the year and day reports, Weeks to the week report.
// An empty Years slice selects every year.
type Filter struct {
	Days  Range `json:"days"`
	Weeks Range `json:"weeks"`
	Years []int `json:"years,omitempty"`
}

// selectRecords applies the year subset and one bucket range.
// A range equal to its default is not applied, so day 366 of leap years stays in unfiltered reports.
func selectRecords(records []models.EnrichedRecord, years []int, rng, def Range, bucket func(models.EnrichedRecord) int) []models.EnrichedRecord {
	rng = rng.orDefault(def)
	applyRange := rng != def

	yearSet := lo.SliceToMap(years, func(y int) (int, struct{}) { return y, struct{}{} })

	return lo.Filter(records, func(r models.EnrichedRecord, _ int) bool {
		if applyRange && !rng.Contains(bucket(r)) {
			return false
		}
		if len(yearSet) > 0 {
			if _, ok := yearSet[r.Year]; !ok {
				return false
			}
		}
		return true
	})
}

// NewFilter builds a validated filter for a report. The range bounds apply to days, or to
// ISO weeks for the week report; a zero bound takes the default.
func NewFilter(kind Kind, from, to int, years []int) (Filter, error) {
	def, limits := DefaultDays, DayLimits
	if kind == KindWeek {
		def, limits = DefaultWeeks, WeekLimits
	}

	rng := Range{From: from, To: to}
	if rng.From == 0 {
		rng.From = def.From
	}
	if rng.To == 0 {
		rng.To = def.To
	}
	if err := rng.Validate(limits); err != nil {
		return Filter{}, err
	}

	f := Filter{Years: years}
	if kind == KindWeek {
		f.Weeks = rng
	} else {
		f.Days = rng
	}
	return f, nil
}

// ParseYears parses a comma separated year list such as "2020,2021"
func ParseYears(value string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("years: invalid year %q", part)
		}
		years = append(years, y)
	}
	return years, nil
}

func dayOf(r models.EnrichedRecord) int  { return r.Day }
func weekOf(r models.EnrichedRecord) int { return r.Week }

// labelBase is the non-leap reference year used to label day ranges
var labelBase = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

// IntervalLabel renders a day range as calendar dates, e.g. "01.01 - 31.12"
func IntervalLabel(days Range) string {
	days = days.orDefault(DefaultDays)
	from := labelBase.AddDate(0, 0, days.From-1)
	to := labelBase.AddDate(0, 0, days.To-1)
	return fmt.Sprintf("%s - %s", from.Format("02.01"), to.Format("02.01"))
}
