package report

import (
	"sort"

	"github.com/jgoulah/powercurve/pkg/models"
)

// MinDailyTotal drops days at or below this total (GWh) from the year report.
// Such days are incomplete, typically the current day of the running year.
const MinDailyTotal = 2.0

type yearDay struct {
	year, day int
}

// YearReport sums consumption per (year, day of year) and adds a running total per year.
// The running total is computed before days at or below MinDailyTotal are dropped.
func YearReport(records []models.EnrichedRecord, f Filter) []models.YearRow {
	selected := selectRecords(records, f.Years, f.Days, DefaultDays, dayOf)

	sums := make(map[yearDay]float64)
	for _, r := range selected {
		sums[yearDay{r.Year, r.Day}] += r.Value
	}

	keys := make([]yearDay, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].year != keys[j].year {
			return keys[i].year < keys[j].year
		}
		return keys[i].day < keys[j].day
	})

	rows := make([]models.YearRow, 0, len(keys))
	var cumulative float64
	for i, k := range keys {
		if i == 0 || keys[i-1].year != k.year {
			cumulative = 0
		}
		sum := sums[k]
		cumulative += sum
		if sum <= MinDailyTotal {
			continue
		}
		rows = append(rows, models.YearRow{
			Year:       k.year,
			Day:        k.day,
			Value:      Round(sum, 3),
			Cumulative: Round(cumulative, 1),
		})
	}
	return rows
}
