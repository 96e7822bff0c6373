package report

import (
	"sort"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/pkg/models"
)

type weekSlot struct {
	year, weekday, hour, minute int
}

// WeekReport averages quarter-hour consumption per (year, position in the week), in MWh.
// Filtering uses the ISO week range instead of the day range.
func WeekReport(records []models.EnrichedRecord, f Filter) []models.WeekRow {
	selected := selectRecords(records, f.Years, f.Weeks, DefaultWeeks, weekOf)

	// Grouping on the integer parts keeps equal positions equal across years
	groups := make(map[weekSlot]*meanAcc)
	for _, r := range selected {
		k := weekSlot{r.Year, r.Weekday, r.Hour, r.Minute}
		acc, ok := groups[k]
		if !ok {
			acc = &meanAcc{}
			groups[k] = acc
		}
		acc.add(r.Value * displayScale)
	}

	rows := make([]models.WeekRow, 0, len(groups))
	for k, acc := range groups {
		rows = append(rows, models.WeekRow{
			Year:     k.year,
			Position: dataset.WeekPosition(k.weekday, k.hour, k.minute),
			Value:    Round(acc.mean(), 1),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Position < rows[j].Position
	})
	return rows
}
