package report

import (
	"sort"

	"github.com/jgoulah/powercurve/pkg/models"
)

// displayScale converts GWh per quarter hour to MWh
const displayScale = 1000

type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) add(v float64) {
	m.sum += v
	m.n++
}

func (m meanAcc) mean() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

type yearTime struct {
	year int
	time string
}

// DayReport averages quarter-hour consumption per (year, time of day), in MWh
func DayReport(records []models.EnrichedRecord, f Filter) []models.DayRow {
	selected := selectRecords(records, f.Years, f.Days, DefaultDays, dayOf)

	groups := make(map[yearTime]*meanAcc)
	for _, r := range selected {
		k := yearTime{r.Year, r.TimeOfDay}
		acc, ok := groups[k]
		if !ok {
			acc = &meanAcc{}
			groups[k] = acc
		}
		acc.add(r.Value * displayScale)
	}

	rows := make([]models.DayRow, 0, len(groups))
	for k, acc := range groups {
		rows = append(rows, models.DayRow{
			Year:  k.year,
			Time:  k.time,
			Value: Round(acc.mean(), 1),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Time < rows[j].Time
	})
	return rows
}
