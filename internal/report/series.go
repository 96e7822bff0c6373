package report

import (
	"strconv"

	"github.com/jgoulah/powercurve/pkg/models"
)

// Default color palette for the year series
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// Point is one x/y pair of a series
type Point struct {
	X     float64 `json:"x"`
	Label string  `json:"label,omitempty"`
	Y     float64 `json:"y"`
}

// Series holds the points of one year
type Series struct {
	Name   string  `json:"name"`
	Year   int     `json:"year"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// splitByYear groups rows (already ordered by year) into one series per year
func splitByYear[T any](rows []T, year func(T) int, point func(T) Point) []Series {
	series := []Series{}
	for _, row := range rows {
		y := year(row)
		if len(series) == 0 || series[len(series)-1].Year != y {
			series = append(series, Series{
				Name:  strconv.Itoa(y),
				Year:  y,
				Color: defaultColors[len(series)%len(defaultColors)],
			})
		}
		last := &series[len(series)-1]
		last.Points = append(last.Points, point(row))
	}
	return series
}

// YearSeries charts the cumulative consumption per year
func YearSeries(rows []models.YearRow) []Series {
	return splitByYear(rows,
		func(r models.YearRow) int { return r.Year },
		func(r models.YearRow) Point { return Point{X: float64(r.Day), Y: r.Cumulative} },
	)
}

// DaySeries charts the mean consumption per time of day; X is the hour as a fraction
func DaySeries(rows []models.DayRow) []Series {
	return splitByYear(rows,
		func(r models.DayRow) int { return r.Year },
		func(r models.DayRow) Point { return Point{X: hourOfDay(r.Time), Label: r.Time, Y: r.Value} },
	)
}

// WeekSeries charts the mean consumption per position in the week
func WeekSeries(rows []models.WeekRow) []Series {
	return splitByYear(rows,
		func(r models.WeekRow) int { return r.Year },
		func(r models.WeekRow) Point { return Point{X: r.Position, Y: r.Value} },
	)
}

func hourOfDay(hms string) float64 {
	if len(hms) < 5 {
		return 0
	}
	h, errH := strconv.Atoi(hms[0:2])
	m, errM := strconv.Atoi(hms[3:5])
	if errH != nil || errM != nil {
		return 0
	}
	return float64(h) + float64(m)/60
}
