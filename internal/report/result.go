package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/pkg/models"
)

// Kind names one of the three reports
type Kind string

const (
	KindYear Kind = "year"
	KindDay  Kind = "day"
	KindWeek Kind = "week"
)

// Kinds lists the reports in menu order
var Kinds = []Kind{KindYear, KindDay, KindWeek}

// ParseKind validates a report name
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindYear, KindDay, KindWeek:
		return k, nil
	default:
		return "", fmt.Errorf("unknown report: %s (available: year, day, week)", s)
	}
}

// Chart describes one line chart of a report; years are the color dimension
type Chart struct {
	Title  string `json:"title"`
	X      string `json:"x"`
	Y      string `json:"y"`
	XTitle string `json:"x_title"`
	YTitle string `json:"y_title"`
	XType  string `json:"x_type"` // "quantitative" or "ordinal"
}

// Table is the column/row form of a report used by exports and the CLI
type Table struct {
	Columns []string
	Rows    [][]interface{}
}

// Result is a built report ready for rendering
type Result struct {
	Kind     Kind        `json:"report"`
	Title    string      `json:"title"`
	Interval string      `json:"interval"`
	Filter   Filter      `json:"filter"`
	Charts   []Chart     `json:"charts"`
	Rows     interface{} `json:"rows"`
	Series   []Series    `json:"series"`
	Table    Table       `json:"-"`
}

// Len returns the number of rows
func (r Result) Len() int {
	return len(r.Table.Rows)
}

// Build runs the report of the given kind against the store
func Build(store *dataset.Store, kind Kind, f Filter) (Result, error) {
	records := store.Records()

	switch kind {
	case KindYear:
		rows := YearReport(records, f)
		return yearResult(rows, f), nil
	case KindDay:
		rows := DayReport(records, f)
		return dayResult(rows, f), nil
	case KindWeek:
		rows := WeekReport(records, f)
		return weekResult(rows, f), nil
	default:
		return Result{}, fmt.Errorf("unknown report: %s", kind)
	}
}

func yearResult(rows []models.YearRow, f Filter) Result {
	table := Table{Columns: []string{"year", "day", "value_gwh", "cumulative_gwh"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, []interface{}{r.Year, r.Day, r.Value, r.Cumulative})
	}
	return Result{
		Kind:     KindYear,
		Title:    "Consumption over the year",
		Interval: IntervalLabel(f.Days),
		Filter:   f,
		Charts: []Chart{
			{Title: "Cumulative consumption", X: "day", Y: "cumulative", XTitle: "Day of year", YTitle: "Cumulative consumption [GWh]", XType: "quantitative"},
			{Title: "Daily consumption", X: "day", Y: "value", XTitle: "Day of year", YTitle: "Consumption [GWh]", XType: "quantitative"},
		},
		Rows:   rows,
		Series: YearSeries(rows),
		Table:  table,
	}
}

func dayResult(rows []models.DayRow, f Filter) Result {
	table := Table{Columns: []string{"year", "time", "value_mwh"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, []interface{}{r.Year, r.Time, r.Value})
	}
	return Result{
		Kind:     KindDay,
		Title:    "Daily load curve, mean quarter-hour consumption",
		Interval: IntervalLabel(f.Days),
		Filter:   f,
		Charts: []Chart{
			{Title: "Mean quarter-hour consumption", X: "time", Y: "value", XTitle: "Time of day", YTitle: "Consumption [MWh]", XType: "ordinal"},
		},
		Rows:   rows,
		Series: DaySeries(rows),
		Table:  table,
	}
}

func weekResult(rows []models.WeekRow, f Filter) Result {
	table := Table{Columns: []string{"year", "position", "value_mwh"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, []interface{}{r.Year, strconv.FormatFloat(r.Position, 'f', 4, 64), r.Value})
	}
	weeks := f.Weeks.orDefault(DefaultWeeks)
	return Result{
		Kind:     KindWeek,
		Title:    "Weekly load curve, mean quarter-hour consumption",
		Interval: fmt.Sprintf("week %d - %d", weeks.From, weeks.To),
		Filter:   f,
		Charts: []Chart{
			{Title: "Mean quarter-hour consumption", X: "position", Y: "value", XTitle: "Weekday (0 = Monday)", YTitle: "Consumption [MWh]", XType: "quantitative"},
		},
		Rows:   rows,
		Series: WeekSeries(rows),
		Table:  table,
	}
}
