package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/pkg/models"
)

var cet = time.FixedZone("CET", 3600)

// quarterHours builds enriched records for one day, one per value, starting at midnight
func quarterHours(year int, month time.Month, day int, values ...float64) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, len(values))
	for i, v := range values {
		ts := time.Date(year, month, day, 0, 15*i, 0, 0, cet)
		out[i] = dataset.Enrich(ts, v)
	}
	return out
}

func concat(parts ...[]models.EnrichedRecord) []models.EnrichedRecord {
	var out []models.EnrichedRecord
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestYearReportDropsSmallDays(t *testing.T) {
	// Raw 1,500,000 and 3,000,000 after scaling by 1e6
	records := concat(
		quarterHours(2020, 3, 1, 0.5, 1.0),
		quarterHours(2021, 3, 1, 1.0, 2.0),
	)

	rows := YearReport(records, Filter{})
	require.Len(t, rows, 1)
	assert.Equal(t, models.YearRow{Year: 2021, Day: 60, Value: 3.0, Cumulative: 3.0}, rows[0])
}

func TestYearReportCumulativeIncludesDroppedDays(t *testing.T) {
	records := concat(
		quarterHours(2021, 1, 1, 1.5),
		quarterHours(2021, 1, 2, 2.5, 0.5),
		quarterHours(2021, 1, 3, 4.25),
		quarterHours(2022, 1, 1, 5),
	)

	rows := YearReport(records, Filter{})
	assert.Equal(t, []models.YearRow{
		{Year: 2021, Day: 2, Value: 3.0, Cumulative: 4.5},
		{Year: 2021, Day: 3, Value: 4.25, Cumulative: 8.8},
		{Year: 2022, Day: 1, Value: 5, Cumulative: 5},
	}, rows)
}

func TestYearReportFilters(t *testing.T) {
	records := concat(
		quarterHours(2020, 1, 10, 3),
		quarterHours(2020, 2, 10, 4),
		quarterHours(2021, 1, 10, 5),
	)

	rows := YearReport(records, Filter{Days: Range{From: 1, To: 31}})
	require.Len(t, rows, 2)
	assert.Equal(t, 2020, rows[0].Year)
	assert.Equal(t, 2021, rows[1].Year)

	rows = YearReport(records, Filter{Years: []int{2020}})
	require.Len(t, rows, 2)
	assert.Equal(t, 41, rows[1].Day)
	assert.Equal(t, 7.0, rows[1].Cumulative)
}

func TestYearReportKeepsLeapDayByDefault(t *testing.T) {
	records := quarterHours(2020, 12, 31, 3)

	rows := YearReport(records, Filter{})
	require.Len(t, rows, 1)
	assert.Equal(t, 366, rows[0].Day)

	rows = YearReport(records, Filter{Days: Range{From: 1, To: 364}})
	assert.Empty(t, rows)
}

func TestDayReportMeans(t *testing.T) {
	records := concat(
		quarterHours(2021, 1, 4, 0.010, 0.020),
		quarterHours(2021, 1, 5, 0.0125, 0.030),
		quarterHours(2022, 1, 4, 0.040),
	)

	rows := DayReport(records, Filter{})
	assert.Equal(t, []models.DayRow{
		{Year: 2021, Time: "00:00:00", Value: 11.3},
		{Year: 2021, Time: "00:15:00", Value: 25.0},
		{Year: 2022, Time: "00:00:00", Value: 40.0},
	}, rows)
}

func TestDayReportDayRange(t *testing.T) {
	records := concat(
		quarterHours(2021, 1, 1, 0.010),
		quarterHours(2021, 1, 2, 0.030),
	)

	rows := DayReport(records, Filter{Days: Range{From: 2, To: 2}})
	require.Len(t, rows, 1)
	assert.Equal(t, 30.0, rows[0].Value)
}

func TestWeekReportGroupsByPosition(t *testing.T) {
	// 2021-01-04 and 2021-01-11 are Mondays in ISO weeks 1 and 2
	records := concat(
		quarterHours(2021, 1, 4, 0.010, 0.020),
		quarterHours(2021, 1, 11, 0.030, 0.040),
		quarterHours(2021, 1, 10, 0.050),
	)

	rows := WeekReport(records, Filter{})
	require.Len(t, rows, 3)
	assert.Equal(t, models.WeekRow{Year: 2021, Position: 0, Value: 20.0}, rows[0])
	assert.InDelta(t, 15.0/1440, rows[1].Position, 1e-9)
	assert.Equal(t, 30.0, rows[1].Value)
	assert.Equal(t, 6.0, rows[2].Position)
	assert.Equal(t, 50.0, rows[2].Value)

	rows = WeekReport(records, Filter{Weeks: Range{From: 2, To: 2}})
	require.Len(t, rows, 2)
	assert.Equal(t, 30.0, rows[0].Value)
	assert.Equal(t, 40.0, rows[1].Value)
}

func TestWeekReportIgnoresDayRange(t *testing.T) {
	records := quarterHours(2021, 6, 7, 0.010)

	rows := WeekReport(records, Filter{Days: Range{From: 1, To: 2}})
	assert.Len(t, rows, 1)
}

func TestEmptyResults(t *testing.T) {
	records := quarterHours(2021, 1, 4, 3)
	f := Filter{Years: []int{1999}}

	assert.NotNil(t, YearReport(records, f))
	assert.Empty(t, YearReport(records, f))
	assert.NotNil(t, DayReport(records, f))
	assert.Empty(t, DayReport(records, f))
	assert.NotNil(t, WeekReport(records, f))
	assert.Empty(t, WeekReport(nil, Filter{}))
}

func TestRound(t *testing.T) {
	tests := []struct {
		in     float64
		places int32
		want   float64
	}{
		{2.675, 2, 2.68},
		{0.05, 1, 0.1},
		{0.15, 1, 0.2},
		{-1.25, 1, -1.3},
		{1234.5678, 3, 1234.568},
		{3, 1, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in, tt.places), "Round(%v, %d)", tt.in, tt.places)
	}
}

func TestIntervalLabel(t *testing.T) {
	assert.Equal(t, "01.01 - 31.12", IntervalLabel(Range{}))
	assert.Equal(t, "01.01 - 31.12", IntervalLabel(DefaultDays))
	assert.Equal(t, "01.02 - 28.02", IntervalLabel(Range{From: 32, To: 59}))
}

func TestRangeValidate(t *testing.T) {
	assert.NoError(t, Range{From: 1, To: 366}.Validate(DayLimits))
	assert.Error(t, Range{From: 10, To: 5}.Validate(DayLimits))
	assert.Error(t, Range{From: 0, To: 5}.Validate(DayLimits))
	assert.Error(t, Range{From: 1, To: 54}.Validate(WeekLimits))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" Week ")
	require.NoError(t, err)
	assert.Equal(t, KindWeek, k)

	_, err = ParseKind("month")
	assert.Error(t, err)
}

func TestBuildResult(t *testing.T) {
	store := dataset.NewStore(concat(
		quarterHours(2020, 1, 1, 3),
		quarterHours(2021, 1, 1, 4),
	))

	res, err := Build(store, KindYear, Filter{})
	require.NoError(t, err)
	assert.Equal(t, KindYear, res.Kind)
	assert.Equal(t, "01.01 - 31.12", res.Interval)
	assert.Equal(t, 2, res.Len())
	assert.Equal(t, []string{"year", "day", "value_gwh", "cumulative_gwh"}, res.Table.Columns)
	require.Len(t, res.Series, 2)
	assert.Equal(t, "2020", res.Series[0].Name)
	assert.Equal(t, []Point{{X: 1, Y: 4}}, res.Series[1].Points)
	assert.Len(t, res.Charts, 2)

	res, err = Build(store, KindDay, Filter{})
	require.NoError(t, err)
	require.Len(t, res.Series, 2)
	assert.Equal(t, "00:00:00", res.Series[0].Points[0].Label)

	res, err = Build(store, KindWeek, Filter{Weeks: Range{From: 1, To: 10}})
	require.NoError(t, err)
	assert.Equal(t, "week 1 - 10", res.Interval)

	_, err = Build(store, Kind("month"), Filter{})
	assert.Error(t, err)
}

func TestHourOfDay(t *testing.T) {
	assert.Equal(t, 13.75, hourOfDay("13:45:00"))
	assert.Equal(t, 0.0, hourOfDay("bad"))
}

func TestParseYears(t *testing.T) {
	years, err := ParseYears("2020, 2021,,2022")
	require.NoError(t, err)
	assert.Equal(t, []int{2020, 2021, 2022}, years)

	years, err = ParseYears("")
	require.NoError(t, err)
	assert.Empty(t, years)

	_, err = ParseYears("2020,abc")
	assert.Error(t, err)
}

func TestNewFilter(t *testing.T) {
	f, err := NewFilter(KindYear, 0, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultDays, f.Days)
	assert.True(t, f.Weeks.IsZero())

	f, err = NewFilter(KindWeek, 5, 0, []int{2021})
	require.NoError(t, err)
	assert.Equal(t, Range{From: 5, To: 53}, f.Weeks)
	assert.True(t, f.Days.IsZero())
	assert.Equal(t, []int{2021}, f.Years)

	f, err = NewFilter(KindDay, 0, 366, nil)
	require.NoError(t, err)
	assert.Equal(t, Range{From: 1, To: 366}, f.Days)

	_, err = NewFilter(KindDay, 20, 10, nil)
	assert.Error(t, err)
	_, err = NewFilter(KindWeek, 1, 60, nil)
	assert.Error(t, err)
}

func TestMissingCellsDoNotPoisonReports(t *testing.T) {
	input := "zeitpunkt,bruttolastgang,status\n" +
		"2021-01-01T00:00:00+01:00,1500000,E\n" +
		"2021-01-01T00:15:00+01:00,NaN,E\n" +
		"2021-01-01T00:30:00+01:00,1500000,E\n" +
		"2021-01-02T00:00:00+01:00,3000000,E\n"

	raw, err := dataset.ParseCSV(strings.NewReader(input), cet)
	require.NoError(t, err)
	store := dataset.NewStore(dataset.EnrichAll(dataset.DefaultCleaner().Clean(raw)))

	rows := YearReport(store.Records(), Filter{})
	require.Len(t, rows, 2)
	assert.Equal(t, models.YearRow{Year: 2021, Day: 1, Value: 3.0, Cumulative: 3.0}, rows[0])
	assert.Equal(t, models.YearRow{Year: 2021, Day: 2, Value: 3.0, Cumulative: 6.0}, rows[1])

	for _, kind := range Kinds {
		res, err := Build(store, kind, Filter{})
		require.NoError(t, err)
		for _, s := range res.Series {
			for _, p := range s.Points {
				assert.False(t, math.IsNaN(p.Y), "%s report", kind)
			}
		}
		_, err = json.Marshal(res)
		assert.NoError(t, err, "%s report", kind)
	}
}
