package dataset

import (
	"time"

	"github.com/jgoulah/powercurve/pkg/models"
)

// TimeOfDayLayout is the bucket label of the day report
const TimeOfDayLayout = "15:04:05"

// Enrich derives the calendar fields of a reading.
// Fields are read in the timestamp's own location. Weekday counts from Monday = 0.
func Enrich(ts time.Time, value float64) models.EnrichedRecord {
	_, week := ts.ISOWeek()
	weekday := MondayWeekday(ts)
	hour, minute := ts.Hour(), ts.Minute()

	return models.EnrichedRecord{
		Timestamp:    ts,
		Value:        value,
		Year:         ts.Year(),
		Day:          ts.YearDay(),
		Week:         week,
		Hour:         hour,
		Minute:       minute,
		Weekday:      weekday,
		TimeOfDay:    ts.Format(TimeOfDayLayout),
		WeekPosition: WeekPosition(weekday, hour, minute),
	}
}

// EnrichAll enriches every reading
func EnrichAll(readings []Reading) []models.EnrichedRecord {
	out := make([]models.EnrichedRecord, len(readings))
	for i, r := range readings {
		out[i] = Enrich(r.Timestamp, r.Value)
	}
	return out
}

// MondayWeekday converts Go's Sunday-based weekday to Monday = 0 ... Sunday = 6
func MondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// WeekPosition places a time of week on a continuous axis in [0, 7)
func WeekPosition(weekday, hour, minute int) float64 {
	return float64(weekday) + float64(hour)/24 + float64(minute)/1440
}
