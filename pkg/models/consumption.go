package models

import "time"

// Quality flags used by the source data
const (
	StatusFinal       = "E"
	StatusProvisional = "F"
)

// Record is a single quarter-hour row from a yearly load curve file
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`  // Raw units (kWh)
	Status    string    `json:"status"` // "E" final, "F" provisional
}

// EnrichedRecord is a cleaned record with its calendar fields
type EnrichedRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Value        float64   `json:"value"` // GWh (raw / 1e6)
	Year         int       `json:"year"`
	Day          int       `json:"day"`  // Day of year, 1-366
	Week         int       `json:"week"` // ISO week, 1-53
	Hour         int       `json:"hour"`
	Minute       int       `json:"minute"`
	Weekday      int       `json:"weekday"`       // 0=Monday
	TimeOfDay    string    `json:"time_of_day"`   // "15:04:05"
	WeekPosition float64   `json:"week_position"` // Weekday + Hour/24 + Minute/1440
}

// YearRow is one day of the year report
type YearRow struct {
	Year       int     `json:"year"`
	Day        int     `json:"day"`
	Value      float64 `json:"value"`      // Daily consumption (GWh)
	Cumulative float64 `json:"cumulative"` // Running total for the year (GWh)
}

// DayRow is one quarter-hour slot of the day report
type DayRow struct {
	Year  int     `json:"year"`
	Time  string  `json:"time"`
	Value float64 `json:"value"` // Mean consumption (MWh)
}

// WeekRow is one quarter-hour slot of the week report
type WeekRow struct {
	Year     int     `json:"year"`
	Position float64 `json:"position"`
	Value    float64 `json:"value"` // Mean consumption (MWh)
}
