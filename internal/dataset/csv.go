package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jgoulah/powercurve/pkg/models"
)

// ErrNoRecords is returned when a file parses but holds no data rows
var ErrNoRecords = errors.New("no records")

// Column names of the load curve files
const (
	columnTimestamp = "zeitpunkt"
	columnValue     = "bruttolastgang"
	columnStatus    = "status"
)

// missingValues are the cell contents read as "no measurement", compared case-insensitively
var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"-nan": true,
	"na":   true,
	"n/a":  true,
	"#n/a": true,
	"null": true,
	"none": true,
}

// Layouts tried in order; the ones without offset are read in the configured location
var timestampLayouts = []struct {
	layout    string
	hasOffset bool
}{
	{time.RFC3339, true},
	{"2006-01-02 15:04:05-07:00", true},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02 15:04:05", false},
	{"2006-01-02T15:04", false},
	{"2006-01-02 15:04", false},
}

// ParseCSV reads load curve rows from r.
// Rows whose consumption cell is empty or a missing marker (NaN, NA, null, ...) are skipped.
// Any other unparseable row, including an infinite value, is an error.
func ParseCSV(r io.Reader, loc *time.Location) ([]models.Record, error) {
	if loc == nil {
		loc = time.UTC
	}

	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("reading CSV header: empty file")
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	tsCol, valueCol, statusCol := -1, -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) {
		case columnTimestamp, "timestamp":
			tsCol = i
		case columnValue, "value":
			valueCol = i
		case columnStatus:
			statusCol = i
		}
	}
	if tsCol == -1 || valueCol == -1 || statusCol == -1 {
		return nil, fmt.Errorf("could not find required columns (%s, %s, %s) in CSV. Header: %v",
			columnTimestamp, columnValue, columnStatus, header)
	}

	var results []models.Record
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		valueStr := strings.TrimSpace(row[valueCol])
		if missingValues[strings.ToLower(valueStr)] {
			continue
		}

		ts, err := ParseTimestamp(row[tsCol], loc)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		value, err := strconv.ParseFloat(valueStr, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parsing value %q: %w", line, valueStr, err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("line %d: value %q is not a finite number", line, valueStr)
		}

		results = append(results, models.Record{
			Timestamp: ts,
			Value:     value,
			Status:    strings.TrimSpace(row[statusCol]),
		})
	}

	return results, nil
}

// ParseTimestamp parses the timestamp formats found in the yearly files
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, f := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if f.hasOffset {
			t, err = time.Parse(f.layout, s)
		} else {
			t, err = time.ParseInLocation(f.layout, s, loc)
		}
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %q", s)
}

// MaxTimestamp returns the latest timestamp in records
func MaxTimestamp(records []models.Record) (time.Time, bool) {
	var latest time.Time
	for _, r := range records {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}
	return latest, !latest.IsZero()
}

// WriteCSV writes records in the load curve file format
func WriteCSV(w io.Writer, records []models.Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{columnTimestamp, columnValue, columnStatus}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(r.Value, 'f', -1, 64),
			r.Status,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
