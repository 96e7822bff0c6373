package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/powercurve/pkg/models"
)

var cet = time.FixedZone("CET", 3600)

func TestParseCSV(t *testing.T) {
	input := "zeitpunkt,bruttolastgang,status\n" +
		"2022-01-01T00:15:00+01:00,123456.5,E\n" +
		"2022-01-01 00:30:00,200000,F\n" +
		"2022-01-01T00:45:00+01:00,,E\n"

	records, err := ParseCSV(strings.NewReader(input), cet)
	require.NoError(t, err)
	require.Len(t, records, 2, "row with empty value is skipped")

	assert.True(t, records[0].Timestamp.Equal(time.Date(2022, 1, 1, 0, 15, 0, 0, cet)))
	assert.Equal(t, 123456.5, records[0].Value)
	assert.Equal(t, models.StatusFinal, records[0].Status)

	assert.True(t, records[1].Timestamp.Equal(time.Date(2022, 1, 1, 0, 30, 0, 0, cet)))
	assert.Equal(t, models.StatusProvisional, records[1].Status)
}

func TestParseCSVSkipsMissingMarkers(t *testing.T) {
	input := "zeitpunkt,bruttolastgang,status\n" +
		"2021-01-01T00:15:00+01:00,1000000,E\n" +
		"2021-01-01T00:30:00+01:00,NaN,E\n" +
		"2021-01-01T00:45:00+01:00,nan,E\n" +
		"2021-01-01T01:00:00+01:00,NA,E\n" +
		"2021-01-01T01:15:00+01:00,N/A,F\n" +
		"2021-01-01T01:30:00+01:00,null,E\n" +
		"2021-01-01T01:45:00+01:00,2000000,E\n"

	records, err := ParseCSV(strings.NewReader(input), cet)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.False(t, math.IsNaN(r.Value))
		assert.False(t, math.IsInf(r.Value, 0))
	}
	assert.Equal(t, 1000000.0, records[0].Value)
	assert.Equal(t, 2000000.0, records[1].Value)
}

func TestParseCSVColumnOrderAndCase(t *testing.T) {
	input := "Status,Zeitpunkt,extra,Bruttolastgang\nE,2021-03-01T12:00:00+01:00,x,10\n"

	records, err := ParseCSV(strings.NewReader(input), cet)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10.0, records[0].Value)
	assert.Equal(t, 12, records[0].Timestamp.Hour())
}

func TestParseCSVMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"missing column", "zeitpunkt,bruttolastgang\n2022-01-01T00:15:00+01:00,1\n"},
		{"bad timestamp", "zeitpunkt,bruttolastgang,status\nyesterday,1,E\n"},
		{"bad value", "zeitpunkt,bruttolastgang,status\n2022-01-01T00:15:00+01:00,lots,E\n"},
		{"short row", "zeitpunkt,bruttolastgang,status\n2022-01-01T00:15:00+01:00,1\n"},
		{"infinite value", "zeitpunkt,bruttolastgang,status\n2022-01-01T00:15:00+01:00,Inf,E\n"},
		{"negative infinite value", "zeitpunkt,bruttolastgang,status\n2022-01-01T00:15:00+01:00,-inf,E\n"},
		{"signed infinity", "zeitpunkt,bruttolastgang,status\n2022-01-01T00:15:00+01:00,+Infinity,E\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tt.input), cet)
			assert.Error(t, err)
		})
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := []models.Record{
		{Timestamp: time.Date(2022, 3, 1, 10, 0, 0, 0, cet), Value: 1500000, Status: "E"},
		{Timestamp: time.Date(2022, 3, 1, 10, 15, 0, 0, cet), Value: 0.25, Status: "F"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, in))

	out, err := ParseCSV(&buf, cet)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.True(t, in[i].Timestamp.Equal(out[i].Timestamp))
		assert.Equal(t, in[i].Value, out[i].Value)
		assert.Equal(t, in[i].Status, out[i].Status)
	}

	latest, ok := MaxTimestamp(out)
	require.True(t, ok)
	assert.True(t, latest.Equal(in[1].Timestamp))
}

func TestMaxTimestampEmpty(t *testing.T) {
	_, ok := MaxTimestamp(nil)
	assert.False(t, ok)
}
