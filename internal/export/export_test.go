package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/powercurve/internal/report"
)

func sampleResult() report.Result {
	return report.Result{
		Kind:     report.KindYear,
		Title:    "Consumption over the year",
		Interval: "01.01 - 31.12",
		Series: []report.Series{
			{Name: "2021", Year: 2021},
			{Name: "2022", Year: 2022},
		},
		Table: report.Table{
			Columns: []string{"year", "day", "value_gwh", "cumulative_gwh"},
			Rows: [][]interface{}{
				{2021, 1, 5.123, 5.1},
				{2022, 1, 6.0, 6.0},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Equal(t, "powercurve-year.xlsx", f.FileName(report.KindYear))

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResult()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"year,day,value_gwh,cumulative_gwh",
		"2021,1,5.123,5.1",
		"2022,1,6,6",
	}, lines)
}

func TestBuildXLSX(t *testing.T) {
	data, err := BuildXLSX(sampleResult())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Consumption over the year", title)

	years, err := f.GetCellValue("summary", "B5")
	require.NoError(t, err)
	assert.Equal(t, "2021, 2022", years)

	rows, err := f.GetRows("year")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"year", "day", "value_gwh", "cumulative_gwh"}, rows[0])
	assert.Equal(t, "5.123", rows[1][2])
}

func TestBuildPDF(t *testing.T) {
	data, err := Render(sampleResult(), FormatPDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderEmptyReport(t *testing.T) {
	res := report.Result{Kind: report.KindDay, Table: report.Table{Columns: []string{"year", "time", "value_mwh"}}}

	for _, format := range []Format{FormatCSV, FormatXLSX, FormatPDF} {
		data, err := Render(res, format)
		require.NoError(t, err, format)
		assert.NotEmpty(t, data, format)
	}
}
