// Package export renders built reports as CSV, XLSX or PDF documents.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/jgoulah/powercurve/internal/report"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format: %s (available: csv, xlsx, pdf)", s)
	}
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}

// FileName returns a download name such as "powercurve-year.xlsx"
func (f Format) FileName(kind report.Kind) string {
	return fmt.Sprintf("powercurve-%s.%s", kind, f)
}

// Render encodes the report in the given format
func Render(res report.Result, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		var buf bytes.Buffer
		if err := WriteCSV(&buf, res); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatXLSX:
		return BuildXLSX(res)
	case FormatPDF:
		return BuildPDF(res)
	default:
		return nil, fmt.Errorf("unknown export format: %s", format)
	}
}

// WriteCSV writes the report table with a header row
func WriteCSV(w io.Writer, res report.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(res.Table.Columns); err != nil {
		return err
	}
	for _, row := range res.Table.Rows {
		record := make([]string, len(row))
		for i, cell := range row {
			record[i] = formatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// BuildXLSX renders a workbook with a summary sheet and a data sheet
func BuildXLSX(res report.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	dataSheet := string(res.Kind)
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", res.Title)
	_ = f.SetCellValue(summarySheet, "A3", "Report")
	_ = f.SetCellValue(summarySheet, "B3", string(res.Kind))
	_ = f.SetCellValue(summarySheet, "A4", "Interval")
	_ = f.SetCellValue(summarySheet, "B4", res.Interval)
	_ = f.SetCellValue(summarySheet, "A5", "Years")
	_ = f.SetCellValue(summarySheet, "B5", yearsLabel(res))
	_ = f.SetCellValue(summarySheet, "A6", "Rows")
	_ = f.SetCellValue(summarySheet, "B6", res.Len())

	for col, name := range res.Table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(dataSheet, cell, name)
	}
	for i, row := range res.Table.Rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			_ = f.SetCellValue(dataSheet, cell, value)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPDF renders the report header and its table
func BuildPDF(res report.Result) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, res.Title)
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Interval: %s", res.Interval))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Years: %s", yearsLabel(res)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().Format(time.RFC3339)))
	pdf.Ln(8)

	if len(res.Table.Columns) == 0 {
		return outputPDF(pdf)
	}
	width := 180 / float64(len(res.Table.Columns))

	pdf.SetFont("Arial", "B", 10)
	for _, name := range res.Table.Columns {
		pdf.CellFormat(width, 6, name, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, row := range res.Table.Rows {
		for _, value := range row {
			pdf.CellFormat(width, 6, formatCell(value), "1", 0, "R", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return outputPDF(pdf)
}

func outputPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func yearsLabel(res report.Result) string {
	if len(res.Filter.Years) == 0 {
		years := make(map[int]bool)
		var list []string
		for _, s := range res.Series {
			if !years[s.Year] {
				years[s.Year] = true
				list = append(list, strconv.Itoa(s.Year))
			}
		}
		if len(list) == 0 {
			return "all"
		}
		return strings.Join(list, ", ")
	}
	list := make([]string, len(res.Filter.Years))
	for i, y := range res.Filter.Years {
		list[i] = strconv.Itoa(y)
	}
	return strings.Join(list, ", ")
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
