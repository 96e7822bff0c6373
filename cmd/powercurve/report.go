package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/powercurve/internal/export"
	"github.com/jgoulah/powercurve/internal/report"
)

var (
	reportFrom   int
	reportTo     int
	reportYears  string
	reportLimit  int
	exportFormat string
	exportOut    string
)

var reportCmd = &cobra.Command{
	Use:   "report [year|day|week]",
	Short: "Print a consumption report",
	Long: `Builds a report from the configured yearly files and prints it as a table.

  year  daily consumption and running total per year (GWh)
  day   mean quarter-hour consumption per time of day (MWh)
  week  mean quarter-hour consumption per position in the week (MWh)

--from/--to select days of the year, or ISO weeks for the week report.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

var exportCmd = &cobra.Command{
	Use:   "export [year|day|week]",
	Short: "Export a consumption report as CSV, XLSX or PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func init() {
	for _, c := range []*cobra.Command{reportCmd, exportCmd} {
		c.Flags().IntVar(&reportFrom, "from", 0, "first day (or week) to include (default 1)")
		c.Flags().IntVar(&reportTo, "to", 0, "last day (or week) to include (default 365, or 53 for weeks)")
		c.Flags().StringVar(&reportYears, "years", "", "comma separated years to include (default all)")
	}
	reportCmd.Flags().IntVar(&reportLimit, "limit", 0, "print at most this many rows (0 = no limit)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, xlsx or pdf")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file (default powercurve-<report>.<format>)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
}

// buildReport loads the data set and runs the report named by arg
func buildReport(arg string) (report.Result, error) {
	kind, err := report.ParseKind(arg)
	if err != nil {
		return report.Result{}, err
	}
	years, err := report.ParseYears(reportYears)
	if err != nil {
		return report.Result{}, err
	}
	filter, err := report.NewFilter(kind, reportFrom, reportTo, years)
	if err != nil {
		return report.Result{}, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return report.Result{}, fmt.Errorf("loading config: %w", err)
	}
	store, err := loadStore(context.Background(), cfg)
	if err != nil {
		return report.Result{}, fmt.Errorf("loading data: %w", err)
	}

	return report.Build(store, kind, filter)
}

func runReport(cmd *cobra.Command, args []string) error {
	res, err := buildReport(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("\n%s (%s)\n", res.Title, res.Interval)
	separator := strings.Repeat("-", 16*len(res.Table.Columns))
	fmt.Println(separator)
	for _, col := range res.Table.Columns {
		fmt.Printf("%16s", col)
	}
	fmt.Println()
	fmt.Println(separator)

	rows := res.Table.Rows
	if reportLimit > 0 && len(rows) > reportLimit {
		rows = rows[:reportLimit]
	}
	for _, row := range rows {
		for _, cell := range row {
			fmt.Printf("%16v", cell)
		}
		fmt.Println()
	}

	fmt.Println(separator)
	if len(rows) < res.Len() {
		fmt.Printf("Showing %d of %s rows\n", len(rows), humanize.Comma(int64(res.Len())))
	} else {
		fmt.Printf("%s rows\n", humanize.Comma(int64(res.Len())))
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}

	res, err := buildReport(args[0])
	if err != nil {
		return err
	}

	data, err := export.Render(res, format)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", format, err)
	}

	out := exportOut
	if out == "" {
		out = format.FileName(res.Kind)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	fmt.Printf("Wrote %s rows to %s (%s)\n", humanize.Comma(int64(res.Len())), out, humanize.Bytes(uint64(len(data))))
	return nil
}
