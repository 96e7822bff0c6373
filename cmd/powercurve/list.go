package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listYear int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored daily totals",
	Long:  `Displays the daily consumption totals of the readings stored by import.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listYear, "year", 0, "only list this year (default all)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	totals, err := db.DailyTotals(context.Background(), listYear)
	if err != nil {
		return fmt.Errorf("listing daily totals: %w", err)
	}

	if len(totals) == 0 {
		fmt.Println("No data found, run 'powercurve import' first")
		return nil
	}

	year := 0
	var total float64
	flush := func() {
		if year == 0 {
			return
		}
		fmt.Println("----------------------------------------")
		fmt.Printf("Total %d: %.3f GWh\n", year, total)
	}

	for _, t := range totals {
		if t.Year != year {
			flush()
			year, total = t.Year, 0

			fmt.Printf("\n%d Daily Consumption:\n", year)
			fmt.Println("----------------------------------------")
			fmt.Printf("%-12s  %4s  %10s  %5s\n", "Date", "Day", "GWh", "Rows")
			fmt.Println("----------------------------------------")
		}
		fmt.Printf("%-12s  %4d  %10.3f  %5d\n", t.Date, t.Day, t.GWh, t.Readings)
		total += t.GWh
	}
	flush()

	return nil
}
