package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded refresh attempts",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of attempts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	entries, err := db.ListRefreshes(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No refresh attempts recorded")
		return nil
	}

	fmt.Printf("%-20s  %4s  %-8s  %10s  %-20s  %s\n", "Checked", "Year", "Result", "Size", "Data up to", "Error")
	fmt.Println("--------------------------------------------------------------------------------")
	for _, e := range entries {
		result := "fresh"
		switch {
		case e.Error != "":
			result = "failed"
		case e.Fetched:
			result = "fetched"
		case e.Stale:
			result = "skipped"
		}

		size := "-"
		if e.Bytes > 0 {
			size = humanize.Bytes(uint64(e.Bytes))
		}
		latest := "-"
		if !e.MaxTimestamp.IsZero() {
			latest = e.MaxTimestamp.Local().Format("2006-01-02 15:04")
		}

		fmt.Printf("%-20s  %4d  %-8s  %10s  %-20s  %s\n",
			humanize.Time(e.CheckedAt), e.Year, result, size, latest, e.Error)
	}
	return nil
}
