package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/powercurve/internal/dataset"
)

var refreshNoLog bool

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the current year's data file",
	Long: `Checks the newest timestamp of the current year's cached file and downloads a new copy
when it is older than refresh.stale_after. The cache is replaced only by a valid download.`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshNoLog, "no-log", false, "do not record the attempt in the database")
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Refresh started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	var recorder dataset.Recorder
	if !refreshNoLog {
		db, err := openDB(cfg)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()
		recorder = db
	}

	refresher, err := newRefresher(cfg, recorder)
	if err != nil {
		return err
	}

	year := cfg.CurrentYear()
	fmt.Printf("Checking %d (%s)...\n", year, cfg.YearPath(year))
	res := refresher.Refresh(context.Background(), year, cfg.YearPath(year), cfg.YearURL(year))
	fmt.Printf("%d: %s\n", year, describeRefresh(res))

	if res.Err != nil {
		return fmt.Errorf("refresh failed")
	}
	return nil
}
