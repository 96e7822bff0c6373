package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load the cleaned data set into the database",
	Long: `Loads, cleans and enriches all configured years and stores the quarter-hour readings
in the local SQLite database. Re-importing replaces readings with the same timestamp.`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Import started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()
	store, err := loadStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	n, err := db.InsertRecords(ctx, store.Records())
	if err != nil {
		return err
	}
	total, err := db.CountRecords(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s readings for %v (%s stored)\n",
		humanize.Comma(int64(n)), store.Years(), humanize.Comma(int64(total)))
	return nil
}
