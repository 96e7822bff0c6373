package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/powercurve/internal/database"
	"github.com/jgoulah/powercurve/internal/publisher"
	"github.com/jgoulah/powercurve/internal/report"
	"github.com/jgoulah/powercurve/pkg/models"
)

var (
	publishAll    bool
	publishLatest bool
	publishLimit  int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish daily consumption over MQTT",
	Long: `Reads the daily totals stored by import and publishes each complete day with its
running yearly total as a retained MQTT message. Days are marked as published.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all days (ignore published flag)")
	publishCmd.Flags().BoolVar(&publishLatest, "latest", false, "Only publish the most recent complete day")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of days to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

// dailyRows turns stored daily totals into year report rows with running totals.
// Incomplete days count towards the running total but are not returned.
func dailyRows(totals []database.DailyTotal) ([]models.YearRow, map[[2]int]database.DailyTotal) {
	var rows []models.YearRow
	byDay := make(map[[2]int]database.DailyTotal, len(totals))

	year := 0
	var cumulative float64
	for _, t := range totals {
		if t.Year != year {
			year, cumulative = t.Year, 0
		}
		cumulative += t.GWh
		if t.GWh <= report.MinDailyTotal {
			continue
		}
		rows = append(rows, models.YearRow{
			Year:       t.Year,
			Day:        t.Day,
			Value:      report.Round(t.GWh, 3),
			Cumulative: report.Round(cumulative, 1),
		})
		byDay[[2]int{t.Year, t.Day}] = t
	}
	return rows, byDay
}

// pendingRows keeps the rows whose day is in unpublished, in row order
func pendingRows(rows []models.YearRow, unpublished []database.DailyTotal) []models.YearRow {
	want := make(map[[2]int]bool, len(unpublished))
	for _, t := range unpublished {
		want[[2]int{t.Year, t.Day}] = true
	}

	var pending []models.YearRow
	for _, row := range rows {
		if want[[2]int{row.Year, row.Day}] {
			pending = append(pending, row)
		}
	}
	return pending
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled {
		return fmt.Errorf("MQTT is not enabled in config")
	}

	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	totals, err := db.DailyTotals(ctx, 0)
	if err != nil {
		return fmt.Errorf("listing daily totals: %w", err)
	}

	rows, byDay := dailyRows(totals)
	if publishLatest && len(rows) > 0 {
		rows = rows[len(rows)-1:]
	}
	if !publishAll {
		unpublished, err := db.ListUnpublishedDays(ctx, report.MinDailyTotal)
		if err != nil {
			return fmt.Errorf("listing unpublished days: %w", err)
		}
		rows = pendingRows(rows, unpublished)
	}

	if len(rows) == 0 {
		if publishAll {
			fmt.Println("No data found, run 'powercurve import' first")
		} else {
			fmt.Println("No unpublished days found")
		}
		return nil
	}

	if publishLimit > 0 && len(rows) > publishLimit {
		rows = rows[:publishLimit]
		fmt.Printf("Limiting to %d days (--limit flag)\n", publishLimit)
	}

	pub, err := publisher.New(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	fmt.Printf("Publishing %d days to %s...\n", len(rows), pub.Topic())
	published := 0
	for i, row := range rows {
		date := byDay[[2]int{row.Year, row.Day}].Date
		fmt.Printf("[%d/%d] Publishing %s (%.3f GWh)... ", i+1, len(rows), date, row.Value)
		if err := pub.Publish(date, row); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		if err := db.MarkPublished(ctx, row.Year, row.Day); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nTotal days published: %d/%d\n", published, len(rows))
	return nil
}
