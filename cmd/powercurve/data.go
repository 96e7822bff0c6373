package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jgoulah/powercurve/internal/config"
	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/internal/logger"
	"github.com/jgoulah/powercurve/internal/metrics"
)

// newCleaner builds the cleaner from the clean section
func newCleaner(cfg *config.Config) (dataset.Cleaner, error) {
	start, end, err := cfg.CleanWindow()
	if err != nil {
		return dataset.Cleaner{}, err
	}
	return dataset.Cleaner{
		WindowStart: start,
		WindowEnd:   end,
		FinalStatus: cfg.Clean.FinalStatus,
		Scale:       cfg.Clean.Scale,
	}, nil
}

// loadStore loads, cleans and enriches all configured years
func loadStore(ctx context.Context, cfg *config.Config) (*dataset.Store, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	cleaner, err := newCleaner(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	loader := dataset.NewLoader(cfg.YearPath, loc)
	store, err := dataset.Build(ctx, loader, cleaner, cfg.Data.Years)
	if err != nil {
		return nil, err
	}

	logger.Info("loaded %s records for %v in %s",
		humanize.Comma(int64(store.Len())), store.Years(), time.Since(start).Round(time.Millisecond))
	return store, nil
}

// newRefresher builds the refresher; recorder may be nil
func newRefresher(cfg *config.Config, recorder dataset.Recorder) (*dataset.Refresher, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	opts := dataset.RefresherOptions{
		Timeout:    cfg.Refresh.Timeout,
		MaxRetries: cfg.Refresh.MaxRetries,
		RetryDelay: cfg.Refresh.RetryDelay,
		StaleAfter: cfg.Refresh.StaleAfter,
		Location:   loc,
		Recorder:   recorder,
	}
	return dataset.NewRefresher(opts), nil
}

// refreshCurrentYear runs one refresh check for the current year and logs the outcome
func refreshCurrentYear(ctx context.Context, cfg *config.Config, refresher *dataset.Refresher) dataset.RefreshResult {
	year := cfg.CurrentYear()
	res := refresher.Refresh(ctx, year, cfg.YearPath(year), cfg.YearURL(year))
	metrics.ObserveRefresh(refreshOutcome(res), res.Age())

	switch {
	case res.Err != nil:
		logger.Warn("refresh of %d failed, serving cached data: %v", year, res.Err)
	case res.Fetched:
		logger.Info("refreshed %d: %s, data up to %s",
			year, humanize.Bytes(uint64(res.Bytes)), res.MaxTimestamp.Format(time.RFC3339))
	case res.Stale:
		logger.Info("data for %d is stale (%s) but was fetched recently, skipping", year, humanize.Time(res.MaxTimestamp))
	default:
		logger.Debug("data for %d is fresh, latest %s", year, res.MaxTimestamp.Format(time.RFC3339))
	}
	return res
}

func refreshOutcome(res dataset.RefreshResult) string {
	switch {
	case res.Err != nil:
		return metrics.RefreshFailed
	case res.Fetched:
		return metrics.RefreshFetched
	case res.Stale:
		return metrics.RefreshSkipped
	default:
		return metrics.RefreshFresh
	}
}

// describeRefresh renders a refresh result for CLI output
func describeRefresh(res dataset.RefreshResult) string {
	switch {
	case res.Err != nil:
		return fmt.Sprintf("FAILED: %v", res.Err)
	case res.Fetched:
		return fmt.Sprintf("fetched %s, data up to %s", humanize.Bytes(uint64(res.Bytes)), res.MaxTimestamp.Format("2006-01-02 15:04 MST"))
	case res.Stale:
		return fmt.Sprintf("stale (latest %s), already fetched within the last check period", res.MaxTimestamp.Format("2006-01-02 15:04 MST"))
	default:
		return fmt.Sprintf("fresh, data up to %s (%s)", res.MaxTimestamp.Format("2006-01-02 15:04 MST"), humanize.Time(res.MaxTimestamp))
	}
}
