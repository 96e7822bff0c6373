package main

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jgoulah/powercurve/internal/config"
	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/internal/metrics"
)

func TestRefreshOutcome(t *testing.T) {
	latest := time.Date(2022, 5, 31, 23, 45, 0, 0, time.UTC)

	tests := []struct {
		name string
		res  dataset.RefreshResult
		want string
		text string
	}{
		{"fresh", dataset.RefreshResult{MaxTimestamp: latest}, metrics.RefreshFresh, "fresh"},
		{"skipped", dataset.RefreshResult{MaxTimestamp: latest, Stale: true}, metrics.RefreshSkipped, "stale"},
		{"fetched", dataset.RefreshResult{MaxTimestamp: latest, Stale: true, Fetched: true, Bytes: 2048}, metrics.RefreshFetched, "fetched 2.0 kB"},
		{"failed", dataset.RefreshResult{Stale: true, Err: errors.New("status 502")}, metrics.RefreshFailed, "FAILED: status 502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, refreshOutcome(tt.res))
			assert.Contains(t, describeRefresh(tt.res), tt.text)
		})
	}
}

func TestNewCleanerFromConfig(t *testing.T) {
	cfg, err := config.Load("")
	assert.NoError(t, err)
	cfg.Clean.WindowEnd = "2020-07-01"

	cleaner, err := newCleaner(cfg)
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), cleaner.WindowStart)
	assert.Equal(t, time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC), cleaner.WindowEnd)
	assert.Equal(t, "E", cleaner.FinalStatus)
	assert.Equal(t, 1e6, cleaner.Scale)
}

func TestGetDBPath(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Path: "from-config.db"}}
	assert.Equal(t, "from-config.db", getDBPath(cfg))

	dbPath = "from-flag.db"
	defer func() { dbPath = "" }()
	assert.Equal(t, "from-flag.db", getDBPath(cfg))
}
