package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jgoulah/powercurve/internal/dataset"
	"github.com/jgoulah/powercurve/internal/logger"
	"github.com/jgoulah/powercurve/internal/metrics"
	"github.com/jgoulah/powercurve/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard server",
	Long: `Refreshes the current year's file when stale, loads all configured years and serves
the dashboard page and the report API until interrupted.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	metrics.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var recorder dataset.Recorder
	db, err := openDB(cfg)
	if err != nil {
		logger.Warn("refresh log disabled: %v", err)
	} else {
		defer db.Close()
		recorder = db
	}

	var refresher *dataset.Refresher
	if cfg.Refresh.Enabled {
		refresher, err = newRefresher(cfg, recorder)
		if err != nil {
			return err
		}
		refreshCurrentYear(ctx, cfg, refresher)
	}

	store, err := loadStore(ctx, cfg)
	if err != nil {
		logger.Fatal("loading data: %v", err)
	}

	srv := server.New(store, server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		SourceURL:    cfg.Refresh.URLTemplate,
	})

	if refresher != nil && cfg.Refresh.Interval > 0 {
		logger.Info("refreshing every %s", cfg.Refresh.Interval)
		go srv.RefreshLoop(ctx, cfg.Refresh.Interval, func(ctx context.Context) (*dataset.Store, error) {
			res := refreshCurrentYear(ctx, cfg, refresher)
			if res.Err != nil {
				return nil, res.Err
			}
			if !res.Fetched {
				return nil, nil
			}
			return loadStore(ctx, cfg)
		})
	}

	return srv.Run(ctx)
}
