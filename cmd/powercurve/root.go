package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jgoulah/powercurve/internal/config"
	"github.com/jgoulah/powercurve/internal/database"
	"github.com/jgoulah/powercurve/internal/logger"
)

var (
	cfgFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "powercurve",
	Short: "Dashboard for the Zurich city electricity load curve",
	Long: `Powercurve loads the quarter-hourly gross load curve of the city of Zurich,
keeps the current year's file fresh, and serves year, day and week consumption reports
as a web dashboard, CLI tables and CSV/XLSX/PDF exports.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default from config, ./data.db)")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// getDBPath returns the database file path, flag first
func getDBPath(cfg *config.Config) string {
	if dbPath != "" {
		return dbPath
	}
	if cfg != nil && cfg.Database.Path != "" {
		return cfg.Database.Path
	}
	return "data.db"
}

// loadConfig loads and validates the configuration and sets up logging
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	return cfg, nil
}

// openDB opens the database connection
func openDB(cfg *config.Config) (*database.DB, error) {
	path := getDBPath(cfg)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return database.New(path)
}
