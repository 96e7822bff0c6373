package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jgoulah/powercurve/internal/logger"
)

// DateLayout is the layout used for the cleaning window bounds
const DateLayout = "2006-01-02"

// Config holds the application configuration
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Clean    CleanConfig    `mapstructure:"clean"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// DataConfig describes where the yearly CSV files live
type DataConfig struct {
	Dir         string `mapstructure:"dir"`
	FilePattern string `mapstructure:"file_pattern"` // e.g. "{year}_ewz_bruttolastgang.csv"
	Years       []int  `mapstructure:"years"`
	Timezone    string `mapstructure:"timezone"` // Used for timestamps without offset
}

// RefreshConfig controls the current-year cache refresh
type RefreshConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	URLTemplate string        `mapstructure:"url_template"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	StaleAfter  time.Duration `mapstructure:"stale_after"`
	Interval    time.Duration `mapstructure:"interval"` // 0 disables the periodic refresh in serve
}

// CleanConfig holds the duplicate-window and unit settings
type CleanConfig struct {
	WindowStart string  `mapstructure:"window_start"`
	WindowEnd   string  `mapstructure:"window_end"` // Empty = open ended
	FinalStatus string  `mapstructure:"final_status"`
	Scale       float64 `mapstructure:"scale"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds the sqlite database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MQTTConfig holds MQTT broker configuration for publishing
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"` // host:port
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "text" (with file:line) or "plain"
}

// Load reads the config file and environment overrides.
// A missing file is not an error; defaults are used instead.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("POWERCURVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// WriteDefault writes a config file holding all default values
func WriteDefault(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	data, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.dir", "./data")
	v.SetDefault("data.file_pattern", "{year}_ewz_bruttolastgang.csv")
	v.SetDefault("data.years", []int{2019, 2020, 2021, 2022})
	v.SetDefault("data.timezone", "Europe/Zurich")

	v.SetDefault("refresh.enabled", true)
	v.SetDefault("refresh.url_template", "https://data.stadt-zuerich.ch/dataset/ewz_bruttolastgang_stadt_zuerich/download/{year}_ewz_bruttolastgang.csv")
	v.SetDefault("refresh.timeout", "60s")
	v.SetDefault("refresh.max_retries", 3)
	v.SetDefault("refresh.retry_delay", "1s")
	v.SetDefault("refresh.stale_after", "24h")
	v.SetDefault("refresh.interval", "0s")

	v.SetDefault("clean.window_start", "2020-06-15")
	v.SetDefault("clean.window_end", "")
	v.SetDefault("clean.final_status", "E")
	v.SetDefault("clean.scale", 1e6)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "30s")

	v.SetDefault("database.path", "data.db")

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.topic_prefix", "powercurve")
	v.SetDefault("mqtt.client_id", "powercurve")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// Validate checks that all configuration values are usable
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if !strings.Contains(c.Data.FilePattern, "{year}") {
		return fmt.Errorf("data.file_pattern must contain {year}")
	}
	if len(c.Data.Years) == 0 {
		return fmt.Errorf("data.years must contain at least one year")
	}
	seen := make(map[int]bool, len(c.Data.Years))
	for _, y := range c.Data.Years {
		if y < 1900 || y > 2200 {
			return fmt.Errorf("data.years contains invalid year %d", y)
		}
		if seen[y] {
			return fmt.Errorf("data.years contains %d twice", y)
		}
		seen[y] = true
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Refresh.Enabled {
		if !strings.Contains(c.Refresh.URLTemplate, "{year}") {
			return fmt.Errorf("refresh.url_template must contain {year}")
		}
		if c.Refresh.MaxRetries < 1 {
			return fmt.Errorf("refresh.max_retries must be at least 1")
		}
		if c.Refresh.StaleAfter <= 0 {
			return fmt.Errorf("refresh.stale_after must be positive")
		}
		if c.Refresh.Interval < 0 {
			return fmt.Errorf("refresh.interval must not be negative")
		}
	}

	start, end, err := c.CleanWindow()
	if err != nil {
		return err
	}
	if !end.IsZero() && !end.After(start) {
		return fmt.Errorf("clean.window_end must be after clean.window_start")
	}
	if c.Clean.FinalStatus == "" {
		return fmt.Errorf("clean.final_status is required")
	}
	if c.Clean.Scale <= 0 {
		return fmt.Errorf("clean.scale must be positive")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when mqtt is enabled")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	if !logger.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of: text, plain")
	}

	return nil
}

// Location returns the configured time zone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data.timezone %q: %w", c.Data.Timezone, err)
	}
	return loc, nil
}

// CleanWindow returns the parsed bounds of the duplicate window.
// The returned end is zero when the window is open ended.
func (c *Config) CleanWindow() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, c.Clean.WindowStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("clean.window_start: %w", err)
	}
	var end time.Time
	if c.Clean.WindowEnd != "" {
		end, err = time.Parse(DateLayout, c.Clean.WindowEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("clean.window_end: %w", err)
		}
	}
	return start, end, nil
}

// CurrentYear returns the latest configured year, the one whose file is still growing
func (c *Config) CurrentYear() int {
	current := 0
	for _, y := range c.Data.Years {
		if y > current {
			current = y
		}
	}
	return current
}

// YearPath returns the cached file path for a year
func (c *Config) YearPath(year int) string {
	name := strings.ReplaceAll(c.Data.FilePattern, "{year}", strconv.Itoa(year))
	return filepath.Join(c.Data.Dir, name)
}

// YearURL returns the download URL for a year
func (c *Config) YearURL(year int) string {
	return strings.ReplaceAll(c.Refresh.URLTemplate, "{year}", strconv.Itoa(year))
}
