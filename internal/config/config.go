// Package config loads and validates scraper configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/JakeFAU/team-logo-scraper/internal/crawler"
)

// EnvPrefix namespaces environment overrides, e.g. TEAMLOGOS_SCRAPER_BATCH_SIZE.
const EnvPrefix = "TEAMLOGOS"

// Config captures all scraper configuration knobs loaded via Viper.
type Config struct {
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Progress ProgressConfig `mapstructure:"progress"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Mirror   MirrorConfig   `mapstructure:"mirror"`
}

// ScraperConfig governs the range scan and the output file.
type ScraperConfig struct {
	BaseURL         string          `mapstructure:"base_url"`
	Ranges          []crawler.Range `mapstructure:"ranges"`
	BatchSize       int             `mapstructure:"batch_size"`
	SaveInterval    int             `mapstructure:"save_interval"`
	BatchDelay      time.Duration   `mapstructure:"batch_delay"`
	PlaceholderLogo string          `mapstructure:"placeholder_logo"`
	OutputFile      string          `mapstructure:"output_file"`
}

// HTTPConfig configures the page fetcher.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
	Accept         string `mapstructure:"accept"`
	AcceptLanguage string `mapstructure:"accept_language"`
	Connection     string `mapstructure:"connection"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// ProgressConfig toggles the console progress bar.
type ProgressConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig controls the optional status endpoint. An empty address
// disables it.
type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// MirrorConfig names the places the final snapshot is copied to.
type MirrorConfig struct {
	LocalDir  string `mapstructure:"local_dir"`
	GCSBucket string `mapstructure:"gcs_bucket"`
	Object    string `mapstructure:"object"`
}

// Enabled reports whether any mirror target is configured.
func (m MirrorConfig) Enabled() bool {
	return m.LocalDir != "" || m.GCSBucket != ""
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("scraper.base_url", "https://www.vlr.gg")
	v.SetDefault("scraper.ranges", []map[string]any{{"start": 17000, "end": 18000}})
	v.SetDefault("scraper.batch_size", 5)
	v.SetDefault("scraper.save_interval", 50)
	v.SetDefault("scraper.batch_delay", "500ms")
	v.SetDefault("scraper.placeholder_logo", "https://www.vlr.gg/img/vlr/tmp/vlr.png")
	v.SetDefault("scraper.output_file", "team_logos.json")
	v.SetDefault("http.timeout_seconds", 10)
	v.SetDefault("http.user_agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("http.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	v.SetDefault("http.accept_language", "en-US,en;q=0.5")
	v.SetDefault("http.connection", "keep-alive")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("progress.enabled", true)
	v.SetDefault("metrics.listen_addr", "")
	v.SetDefault("mirror.local_dir", "")
	v.SetDefault("mirror.gcs_bucket", "")
	v.SetDefault("mirror.object", "team_logos.json")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	u, err := url.Parse(c.Scraper.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("scraper.base_url must be an absolute http(s) URL, got %q", c.Scraper.BaseURL)
	}
	if len(c.Scraper.Ranges) == 0 {
		return errors.New("scraper.ranges must contain at least one range")
	}
	for i, r := range c.Scraper.Ranges {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("scraper.ranges[%d]: %w", i, err)
		}
	}
	if c.Scraper.BatchSize <= 0 {
		return errors.New("scraper.batch_size must be > 0")
	}
	if c.Scraper.SaveInterval <= 0 {
		return errors.New("scraper.save_interval must be > 0")
	}
	if c.Scraper.BatchDelay < 0 {
		return errors.New("scraper.batch_delay must be >= 0")
	}
	if c.Scraper.OutputFile == "" {
		return errors.New("scraper.output_file must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return errors.New("http.timeout_seconds must be > 0")
	}
	if c.Mirror.Enabled() && c.Mirror.Object == "" {
		return errors.New("mirror.object must be set when a mirror is configured")
	}
	return nil
}

// Timeout converts the HTTP timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// ParseRange parses a "start:end" flag value into a Range.
func ParseRange(s string) (crawler.Range, error) {
	startRaw, endRaw, ok := strings.Cut(s, ":")
	if !ok {
		return crawler.Range{}, fmt.Errorf("range %q must look like start:end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(startRaw))
	if err != nil {
		return crawler.Range{}, fmt.Errorf("range %q start: %w", s, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(endRaw))
	if err != nil {
		return crawler.Range{}, fmt.Errorf("range %q end: %w", s, err)
	}
	r := crawler.Range{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return crawler.Range{}, err
	}
	return r, nil
}
