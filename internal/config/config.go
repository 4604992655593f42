package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "CAMPAIGN_INDEXER_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Inputs        InputConfig        `yaml:"inputs"`
	Artifacts     ArtifactConfig     `yaml:"artifacts"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig selects log level and output shape.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// SchedulerConfig defines when the pipeline should run.
type SchedulerConfig struct {
	Daemon   bool           `yaml:"daemon"`
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// IntervalDuration parses the configured run interval, defaulting to daily.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// InputConfig locates the producer drop directory.
type InputConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// ArtifactConfig names where run outputs land on disk.
type ArtifactConfig struct {
	BaselineDir string `yaml:"baselineDir"`
	DeltaDir    string `yaml:"deltaDir"`
	IndexPath   string `yaml:"indexPath"`
	LightPath   string `yaml:"lightPath"`
}

// DatabaseConfig describes the optional Postgres mirror.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SiteConfig describes one point-reward site: display name, its yen-per-point
// exchange rate, and the URL shapes carrying campaign IDs. Rates genuinely
// differ per site and must never collapse into one constant.
type SiteConfig struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	PointRate   float64  `yaml:"pointRate"`
	URLPatterns []string `yaml:"urlPatterns"`
}

// SiteNames maps site IDs to display names.
func (c Config) SiteNames() map[string]string {
	names := make(map[string]string, len(c.Sites))
	for _, s := range c.Sites {
		names[s.ID] = s.Name
	}
	return names
}

// PointRates maps site IDs to yen-per-point rates.
func (c Config) PointRates() map[string]float64 {
	rates := make(map[string]float64, len(c.Sites))
	for _, s := range c.Sites {
		rates[s.ID] = s.PointRate
	}
	return rates
}

// URLPatterns maps site IDs to their campaign-URL ID patterns.
func (c Config) URLPatterns() map[string][]string {
	patterns := make(map[string][]string, len(c.Sites))
	for _, s := range c.Sites {
		if len(s.URLPatterns) > 0 {
			patterns[s.ID] = s.URLPatterns
		}
	}
	return patterns
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if len(cfg.Sites) == 0 {
		cfg.Sites = defaultConfig().Sites
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.JSON {
		base.Logging.JSON = true
	}

	if override.Scheduler.Daemon {
		base.Scheduler.Daemon = true
	}
	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Inputs.Dir != "" {
		base.Inputs.Dir = override.Inputs.Dir
	}
	if override.Inputs.Pattern != "" {
		base.Inputs.Pattern = override.Inputs.Pattern
	}

	if override.Artifacts.BaselineDir != "" {
		base.Artifacts.BaselineDir = override.Artifacts.BaselineDir
	}
	if override.Artifacts.DeltaDir != "" {
		base.Artifacts.DeltaDir = override.Artifacts.DeltaDir
	}
	if override.Artifacts.IndexPath != "" {
		base.Artifacts.IndexPath = override.Artifacts.IndexPath
	}
	if override.Artifacts.LightPath != "" {
		base.Artifacts.LightPath = override.Artifacts.LightPath
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{Interval: "24h", Timezone: defaultTimezone, location: tz},
		Inputs:    InputConfig{Dir: "data/producer", Pattern: "*.json"},
		Artifacts: ArtifactConfig{
			BaselineDir: "data/baselines",
			DeltaDir:    "data/deltas",
			IndexPath:   "public/search-data.json",
			LightPath:   "public/search-index.json",
		},
		Database: DatabaseConfig{DSN: ""},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BotToken: "", ChatID: ""},
		},
		Sites: []SiteConfig{
			{
				ID:        "chobirich",
				Name:      "ちょびリッチ",
				PointRate: 0.5,
				URLPatterns: []string{
					`/ad_details/(\d+)`,
				},
			},
			{
				ID:        "moppy",
				Name:      "モッピー",
				PointRate: 1,
				URLPatterns: []string{
					`[?&]site_id=(\d+)`,
				},
			},
			{
				ID:        "pointincome",
				Name:      "ポイントインカム",
				PointRate: 0.1,
				URLPatterns: []string{
					`/ad/(\d+)/`,
				},
			},
		},
	}
}
