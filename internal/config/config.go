package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// ESPN fantasy API
	ESPNLeagueID      string        `envconfig:"ESPN_LEAGUE_ID" required:"true"`
	ESPNS2            string        `envconfig:"ESPN_S2" default:""`
	ESPNSWID          string        `envconfig:"ESPN_SWID" default:""`
	ESPNBaseURL       string        `envconfig:"ESPN_BASE_URL" default:"https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl"`
	ESPNTimeout       time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`
	HistoryCutoffYear int           `envconfig:"HISTORY_CUTOFF_YEAR" default:"2017"`

	// Seasons currently in progress, eligible for live fetches. Every
	// other season is served from cache.
	LiveSeasons    []int `envconfig:"LIVE_SEASONS" default:"2025"`
	WeeksPerSeason int   `envconfig:"WEEKS_PER_SEASON" default:"17"`

	// Upstream retry policy
	RetryMaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"3"`
	RetryBaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"laliga"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"laliga_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Response cache TTLs
	StandingsCacheTTL time.Duration `envconfig:"STANDINGS_CACHE_TTL" default:"5m"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// API server
	APIPort int `envconfig:"API_PORT" default:"8080"`

	// Scheduler
	EnableScheduler    bool          `envconfig:"ENABLE_SCHEDULER" default:"true"`
	NightlyRefreshCron string        `envconfig:"NIGHTLY_REFRESH_CRON" default:"0 2 * * *"`
	WeeklyPollInterval time.Duration `envconfig:"WEEKLY_POLL_INTERVAL" default:"15m"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.ESPNLeagueID == "" {
		return fmt.Errorf("ESPN_LEAGUE_ID is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.IsProduction() && (c.ESPNS2 == "" || c.ESPNSWID == "") {
		return fmt.Errorf("ESPN_S2 and ESPN_SWID are required in production")
	}

	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}

	if c.WeeksPerSeason < 1 || c.WeeksPerSeason > 18 {
		return fmt.Errorf("WEEKS_PER_SEASON must be between 1 and 18")
	}

	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// LiveSeasonSet returns the live seasons as a lookup set
func (c *Config) LiveSeasonSet() map[int]bool {
	set := make(map[int]bool, len(c.LiveSeasons))
	for _, season := range c.LiveSeasons {
		set[season] = true
	}
	return set
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or panics on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
