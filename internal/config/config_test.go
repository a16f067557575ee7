package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("ESPN_LEAGUE_ID", "12345")
	t.Setenv("DATABASE_PASSWORD", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://lm-api-reads.fantasy.espn.com/apis/v3/games/ffl", cfg.ESPNBaseURL)
	assert.Equal(t, 2017, cfg.HistoryCutoffYear)
	assert.Equal(t, []int{2025}, cfg.LiveSeasons)
	assert.Equal(t, 17, cfg.WeeksPerSeason)
	assert.Equal(t, 3, cfg.RetryMaxAttempts)
	assert.Equal(t, time.Second, cfg.RetryBaseDelay)
	assert.Equal(t, 5*time.Minute, cfg.StandingsCacheTTL)
	assert.Equal(t, 8080, cfg.APIPort)
	assert.True(t, cfg.EnableScheduler)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_MissingLeagueID(t *testing.T) {
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("ESPN_LEAGUE_ID", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresCookies(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("ESPN_S2", "cookie")
	t.Setenv("ESPN_SWID", "{swid}")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_LiveSeasonsList(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LIVE_SEASONS", "2024,2025")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []int{2024, 2025}, cfg.LiveSeasons)
	set := cfg.LiveSeasonSet()
	assert.True(t, set[2024])
	assert.True(t, set[2025])
	assert.False(t, set[2019])
}

func TestValidate_Bounds(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WEEKS_PER_SEASON", "25")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("WEEKS_PER_SEASON", "17")
	t.Setenv("RETRY_MAX_ATTEMPTS", "0")
	_, err = Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &Config{
		DatabaseHost:     "db.internal",
		DatabasePort:     5433,
		DatabaseUser:     "liga",
		DatabasePassword: "pw",
		DatabaseName:     "laliga",
		DatabaseSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=liga password=pw dbname=laliga sslmode=require",
		cfg.DatabaseDSN())
}

func TestRedisAddr(t *testing.T) {
	cfg := &Config{RedisHost: "cache.internal", RedisPort: 6380}
	assert.Equal(t, "cache.internal:6380", cfg.RedisAddr())
}
