package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LISTEN_PORT", "9090")
	t.Setenv("CRAWL_MIN_DELAY_MS", "200")
	t.Setenv("CRAWL_MAX_DELAY_MS", "100")
	t.Setenv("CRAWL_TIME_BUDGET_MS", "60000")
	t.Setenv("CRAWL_MAX_PAGES", "12")
	t.Setenv("CRAWL_USER_AGENTS", "agent-a, with comma | agent-b")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_STEALTH", "not-a-bool")
	t.Setenv("REDIS_DB", "2")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "127.0.0.1:9090", cfg.Listen.Addr())
	assert.Equal(t, 200*time.Millisecond, cfg.Crawl.MinDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Crawl.MaxDelay)
	assert.Equal(t, time.Minute, cfg.Crawl.TimeBudget)
	assert.Equal(t, 12, cfg.Crawl.MaxPages)
	assert.Equal(t, []string{"agent-a, with comma", "agent-b"}, cfg.Crawl.UserAgents)
	assert.False(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.False(t, cfg.GCS.Enabled())
}

func TestFetchConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Crawl.RetryAttempts = 5

	fc := cfg.FetchConfig()
	assert.Equal(t, 5, fc.Retry.MaxAttempts)
	assert.NotEmpty(t, fc.Retry.RetryableStatus)
	assert.Equal(t, cfg.Browser.NavigationTimeout, fc.NavigationTimeout)
	assert.Equal(t, cfg.Crawl.UserAgents, fc.UserAgents)
}
