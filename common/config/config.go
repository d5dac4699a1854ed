package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/rs/zerolog/log"
)

func loadEnvString(key string, result *string) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	*result = s
}

func loadEnvUint(key string, result *uint) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return
	}
	*result = uint(n)
}

func loadEnvInt(key string, result *int) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return
	}
	*result = n
}

func loadEnvBool(key string, result *bool) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return
	}
	*result = b
}

// loadEnvMillis reads a duration given in milliseconds.
func loadEnvMillis(key string, result *time.Duration) {
	var ms int
	ms = int(*result / time.Millisecond)
	loadEnvInt(key, &ms)
	*result = time.Duration(ms) * time.Millisecond
}

// loadEnvList reads a "|" separated list; user agents contain commas.
func loadEnvList(key string, result *[]string) {
	s, ok := os.LookupEnv(key)

	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(s, "|") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) > 0 {
		*result = out
	}
}

/* Configuration */

/* PgSQL Configuration */
type pgSqlConfig struct {
	Host     string `json:"host"`
	Port     uint   `json:"port"`
	Database string `json:"database"`
	SslMode  string `json:"ssl_mode"`
	User     string `json:"user"`
	Password string `json:"-"`
}

func (p pgSqlConfig) ConnStr() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s", p.Host, p.Port, p.User, p.Password, p.Database, p.SslMode)
}

func defaultPgSql() pgSqlConfig {
	return pgSqlConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "news_crawler",
		SslMode:  "disable",
	}
}

func (p *pgSqlConfig) loadFromEnv() {
	loadEnvString("POSTGRES_HOST", &p.Host)
	loadEnvUint("POSTGRES_PORT", &p.Port)
	loadEnvString("POSTGRES_DB_NAME", &p.Database)
	loadEnvString("POSTGRES_SSLMODE", &p.SslMode)
	loadEnvString("POSTGRES_USERNAME", &p.User)
	loadEnvString("POSTGRES_PASSWORD", &p.Password)
}

/* Listen Configuration */

type listenConfig struct {
	Host string `json:"host"`
	Port uint   `json:"port"`
}

func (l listenConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

func defaultListenConfig() listenConfig {
	return listenConfig{
		Host: "127.0.0.1",
		Port: 8080,
	}
}

func (l *listenConfig) loadFromEnv() {
	loadEnvString("LISTEN_HOST", &l.Host)
	loadEnvUint("LISTEN_PORT", &l.Port)
}

/* NATS Configuration */

type natsConfig struct {
	Host             string
	Port             uint
	Username         string
	Password         string `json:"-"`
	JetStreamEnabled bool
	Stream           string
}

func (c *natsConfig) loadFromEnv() {
	loadEnvString("NATS_HOST", &c.Host)
	loadEnvUint("NATS_PORT", &c.Port)
	loadEnvString("NATS_USER", &c.Username)
	loadEnvString("NATS_PASSWORD", &c.Password)
	loadEnvBool("NATS_JETSTREAM_ENABLED", &c.JetStreamEnabled)
	loadEnvString("NATS_STREAM", &c.Stream)
}

func (c *natsConfig) URL() string {
	return fmt.Sprintf("nats://%s:%d", c.Host, c.Port)
}

func defaultNatsConfig() natsConfig {
	return natsConfig{
		Host:             "localhost",
		Port:             4222,
		JetStreamEnabled: true,
		Stream:           "NEWS_CRAWLER",
	}
}

/* Redis Configuration */

type redisConfig struct {
	Host     string `json:"host"`
	Port     uint   `json:"port"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

func (r *redisConfig) loadFromEnv() {
	loadEnvString("REDIS_HOST", &r.Host)
	loadEnvUint("REDIS_PORT", &r.Port)
	loadEnvString("REDIS_PASSWORD", &r.Password)
	loadEnvInt("REDIS_DB", &r.DB)
	log.Info().Interface("redis", r).Msg("Redis config loaded")
}

func defaultRedisConfig() redisConfig {
	return redisConfig{
		Host: "localhost",
		Port: 6379,
	}
}

/* GCS Configuration */

type GCSConfig struct {
	ProjectID       string
	CredentialsFile string
	Bucket          string
}

// Enabled reports whether article archiving is configured.
func (g GCSConfig) Enabled() bool {
	return g.Bucket != ""
}

func (g *GCSConfig) loadFromEnv() {
	loadEnvString("GCS_PROJECT_ID", &g.ProjectID)
	loadEnvString("GCS_CREDENTIALS_FILE", &g.CredentialsFile)
	loadEnvString("GCS_STORAGE_BUCKET", &g.Bucket)
}

/* Crawl Configuration */

type crawlConfig struct {
	MinDelay        time.Duration
	MaxDelay        time.Duration
	TimeBudget      time.Duration
	MaxPages        int
	MaxInteractions int
	Workers         int
	RequestTimeout  time.Duration
	RetryAttempts   int
	RetryInitial    time.Duration
	RetryMax        time.Duration
	UserAgents      []string
}

func defaultCrawlConfig() crawlConfig {
	return crawlConfig{
		MinDelay:        1500 * time.Millisecond,
		MaxDelay:        3500 * time.Millisecond,
		TimeBudget:      5 * time.Minute,
		MaxPages:        5,
		MaxInteractions: 5,
		Workers:         3,
		RequestTimeout:  30 * time.Second,
		RetryAttempts:   3,
		RetryInitial:    time.Second,
		RetryMax:        8 * time.Second,
		UserAgents:      fetch.DefaultUserAgents,
	}
}

func (c *crawlConfig) loadFromEnv() {
	loadEnvMillis("CRAWL_MIN_DELAY_MS", &c.MinDelay)
	loadEnvMillis("CRAWL_MAX_DELAY_MS", &c.MaxDelay)
	loadEnvMillis("CRAWL_TIME_BUDGET_MS", &c.TimeBudget)
	loadEnvInt("CRAWL_MAX_PAGES", &c.MaxPages)
	loadEnvInt("CRAWL_MAX_INTERACTIONS", &c.MaxInteractions)
	loadEnvInt("CRAWL_WORKERS", &c.Workers)
	loadEnvMillis("CRAWL_REQUEST_TIMEOUT_MS", &c.RequestTimeout)
	loadEnvInt("CRAWL_RETRY_ATTEMPTS", &c.RetryAttempts)
	loadEnvMillis("CRAWL_RETRY_INITIAL_MS", &c.RetryInitial)
	loadEnvMillis("CRAWL_RETRY_MAX_MS", &c.RetryMax)
	loadEnvList("CRAWL_USER_AGENTS", &c.UserAgents)

	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
}

/* Browser Configuration */

type browserConfig struct {
	Headless          bool
	BinPath           string
	Stealth           bool
	NavigationTimeout time.Duration
}

func defaultBrowserConfig() browserConfig {
	return browserConfig{
		Headless:          true,
		Stealth:           true,
		NavigationTimeout: 45 * time.Second,
	}
}

func (b *browserConfig) loadFromEnv() {
	loadEnvBool("BROWSER_HEADLESS", &b.Headless)
	loadEnvString("BROWSER_BIN_PATH", &b.BinPath)
	loadEnvBool("BROWSER_STEALTH", &b.Stealth)
	loadEnvMillis("BROWSER_NAVIGATION_TIMEOUT_MS", &b.NavigationTimeout)
}

type Config struct {
	Listen  listenConfig
	PgSql   pgSqlConfig
	Nats    natsConfig
	Redis   redisConfig
	GCS     GCSConfig
	Crawl   crawlConfig
	Browser browserConfig
}

func (c *Config) LoadFromEnv() {
	c.Listen.loadFromEnv()
	c.PgSql.loadFromEnv()
	c.Nats.loadFromEnv()
	c.Redis.loadFromEnv()
	c.GCS.loadFromEnv()
	c.Crawl.loadFromEnv()
	c.Browser.loadFromEnv()
}

func DefaultConfig() Config {
	return Config{
		Listen:  defaultListenConfig(),
		PgSql:   defaultPgSql(),
		Nats:    defaultNatsConfig(),
		Redis:   defaultRedisConfig(),
		Crawl:   defaultCrawlConfig(),
		Browser: defaultBrowserConfig(),
	}
}

// FetchConfig maps the crawl and browser sections onto the fetch engine settings.
func (c Config) FetchConfig() fetch.Config {
	retry := fetch.DefaultRetryPolicy()
	retry.MaxAttempts = c.Crawl.RetryAttempts
	retry.InitialInterval = c.Crawl.RetryInitial
	retry.MaxInterval = c.Crawl.RetryMax

	return fetch.Config{
		UserAgents:        c.Crawl.UserAgents,
		RequestTimeout:    c.Crawl.RequestTimeout,
		Retry:             retry,
		Headless:          c.Browser.Headless,
		BrowserBinPath:    c.Browser.BinPath,
		Stealth:           c.Browser.Stealth,
		NavigationTimeout: c.Browser.NavigationTimeout,
	}
}
