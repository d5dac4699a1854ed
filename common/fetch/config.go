package fetch

import "time"

// DefaultUserAgents rotate between attempts.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// Config holds the settings shared by both backends.
type Config struct {
	UserAgents        []string
	RequestTimeout    time.Duration
	Retry             RetryPolicy
	Headless          bool
	BrowserBinPath    string
	Stealth           bool
	NavigationTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		UserAgents:        DefaultUserAgents,
		RequestTimeout:    30 * time.Second,
		Retry:             DefaultRetryPolicy(),
		Headless:          true,
		NavigationTimeout: 45 * time.Second,
	}
}

func (c Config) userAgent(attempt int) string {
	agents := c.UserAgents
	if len(agents) == 0 {
		agents = DefaultUserAgents
	}
	if attempt < 0 {
		attempt = 0
	}
	return agents[attempt%len(agents)]
}
