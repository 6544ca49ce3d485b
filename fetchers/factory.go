package fetchers

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	URL       string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
	UserAgent string
	Client    *http.Client
}

func NewBCBFetcher(c Config) *BCBFetcher {
	url := strings.TrimRight(c.URL, "/")
	if url == "" {
		url = BCBURL
	}

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.UserAgent == "" {
		c.UserAgent = "currency-quotes/1.0"
	}

	limit := rate.Inf
	if c.RateLimit > 0 {
		limit = rate.Limit(c.RateLimit)
	}

	if c.Burst <= 0 {
		c.Burst = 1
	}

	client := c.Client
	if client == nil {
		client = &http.Client{Timeout: c.Timeout}
	}

	return &BCBFetcher{
		url:       url,
		userAgent: c.UserAgent,
		client:    client,
		limiter:   rate.NewLimiter(limit, c.Burst),
	}
}
