package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/jobradar/jobradar/internal/metrics"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// ErrRateLimited signals an explicit 429 from the target site; callers back
// off instead of rotating the session.
var ErrRateLimited = errors.New("rate limited by target site")

// StatusError reports a terminal unexpected HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.Code)
}

type Page struct {
	StatusCode int
	Body       string
	Headers    http.Header
}

type Options struct {
	Headers map[string]string
}

type Fetcher interface {
	Get(ctx context.Context, url string, opts Options) (*Page, error)
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const (
	softBlockThreshold = 2
	softBlockWindow    = 5 * time.Minute
)

// Client is a long-lived fetcher holding one browser-like session at a time.
// Two consecutive 403s within a short window mean the session is burned: the
// client rebuilds it (fresh cookie jar) and retries the request exactly once.
type Client struct {
	mu             sync.Mutex
	session        HTTPClient
	sessionFactory func() HTTPClient
	sessionStart   time.Time
	sessionMaxAge  time.Duration
	userAgent      string
	rateLimiter    *rate.Limiter
	minDelay       time.Duration
	maxDelay       time.Duration

	consecutive403 int
	first403At     time.Time
}

type ClientConfig struct {
	UserAgent          string
	RequestTimeout     time.Duration
	SessionMaxAge      time.Duration
	MinDelay           time.Duration
	MaxDelay           time.Duration
	MaxRequestsPerHost float64
}

func NewClient(cfg ClientConfig) *Client {
	c := &Client{
		sessionMaxAge: cfg.SessionMaxAge,
		userAgent:     cfg.UserAgent,
		minDelay:      cfg.MinDelay,
		maxDelay:      cfg.MaxDelay,
		sessionFactory: func() HTTPClient {
			jar, _ := cookiejar.New(nil)
			return &http.Client{Jar: jar, Timeout: cfg.RequestTimeout}
		},
	}
	if cfg.MaxRequestsPerHost > 0 {
		c.rateLimiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerHost), 1)
	}
	c.rotateSession()
	return c
}

// SetSessionFactory replaces how sessions are built, for tests.
func (c *Client) SetSessionFactory(factory func() HTTPClient) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionFactory = factory
	c.session = factory()
	c.sessionStart = time.Now()
}

func (c *Client) Get(ctx context.Context, url string, opts Options) (*Page, error) {

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	c.rotateIfExpired()

	page, err := c.doRequest(ctx, url, opts)
	if err != nil {
		return nil, err
	}

	if page.StatusCode == http.StatusForbidden && c.recordForbidden() {
		log.Warnf("session looks blocked on %s, rebuilding and retrying", url)
		c.rotateSession()
		page, err = c.doRequest(ctx, url, opts)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case page.StatusCode == http.StatusOK:
		c.resetForbidden()
		metrics.FetchesCounter.WithLabelValues("success").Inc()
		return page, nil
	case page.StatusCode == http.StatusTooManyRequests:
		metrics.FetchesCounter.WithLabelValues("rate_limited").Inc()
		return nil, ErrRateLimited
	case page.StatusCode == http.StatusForbidden:
		metrics.FetchesCounter.WithLabelValues("blocked").Inc()
		return nil, &StatusError{Code: page.StatusCode}
	default:
		metrics.FetchesCounter.WithLabelValues("failed").Inc()
		return nil, &StatusError{Code: page.StatusCode}
	}
}

func (c *Client) doRequest(ctx context.Context, url string, opts Options) (*Page, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "de-DE,de;q=0.9,en;q=0.8")
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	c.mu.Lock()
	session := c.session
	c.mu.Unlock()

	resp, err := session.Do(req)
	if err != nil {
		metrics.FetchesCounter.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	return &Page{StatusCode: resp.StatusCode, Body: string(body), Headers: resp.Header}, nil
}

// recordForbidden counts a 403 and reports whether the soft-block threshold
// has been reached. Counting restarts when the window has elapsed.
func (c *Client) recordForbidden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if c.consecutive403 == 0 || now.Sub(c.first403At) > softBlockWindow {
		c.consecutive403 = 1
		c.first403At = now
		return false
	}

	c.consecutive403++
	if c.consecutive403 >= softBlockThreshold {
		c.consecutive403 = 0
		return true
	}
	return false
}

func (c *Client) resetForbidden() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.consecutive403 = 0
}

func (c *Client) rotateIfExpired() {
	c.mu.Lock()
	expired := time.Since(c.sessionStart) > c.sessionMaxAge
	c.mu.Unlock()

	if expired {
		log.Debug("session reached max age, rotating")
		c.rotateSession()
	}
}

func (c *Client) rotateSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = c.sessionFactory()
	c.sessionStart = time.Now()
}

// pace sleeps a randomized interval so request timing does not look scripted.
func (c *Client) pace(ctx context.Context) error {
	if c.maxDelay <= 0 {
		return nil
	}

	delay := c.minDelay
	if span := c.maxDelay - c.minDelay; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}

	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
