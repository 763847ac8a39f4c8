package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	"github.com/jobradar/jobradar/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type detailsRepository interface {
	Get(ctx context.Context, url string) (*models.CachedJobDetails, error)
	Upsert(ctx context.Context, row models.CachedJobDetails) error
}

const (
	claimTTL         = 2 * time.Minute
	claimPollDelay   = 100 * time.Millisecond
	maxFetchAttempts = 3
	fetchRetryDelay  = time.Second
)

// DetailsCache layers an in-process cache over the persistent job details
// store. Negative entries (failed fetches) are cached too and count as hits
// until their TTL expires, so a broken URL is not refetched on every run.
type DetailsCache struct {
	repo            detailsRepository
	memory          *gocache.Cache
	claims          *gocache.Cache
	defaultTTL      time.Duration
	platformTTL     map[string]time.Duration
	maxAttempts     int
	retryDelay      time.Duration
	hits            atomic.Int64
	misses          atomic.Int64
	storageFailures atomic.Int64
}

type CacheStats struct {
	Hits            int64
	Misses          int64
	StorageFailures int64
	HitRate         float64
}

func NewDetailsCache(repo detailsRepository, defaultTTLDays int, platformTTLDays map[string]int) (*DetailsCache, error) {

	if defaultTTLDays <= 0 {
		return nil, errors.New("default cache TTL in days must be greater than zero")
	}

	platformTTL := make(map[string]time.Duration, len(platformTTLDays))
	for platform, days := range platformTTLDays {
		if days <= 0 {
			return nil, errors.Errorf("cache TTL for platform %v must be greater than zero", platform)
		}
		platformTTL[platform] = time.Duration(days) * 24 * time.Hour
	}

	return &DetailsCache{
		repo:        repo,
		memory:      gocache.New(30*time.Minute, time.Hour),
		claims:      gocache.New(claimTTL, time.Minute),
		defaultTTL:  time.Duration(defaultTTLDays) * 24 * time.Hour,
		platformTTL: platformTTL,
		maxAttempts: maxFetchAttempts,
		retryDelay:  fetchRetryDelay,
	}, nil
}

// SetMaxFetchAttempts overrides how often GetOrFetch tries a failing URL
// before caching the failure.
func (c *DetailsCache) SetMaxFetchAttempts(attempts int) {
	if attempts > 0 {
		c.maxAttempts = attempts
	}
}

func (c *DetailsCache) ttlFor(platform string) time.Duration {
	if ttl, ok := c.platformTTL[platform]; ok {
		return ttl
	}
	return c.defaultTTL
}

// Get returns the cached details for url, or nil on a miss. Rows older than
// their platform TTL are misses; storage errors are logged and count as
// misses so a broken database never blocks scraping.
func (c *DetailsCache) Get(ctx context.Context, url string) *models.JobDetails {

	if cached, found := c.memory.Get(url); found {
		c.recordHit()
		return cached.(*models.JobDetails)
	}

	row, err := c.repo.Get(ctx, url)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to read details cache: %v", err)
		c.storageFailures.Add(1)
		c.recordMiss()
		return nil
	}
	if row == nil || time.Since(row.FetchedAt) > c.ttlFor(row.Platform) {
		c.recordMiss()
		return nil
	}

	details := row.ToDetails()
	c.memory.Set(url, details, gocache.DefaultExpiration)
	c.recordHit()
	return details
}

// Put stores details for url in both layers and releases any claim on it.
func (c *DetailsCache) Put(ctx context.Context, url, platform string, details *models.JobDetails) error {

	defer c.Release(url)

	c.memory.Set(url, details, gocache.DefaultExpiration)

	if err := c.repo.Upsert(ctx, models.CacheRowFrom(url, platform, *details)); err != nil {
		c.storageFailures.Add(1)
		return errors.Wrap(err, "failed to persist details cache row")
	}
	return nil
}

// TryClaim takes a TTL'd lease on url so only one fetch is in flight for it.
// A stale lease expires on its own when the holder dies without releasing.
func (c *DetailsCache) TryClaim(url string) bool {
	return c.claims.Add(url, struct{}{}, claimTTL) == nil
}

func (c *DetailsCache) Release(url string) {
	c.claims.Delete(url)
}

// GetOrFetch returns cached details for url or fetches them via fetch,
// retrying transient failures with growing delays. After the final failure a
// negative placeholder is cached so the URL is left alone until it expires.
func (c *DetailsCache) GetOrFetch(ctx context.Context, url, platform string,
	fetch func(ctx context.Context) (*models.JobDetails, error)) (*models.JobDetails, error) {

	if details := c.Get(ctx, url); details != nil {
		return details, nil
	}

	for !c.TryClaim(url) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(claimPollDelay):
		}
		if details := c.Get(ctx, url); details != nil {
			return details, nil
		}
	}
	defer c.Release(url)

	// the claim winner may have filled the cache between Get and TryClaim
	if details := c.Get(ctx, url); details != nil {
		return details, nil
	}

	details, err := c.fetchWithRetries(ctx, fetch)
	if err != nil {
		placeholder := models.FailedDetails(url, err.Error())
		if cacheErr := c.Put(ctx, url, platform, placeholder); cacheErr != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to cache fetch failure for %v: %v", url, cacheErr)
		}
		return placeholder, err
	}

	if cacheErr := c.Put(ctx, url, platform, details); cacheErr != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to cache details for %v: %v", url, cacheErr)
	}
	return details, nil
}

func (c *DetailsCache) fetchWithRetries(ctx context.Context,
	fetch func(ctx context.Context) (*models.JobDetails, error)) (*models.JobDetails, error) {

	var details *models.JobDetails
	var err error
	delay := c.retryDelay

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		details, err = fetch(ctx)
		if err == nil {
			return details, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, err
}

func (c *DetailsCache) Stats() CacheStats {

	stats := CacheStats{
		Hits:            c.hits.Load(),
		Misses:          c.misses.Load(),
		StorageFailures: c.storageFailures.Load(),
	}
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}
	return stats
}

func (c *DetailsCache) recordHit() {
	c.hits.Add(1)
	metrics.CacheHitsCounter.Inc()
}

func (c *DetailsCache) recordMiss() {
	c.misses.Add(1)
	metrics.CacheMissesCounter.Inc()
}
