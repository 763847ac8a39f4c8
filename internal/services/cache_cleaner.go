package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type jobCleanupRepository interface {
	RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type detailsCleanupRepository interface {
	DeleteExpired(ctx context.Context, defaultTTLDays int, platformTTLDays map[string]int) (int64, error)
}

// CacheCleaner sweeps expired details cache rows and stale job records once
// a night.
type CacheCleaner struct {
	jobs            jobCleanupRepository
	details         detailsCleanupRepository
	cron            *cron.Cron
	retentionDays   int
	cacheTTLDays    int
	platformTTLDays map[string]int
}

func NewCacheCleaner(jobs jobCleanupRepository, details detailsCleanupRepository,
	retentionDays, cacheTTLDays int, platformTTLDays map[string]int) (*CacheCleaner, error) {

	if retentionDays <= 0 {
		return nil, errors.New("job retention in days must be greater than zero")
	}
	if cacheTTLDays <= 0 {
		return nil, errors.New("cache TTL in days must be greater than zero")
	}

	cc := &CacheCleaner{
		jobs:            jobs,
		details:         details,
		cron:            cron.New(),
		retentionDays:   retentionDays,
		cacheTTLDays:    cacheTTLDays,
		platformTTLDays: platformTTLDays,
	}

	_, err := cc.cron.AddFunc("0 3 * * *", cc.sweep)
	if err != nil {
		return nil, err
	}

	cc.cron.Start()
	log.Infof("cache cleaner started, job retention %v days, cache TTL %v days",
		cc.retentionDays, cc.cacheTTLDays)
	return cc, nil
}

func (cc *CacheCleaner) Stop() {
	cc.cron.Stop()
}

func (cc *CacheCleaner) sweep() {

	ctx := context.Background()

	removed, err := cc.details.DeleteExpired(ctx, cc.cacheTTLDays, cc.platformTTLDays)
	if err != nil {
		log.Errorf("failed to clean details cache: %v", err)
	} else {
		log.Infof("details cache cleaned, removed rows: %v", removed)
	}

	cutoff := time.Now().AddDate(0, 0, -cc.retentionDays)
	removed, err = cc.jobs.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		log.Errorf("failed to clean old job records: %v", err)
	} else {
		log.Infof("old job records cleaned, removed rows: %v", removed)
	}
}
