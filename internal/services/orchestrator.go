package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/jobradar/jobradar/internal/domain/events"
	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/geo"
	"github.com/jobradar/jobradar/internal/logger"
	"github.com/jobradar/jobradar/internal/metrics"
	"github.com/jobradar/jobradar/internal/scrapers"
	log "github.com/sirupsen/logrus"
)

type jobRepository interface {
	dedupRepository
	AddBatch(ctx context.Context, records []models.JobRecord) (int64, error)
}

const (
	enrichmentTimeout = 30 * time.Second

	// jobs without a full description are judged on title and snippet
	// alone, so the relevance bar drops to keep recall reasonable
	noDescriptionThreshold = 3
)

// internal hosts and search result pages that must never be fetched as a
// job posting
var skipEnrichmentMarkers = []string{
	"internal.tjgprod.io",
	"searchcore.internal",
}

// Orchestrator runs one aggregation pass: scrape all requested platforms,
// merge, enrich, score, filter and persist.
type Orchestrator struct {
	bus      EventBus.Bus
	registry *scrapers.Registry
	cache    *DetailsCache
	oracle   ScoringOracle
	jobs     jobRepository
	dedup    *duplicateDetector

	enrichTimeout time.Duration
}

func NewOrchestrator(bus EventBus.Bus, registry *scrapers.Registry, cache *DetailsCache,
	oracle ScoringOracle, jobs jobRepository) *Orchestrator {

	return &Orchestrator{
		bus:      bus,
		registry: registry,
		cache:    cache,
		oracle:   oracle,
		jobs:     jobs,
		dedup:    newDuplicateDetector(jobs),

		enrichTimeout: enrichmentTimeout,
	}
}

// Run executes one full search. The merged, filtered result is returned even
// when persistence fails, so callers can still act on what was found.
func (o *Orchestrator) Run(ctx context.Context, request models.SearchRequest) ([]models.JobRecord, error) {

	if err := request.Validate(); err != nil {
		return nil, err
	}

	startedAt := time.Now()
	log.Infof("starting search for %q on platforms %v", request.KeywordString(), request.Platforms)

	merged := o.scrapePlatforms(ctx, request)
	log.Infof("scraped %v unique jobs across %v platforms", len(merged), len(request.Platforms))

	if request.DeepScrape {
		o.enrich(ctx, request, merged)
	}

	accepted := o.filter(ctx, request, merged)

	persisted := o.persist(ctx, accepted)

	duration := time.Since(startedAt)
	metrics.SearchDuration.Observe(duration.Seconds())

	for _, record := range accepted {
		o.bus.Publish(events.JobFoundTopic, events.JobFound{Job: record, Keywords: request.KeywordString()})
	}
	o.bus.Publish(events.SearchCompletedTopic, events.SearchCompleted{
		Request:    request,
		Found:      len(merged),
		Persisted:  persisted,
		Duration:   duration,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	})

	log.Infof("search finished after %v: %v scraped, %v accepted, %v persisted",
		duration, len(merged), len(accepted), persisted)
	return accepted, nil
}

// RunForever repeats Run on the given interval until ctx is cancelled. A run
// that overshoots the interval starts the next one immediately.
func (o *Orchestrator) RunForever(ctx context.Context, request models.SearchRequest, interval time.Duration) {

	for {
		start := time.Now()
		if _, err := o.Run(ctx, request); err != nil {
			log.Errorf("search run failed: %v", err)
		}

		sleep := interval - time.Since(start)
		if sleep < 0 {
			sleep = 0
		}
		log.Infof("next search at %v", time.Now().Add(sleep))

		select {
		case <-ctx.Done():
			return
		case <-time.After(sleep):
		}
	}
}

// scrapePlatforms fans the search out over the requested platforms and merges
// the results in request order, first occurrence of a URL winning. A failing
// or panicking platform is logged and skipped without affecting the others.
func (o *Orchestrator) scrapePlatforms(ctx context.Context, request models.SearchRequest) []models.JobSummary {

	defer observeStep("scrape")()

	results := make([][]models.JobSummary, len(request.Platforms))
	keywords := request.KeywordString()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workerCount(request.MaxWorkers))

	for i, platform := range request.Platforms {
		adapter, ok := o.registry.Get(platform)
		if !ok {
			log.Errorf("unknown platform %q requested, skipping", platform)
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(i int, platform string, adapter scrapers.SiteAdapter) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer func() {
				if r := recover(); r != nil {
					log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
						Errorf("scraper for %v panicked: %v", platform, r)
				}
			}()

			jobs, err := adapter.SearchJobs(ctx, keywords, request.Location, request.MaxPages, request.EnglishOnly)
			if err != nil {
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
					Errorf("search on %v failed: %v", platform, err)
				return
			}
			metrics.ScrapedJobsCounter.WithLabelValues(adapter.PlatformName()).Add(float64(len(jobs)))
			results[i] = jobs
		}(i, platform, adapter)
	}
	wg.Wait()

	var all []models.JobSummary
	for _, jobs := range results {
		all = append(all, jobs...)
	}
	return mergeByURL(all)
}

// enrich fetches full details for every job with a fetchable URL, going
// through the cache so repeated runs do not refetch. Result-card snippets do
// not exempt a job: the full posting feeds scoring and description dedup.
// Each job gets a hard timeout; on expiry the summary is kept as scraped.
func (o *Orchestrator) enrich(ctx context.Context, request models.SearchRequest, jobs []models.JobSummary) {

	defer observeStep("enrich")()

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workerCount(request.MaxWorkers))

	for i := range jobs {
		if !enrichable(jobs[i].URL) {
			continue
		}
		adapter, ok := o.registry.Get(jobs[i].Platform)
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}
		go func(job *models.JobSummary, adapter scrapers.SiteAdapter) {
			defer wg.Done()
			defer func() { <-semaphore }()

			jobCtx, cancel := context.WithTimeout(ctx, o.enrichTimeout)
			defer cancel()

			details, err := o.cache.GetOrFetch(jobCtx, job.URL, job.Platform,
				func(fetchCtx context.Context) (*models.JobDetails, error) {
					return adapter.FetchJobDetails(fetchCtx, job.URL)
				})
			if err != nil || details == nil || !details.IsValid {
				return
			}
			applyDetails(job, details)
		}(&jobs[i], adapter)
	}
	wg.Wait()
}

// filter scores every job and keeps the ones that pass location, duplicate
// and relevance checks.
func (o *Orchestrator) filter(ctx context.Context, request models.SearchRequest, jobs []models.JobSummary) []models.JobRecord {

	defer observeStep("filter")()

	locations := geo.NewFilter(request.Location, request.SearchRadiusKm)
	fallback := NewHeuristicAssessor(request.KeywordString())
	keywords := request.KeywordString()

	var accepted []models.JobRecord
	for _, job := range jobs {

		if !locations.Admit(job.Location) {
			metrics.RejectedJobsCounter.WithLabelValues("location").Inc()
			continue
		}

		if duplicate, reason := o.dedup.IsDuplicate(ctx, job, accepted); duplicate {
			metrics.RejectedJobsCounter.WithLabelValues("duplicate_" + reason).Inc()
			continue
		}

		assessment, err := o.oracle.Assess(ctx, job)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeAiApi).
				Errorf("assessment failed for %v: %v", job.URL, err)
			assessment, _ = fallback.Assess(ctx, job)
		}

		if assessment.ShouldFilter {
			metrics.RejectedJobsCounter.WithLabelValues("filtered").Inc()
			continue
		}
		if assessment.RelevanceScore < o.relevanceThreshold(request, job) {
			metrics.RejectedJobsCounter.WithLabelValues("low_relevance").Inc()
			continue
		}

		accepted = append(accepted, models.RecordFrom(job, assessment, keywords))
	}
	return accepted
}

func (o *Orchestrator) relevanceThreshold(request models.SearchRequest, job models.JobSummary) int {
	if !job.HasDescription() {
		return noDescriptionThreshold
	}
	return request.RelevanceThreshold
}

func (o *Orchestrator) persist(ctx context.Context, records []models.JobRecord) int {

	defer observeStep("persist")()

	inserted, err := o.jobs.AddBatch(ctx, records)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to persist jobs: %v", err)
		return 0
	}
	metrics.PersistedJobsCounter.Add(float64(inserted))
	return int(inserted)
}

func applyDetails(job *models.JobSummary, details *models.JobDetails) {

	if details.Description != "" {
		job.Description = details.Description
		job.Language = scrapers.DetectLanguage(details.Title + " " + details.Description)
	}
	if job.Company == "" && details.Company != "" && details.Company != models.PlaceholderCompany {
		job.Company = details.Company
	}
	if job.Location == "" {
		job.Location = details.Location
	}
	if job.Salary == "" {
		job.Salary = details.Salary
	}
}

// enrichable rejects internal hosts and search result pages whose URLs leak
// into listings on aggregator platforms.
func enrichable(url string) bool {

	lowered := strings.ToLower(url)
	for _, marker := range skipEnrichmentMarkers {
		if strings.Contains(lowered, marker) {
			return false
		}
	}
	if strings.Contains(lowered, "jobs?") && strings.Contains(lowered, "q=") {
		return false
	}
	return true
}

func mergeByURL(jobs []models.JobSummary) []models.JobSummary {
	seen := make(map[string]struct{}, len(jobs))
	merged := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		if job.URL == "" {
			continue
		}
		if _, ok := seen[job.URL]; ok {
			continue
		}
		seen[job.URL] = struct{}{}
		merged = append(merged, job)
	}
	return merged
}

func workerCount(maxWorkers int) int {
	if maxWorkers <= 1 {
		return 1
	}
	return maxWorkers
}

func observeStep(step string) func() {
	start := time.Now()
	return func() {
		metrics.SearchStepDuration.WithLabelValues(step).Observe(time.Since(start).Seconds())
	}
}
