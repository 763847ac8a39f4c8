package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/jobradar/jobradar/internal/clients/fetch"
	"github.com/jobradar/jobradar/internal/clients/gemini"
	"github.com/jobradar/jobradar/internal/config"
	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	"github.com/jobradar/jobradar/internal/metrics"
	"github.com/jobradar/jobradar/internal/repositories"
	"github.com/jobradar/jobradar/internal/scrapers"
	"github.com/jobradar/jobradar/internal/services"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func buildFetcher(cfg *config.Config) fetch.Fetcher {

	client := fetch.NewClient(fetch.ClientConfig{
		UserAgent:          cfg.Scraper.UserAgent,
		RequestTimeout:     cfg.Scraper.RequestTimeout,
		SessionMaxAge:      cfg.Scraper.SessionMaxAge,
		MinDelay:           cfg.Scraper.MinDelay,
		MaxDelay:           cfg.Scraper.MaxDelay,
		MaxRequestsPerHost: cfg.Scraper.MaxRequestsPerHost,
	})

	if cfg.Scraper.FlareSolverrURL == "" {
		return client
	}
	proxy := fetch.NewProxyClient(cfg.Scraper.FlareSolverrURL, cfg.Scraper.ProxyTimeout)
	return fetch.NewFallbackFetcher(client, proxy)
}

func buildOracle(ctx context.Context, cfg *config.Config) services.ScoringOracle {

	fallback := services.NewHeuristicAssessor(cfg.Search.Keywords)
	if cfg.AI.Key == "" {
		log.Info("no AI key configured, using heuristic assessment")
		return fallback
	}

	model := gemini.Model20Flash
	if cfg.AI.Model != "" {
		model = gemini.Model(cfg.AI.Model)
	}

	aiClient, err := gemini.NewClient(ctx, cfg.AI.Key, model)
	if err != nil {
		log.Fatalf("can't create AI client: %v", err)
	}
	aiClient.SetMinuteRateLimit(cfg.AI.MaxRequestsPerMinute)
	aiClient.SetDayRateLimit(cfg.AI.MaxRequestsPerDay)

	return services.NewAIAssessor(aiClient, fallback)
}

func searchRequestFrom(cfg *config.Config) models.SearchRequest {

	request := models.NewSearchRequest(
		strings.Split(cfg.Search.Keywords, ","), cfg.Search.Location, cfg.Search.Platforms)

	if cfg.Search.MaxPages > 0 {
		request.MaxPages = cfg.Search.MaxPages
	}
	if cfg.Search.RelevanceThreshold > 0 {
		request.RelevanceThreshold = cfg.Search.RelevanceThreshold
	}
	if cfg.Search.MaxWorkers > 0 {
		request.MaxWorkers = cfg.Search.MaxWorkers
	}
	if cfg.Search.SearchRadiusKm > 0 {
		request.SearchRadiusKm = cfg.Search.SearchRadiusKm
	}
	request.EnglishOnly = cfg.Search.EnglishOnly
	request.DeepScrape = cfg.Search.DeepScrape
	return request
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer(viper.GetInt("METRICS_PORT"))

	dbContext, err := repositories.NewDbContext(cfg.DB.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}
	defer dbContext.Close()

	err = dbContext.Migrate()
	if err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	jobs := repositories.NewJobsRepository(dbContext.DB)
	details := repositories.NewJobDetailsRepository(dbContext.DB)

	cache, err := services.NewDetailsCache(details, cfg.DB.CacheTTLDays, cfg.DB.PlatformTTLDays)
	if err != nil {
		log.Fatalf("can't create details cache: %v", err)
	}
	cache.SetMaxFetchAttempts(cfg.Scraper.MaxRetries)

	cleaner, err := services.NewCacheCleaner(jobs, details,
		cfg.DB.JobRetentionDays, cfg.DB.CacheTTLDays, cfg.DB.PlatformTTLDays)
	if err != nil {
		log.Fatalf("can't create cache cleaner: %v", err)
	}
	defer cleaner.Stop()

	fetcher := buildFetcher(cfg)
	registry := scrapers.NewRegistry(
		scrapers.NewStellenanzeigen(fetcher),
		scrapers.NewMeinestadt(fetcher),
		scrapers.NewJobrapido(fetcher),
	)

	bus := EventBus.New()
	orchestrator := services.NewOrchestrator(bus, registry, cache, buildOracle(ctx, cfg), jobs)

	request := searchRequestFrom(cfg)

	if cfg.Search.Interval <= 0 {
		if _, err := orchestrator.Run(ctx, request); err != nil {
			log.Fatalf("search run failed: %v", err)
		}
		return
	}

	go orchestrator.RunForever(ctx, request, cfg.Search.Interval)

	<-ctx.Done()
	log.Info("Shutting down services...")
}
