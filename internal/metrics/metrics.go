package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobradar_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	FetchesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobradar_page_fetches_total",
			Help: "Total number of page fetches by outcome.",
		},
		[]string{"outcome"},
	)
	CacheHitsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobradar_details_cache_hits_total",
			Help: "Total number of job details cache hits.",
		},
	)
	CacheMissesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobradar_details_cache_misses_total",
			Help: "Total number of job details cache misses.",
		},
	)
	ScrapedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobradar_jobs_scraped_total",
			Help: "Total number of job summaries scraped per platform.",
		},
		[]string{"platform"},
	)
	PersistedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "jobradar_jobs_persisted_total",
			Help: "Total number of jobs persisted after filtering.",
		},
	)
	RejectedJobsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobradar_jobs_rejected_total",
			Help: "Total number of jobs rejected by reason.",
		},
		[]string{"reason"},
	)
	SearchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "jobradar_search_duration_seconds",
			Help:    "Duration of each full search run in seconds.",
			Buckets: []float64{60, 300, 900, 1800, 3600},
		},
	)
	SearchStepDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "jobradar_search_step_duration_seconds",
			Help:       "Duration of each step in the search pipeline.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step"},
	)
)

func StartMetricsServer(port int) {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(FetchesCounter)
	prometheus.MustRegister(CacheHitsCounter)
	prometheus.MustRegister(CacheMissesCounter)
	prometheus.MustRegister(ScrapedJobsCounter)
	prometheus.MustRegister(PersistedJobsCounter)
	prometheus.MustRegister(RejectedJobsCounter)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchStepDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", port), nil))
	}()
}
