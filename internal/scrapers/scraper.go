package scrapers

import (
	"context"
	"strings"

	"github.com/jobradar/jobradar/internal/domain/models"
)

// SiteAdapter is one job platform. SearchJobs returns deduplicated summaries
// across all result pages; FetchJobDetails enriches a single posting and
// returns an invalid placeholder record alongside the error when the page
// cannot be fetched, so callers always have something to cache.
type SiteAdapter interface {
	SearchJobs(ctx context.Context, keywords, location string, maxPages int, englishOnly bool) ([]models.JobSummary, error)
	FetchJobDetails(ctx context.Context, url string) (*models.JobDetails, error)
	PlatformName() string
}

// Registry resolves adapters by case-insensitive platform name.
type Registry struct {
	adapters map[string]SiteAdapter
	order    []string
}

func NewRegistry(adapters ...SiteAdapter) *Registry {
	r := &Registry{adapters: make(map[string]SiteAdapter)}
	for _, adapter := range adapters {
		r.Register(adapter)
	}
	return r
}

func (r *Registry) Register(adapter SiteAdapter) {
	key := strings.ToLower(adapter.PlatformName())
	if _, exists := r.adapters[key]; !exists {
		r.order = append(r.order, key)
	}
	r.adapters[key] = adapter
}

func (r *Registry) Get(name string) (SiteAdapter, bool) {
	adapter, ok := r.adapters[strings.ToLower(strings.TrimSpace(name))]
	return adapter, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, key := range r.order {
		names = append(names, r.adapters[key].PlatformName())
	}
	return names
}

// splitKeywords turns a comma-separated keyword string into individual
// sub-searches, falling back to the whole string when nothing splits.
func splitKeywords(keywords string) []string {
	var result []string
	for _, part := range strings.Split(keywords, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		result = []string{keywords}
	}
	return result
}

// dedupeByURL keeps the first occurrence of each job URL.
func dedupeByURL(jobs []models.JobSummary) []models.JobSummary {
	seen := make(map[string]struct{}, len(jobs))
	unique := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		if job.URL == "" {
			continue
		}
		if _, ok := seen[job.URL]; ok {
			continue
		}
		seen[job.URL] = struct{}{}
		unique = append(unique, job)
	}
	return unique
}

var blockSignatures = []string{
	"zu viele anfragen",
	"too many requests",
	"access denied",
	"cf_captcha_kind",
	"cloudflare",
	"captcha",
	"challenge-platform",
}

// looksBlocked reports whether a 200 response actually carries an anti-bot
// interstitial instead of search results.
func looksBlocked(body string) bool {
	lowered := strings.ToLower(body)
	for _, signature := range blockSignatures {
		if strings.Contains(lowered, signature) {
			return true
		}
	}
	return false
}
