package models

import (
	"strings"
	"time"
)

// PlaceholderCompany is used when a platform does not expose the employer.
const PlaceholderCompany = "Company Not Specified"

// JobSummary is a single scraped listing before enrichment. URL is the
// identity key: two summaries with the same non-empty URL are the same job.
type JobSummary struct {
	Title       string
	Company     string
	Location    string
	URL         string
	Salary      string
	Description string
	Platform    string
	Language    string
	PostedAt    time.Time
	ScrapedAt   time.Time
}

// HasDescription reports whether the summary carries any usable description text.
func (s JobSummary) HasDescription() bool {
	return strings.TrimSpace(s.Description) != ""
}

// JobDetails is the enriched record for one job URL. Adapters always return
// one, possibly with IsValid=false, so the cache has something to store for
// failed URLs too.
type JobDetails struct {
	Title          string
	Company        string
	Location       string
	Salary         string
	Description    string
	Requirements   string
	Benefits       string
	ContactInfo    string
	ApplicationURL string
	ExternalURL    string
	RawHTML        string
	Language       string
	FetchedAt      time.Time
	IsValid        bool
	ErrorMessage   string
}

// FailedDetails builds the negative placeholder stored for a URL whose fetch failed.
func FailedDetails(url string, errMsg string) *JobDetails {
	return &JobDetails{
		Title:        "Error - Fetch Failed",
		Company:      PlaceholderCompany,
		ExternalURL:  url,
		FetchedAt:    time.Now(),
		IsValid:      false,
		ErrorMessage: errMsg,
	}
}

// Assessment is the scoring oracle's verdict for one job.
type Assessment struct {
	ShouldFilter   bool
	QualityScore   int
	RelevanceScore int
	Reasoning      string
	JobSnippet     string
}

// JobRecord is a persisted, admitted job listing.
type JobRecord struct {
	ID             uint   `gorm:"primaryKey"`
	Title          string `gorm:"index"`
	Company        string `gorm:"index"`
	Location       string
	Salary         string
	URL            string `gorm:"uniqueIndex"`
	Platform       string
	Description    string
	Language       string
	SearchKeywords string
	QualityScore   int
	RelevanceScore int
	Filtered       bool
	Reasoning      string
	PostedAt       time.Time
	ScrapedAt      time.Time
	CreatedAt      time.Time
}

// RecordFrom combines a summary with its assessment into a persistable record.
func RecordFrom(s JobSummary, a Assessment, keywords string) JobRecord {
	company := s.Company
	if company == "" {
		company = PlaceholderCompany
	}
	return JobRecord{
		Title:          s.Title,
		Company:        company,
		Location:       s.Location,
		Salary:         s.Salary,
		URL:            s.URL,
		Platform:       s.Platform,
		Description:    s.Description,
		Language:       s.Language,
		SearchKeywords: keywords,
		QualityScore:   a.QualityScore,
		RelevanceScore: a.RelevanceScore,
		Filtered:       a.ShouldFilter,
		Reasoning:      a.Reasoning,
		PostedAt:       s.PostedAt,
		ScrapedAt:      s.ScrapedAt,
	}
}

// CachedJobDetails is the persistent cache row for one job URL.
// Exactly one row exists per URL; writes replace the row wholesale.
type CachedJobDetails struct {
	URL            string `gorm:"primaryKey"`
	Platform       string `gorm:"index"`
	Title          string
	Company        string
	Location       string
	Salary         string
	Description    string
	Requirements   string
	Benefits       string
	ContactInfo    string
	ApplicationURL string
	ExternalURL    string
	Language       string
	FetchedAt      time.Time
	LastAccessedAt time.Time
	AccessCount    int
	IsValid        bool
	ErrorMessage   string
}

// ToDetails converts a cache row back to the in-memory details form.
func (c CachedJobDetails) ToDetails() *JobDetails {
	return &JobDetails{
		Title:          c.Title,
		Company:        c.Company,
		Location:       c.Location,
		Salary:         c.Salary,
		Description:    c.Description,
		Requirements:   c.Requirements,
		Benefits:       c.Benefits,
		ContactInfo:    c.ContactInfo,
		ApplicationURL: c.ApplicationURL,
		ExternalURL:    c.ExternalURL,
		Language:       c.Language,
		FetchedAt:      c.FetchedAt,
		IsValid:        c.IsValid,
		ErrorMessage:   c.ErrorMessage,
	}
}

// CacheRowFrom builds the cache row stored for url.
func CacheRowFrom(url, platform string, d JobDetails) CachedJobDetails {
	return CachedJobDetails{
		URL:            url,
		Platform:       platform,
		Title:          d.Title,
		Company:        d.Company,
		Location:       d.Location,
		Salary:         d.Salary,
		Description:    d.Description,
		Requirements:   d.Requirements,
		Benefits:       d.Benefits,
		ContactInfo:    d.ContactInfo,
		ApplicationURL: d.ApplicationURL,
		ExternalURL:    d.ExternalURL,
		Language:       d.Language,
		FetchedAt:      d.FetchedAt,
		LastAccessedAt: time.Now(),
		AccessCount:    1,
		IsValid:        d.IsValid,
		ErrorMessage:   d.ErrorMessage,
	}
}
