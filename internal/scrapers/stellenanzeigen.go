package scrapers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobradar/jobradar/internal/clients/fetch"
	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	log "github.com/sirupsen/logrus"
)

// Stellenanzeigen scrapes stellenanzeigen.de. The site keys searches on
// internal location IDs rather than free-text locations, with a
// pseudo-location for remote work.
type Stellenanzeigen struct {
	fetcher fetch.Fetcher
	baseURL string
}

var stellenanzeigenLocationIDs = map[string]string{
	"berlin":         "M-DE-12803",
	"hamburg":        "M-DE-12601",
	"munich":         "M-DE-09000",
	"münchen":        "M-DE-09000",
	"düsseldorf":     "M-DE-12804",
	"dusseldorf":     "M-DE-12804",
	"duesseldorf":    "M-DE-12804",
	"essen":          "M-DE-12804",
	"cologne":        "M-DE-10000",
	"köln":           "M-DE-10000",
	"frankfurt":      "M-DE-08000",
	"stuttgart":      "M-DE-07000",
	"dortmund":       "M-DE-12805",
	"bremen":         "M-DE-04000",
	"hannover":       "M-DE-03000",
	"remote":         "X-HO-100",
	"homeoffice":     "X-HO-100",
	"home office":    "X-HO-100",
	"work from home": "X-HO-100",
	"wfh":            "X-HO-100",
}

const stellenanzeigenRemoteID = "X-HO-100"

func NewStellenanzeigen(fetcher fetch.Fetcher) *Stellenanzeigen {
	return &Stellenanzeigen{fetcher: fetcher, baseURL: "https://www.stellenanzeigen.de"}
}

func (s *Stellenanzeigen) PlatformName() string {
	return "stellenanzeigen"
}

func (s *Stellenanzeigen) SearchJobs(ctx context.Context, keywords, location string, maxPages int, englishOnly bool) ([]models.JobSummary, error) {

	var all []models.JobSummary
	locationID := stellenanzeigenLocationIDs[strings.ToLower(strings.TrimSpace(location))]
	remoteSearch := locationID == stellenanzeigenRemoteID

	for _, keyword := range splitKeywords(keywords) {
		for page := 1; page <= maxPages; page++ {

			pageJobs, err := s.searchPage(ctx, keyword, locationID, page)
			if err != nil {
				if ctx.Err() != nil {
					return dedupeByURL(all), ctx.Err()
				}
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
					Errorf("stellenanzeigen page %d for %q failed: %v", page, keyword, err)
				break
			}

			if remoteSearch {
				for i := range pageJobs {
					pageJobs[i].Location = labelRemote(pageJobs[i].Location)
				}
			}
			all = append(all, pageJobs...)

			// an empty later page means the result set is exhausted
			if page > 1 && len(pageJobs) == 0 {
				break
			}
		}
	}

	unique := dedupeByURL(all)
	if englishOnly {
		unique = filterEnglish(unique)
	}
	return unique, nil
}

func (s *Stellenanzeigen) searchPage(ctx context.Context, keyword, locationID string, page int) ([]models.JobSummary, error) {

	params := url.Values{}
	params.Set("fulltext", keyword)
	if locationID != "" {
		params.Set("locationIds", locationID)
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	searchURL := s.baseURL + "/suche/?" + params.Encode()

	pageResp, err := s.fetcher.Get(ctx, searchURL, fetch.Options{
		Headers: map[string]string{
			"Cookie": "cookieConsent=accepted; privacy_consent=true",
		},
	})
	if err != nil {
		return nil, err
	}
	if looksBlocked(pageResp.Body) {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return nil, err
	}

	var jobs []models.JobSummary
	findJobCards(doc).Each(func(_ int, card *goquery.Selection) {
		if job, ok := s.parseCard(card); ok {
			jobs = append(jobs, job)
		}
	})
	return jobs, nil
}

var stellenanzeigenCompanyCascade = cascade{
	selectors: []string{
		"[class*=company-name]", "[data-testid*=company]",
		"span[class*=company]", "div[class*=company]",
		"[class*=employer]", "[class*=firma]", "[class*=unternehmen]",
	},
	minLen: 3,
	maxLen: 100,
}

var stellenanzeigenLocationCascade = cascade{
	selectors: []string{
		"[data-testid*=location]", "span[class*=location]", "div[class*=location]",
		"[class*=standort]", "[class*=address]", "[class*=city]", "[class*=ort]",
	},
	minLen: 2,
	maxLen: 100,
}

var stellenanzeigenSnippetCascade = cascade{
	selectors: []string{
		"p[class*=description]", "div[class*=description]",
		"[class*=summary]", "[class*=teaser]", "[class*=excerpt]",
	},
	minLen: 20,
}

func (s *Stellenanzeigen) parseCard(card *goquery.Selection) (models.JobSummary, bool) {

	title := cleanText(card.Find("h1, h2, h3, h4").First().Text())
	link := card.Find("a[href]").First()
	if title == "" {
		title = cleanText(link.Text())
	}
	if title == "" {
		return models.JobSummary{}, false
	}

	href, _ := link.Attr("href")
	jobURL := resolveURL(s.baseURL, href)
	if jobURL == "" {
		return models.JobSummary{}, false
	}

	return models.JobSummary{
		Title:       title,
		Company:     stellenanzeigenCompanyCascade.extract(card),
		Location:    stellenanzeigenLocationCascade.extract(card),
		URL:         jobURL,
		Description: stellenanzeigenSnippetCascade.extract(card),
		Platform:    s.PlatformName(),
		ScrapedAt:   time.Now(),
	}, true
}

var stellenanzeigenDetailDescription = cascade{
	selectors: []string{
		"[class*=job-description]", "[class*=jobad-content]", "[class*=stellenbeschreibung]",
		"div[class*=description]", "article", "main",
	},
	minLen: 100,
}

func (s *Stellenanzeigen) FetchJobDetails(ctx context.Context, jobURL string) (*models.JobDetails, error) {

	pageResp, err := s.fetcher.Get(ctx, jobURL, fetch.Options{})
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}

	description := stellenanzeigenDetailDescription.extract(doc.Selection)
	if description == "" {
		description = largestTextBlock(doc)
	}

	details := &models.JobDetails{
		Title:       cascade{selectors: []string{"h1", "[class*=job-title]", "title"}, minLen: 3}.extract(doc.Selection),
		Company:     stellenanzeigenCompanyCascade.extract(doc.Selection),
		Location:    stellenanzeigenLocationCascade.extract(doc.Selection),
		Salary:      cascade{selectors: []string{"[class*=salary]", "[class*=gehalt]"}, minLen: 3, maxLen: 100}.extract(doc.Selection),
		Description: description,
		ExternalURL: jobURL,
		RawHTML:     pageResp.Body,
		FetchedAt:   time.Now(),
		IsValid:     description != "",
	}
	if details.Company == "" {
		details.Company = models.PlaceholderCompany
	}
	if details.Requirements == "" {
		details.Requirements = requirementLines(description)
	}
	details.Language = DetectLanguage(details.Title + " " + details.Description)
	return details, nil
}

func resolveURL(base, href string) string {
	if href == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

func labelRemote(location string) string {
	if location == "" {
		return "Remote"
	}
	lowered := strings.ToLower(location)
	for _, indicator := range []string{"remote", "home office", "homeoffice", "telearbeit", "flexibel"} {
		if strings.Contains(lowered, indicator) {
			return "Remote"
		}
	}
	return location + " (Remote)"
}

func filterEnglish(jobs []models.JobSummary) []models.JobSummary {
	filtered := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		if DetectLanguage(job.Title+" "+job.Description) == LanguageEnglish {
			filtered = append(filtered, job)
		}
	}
	return filtered
}

// findJobCards locates listing cards across the markup variants the German
// job boards use for result tiles.
func findJobCards(doc *goquery.Document) *goquery.Selection {

	patterns := []string{
		"div[class*=job-item], div[class*=job-result], div[class*=job-card], div[class*=stellenanzeige]",
		"article[class*=job], article[class*=stelle]",
		"li[class*=job], li[class*=stelle]",
		"div[class*=job], div[class*=anzeige]",
	}

	for _, pattern := range patterns {
		cards := doc.Find(pattern).FilterFunction(func(_ int, card *goquery.Selection) bool {
			return plausibleJobCard(card)
		})
		if cards.Length() > 0 {
			return cards
		}
	}
	return doc.Find("__none__")
}

var cardNavText = []string{
	"seite neu laden", "weiter", "zurück", "finde deinen job",
	"navigation", "filter", "sortieren",
}

var cardJobText = []string{
	"stelle", "job", "position", "mitarbeiter", "developer",
	"engineer", "administrator", "entwickler",
}

func plausibleJobCard(card *goquery.Selection) bool {
	text := strings.ToLower(cleanText(card.Text()))
	if len(text) < 50 {
		return false
	}
	for _, nav := range cardNavText {
		if strings.Contains(text, nav) {
			return false
		}
	}
	for _, indicator := range cardJobText {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
