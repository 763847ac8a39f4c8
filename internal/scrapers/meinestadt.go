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

// Meinestadt scrapes jobs.meinestadt.de, an aggregator whose detail pages
// are interstitials wrapping the employer's real posting. Details come from
// the employer's page behind the outbound link when one resolves; the
// interstitial content is the fallback.
type Meinestadt struct {
	fetcher fetch.Fetcher
	baseURL string
}

func NewMeinestadt(fetcher fetch.Fetcher) *Meinestadt {
	return &Meinestadt{fetcher: fetcher, baseURL: "https://jobs.meinestadt.de"}
}

func (m *Meinestadt) PlatformName() string {
	return "meinestadt"
}

func (m *Meinestadt) SearchJobs(ctx context.Context, keywords, location string, maxPages int, englishOnly bool) ([]models.JobSummary, error) {

	var all []models.JobSummary

	for _, keyword := range splitKeywords(keywords) {
		for page := 1; page <= maxPages; page++ {

			pageJobs, err := m.searchPage(ctx, keyword, location, page)
			if err != nil {
				if ctx.Err() != nil {
					return dedupeByURL(all), ctx.Err()
				}
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
					Errorf("meinestadt page %d for %q failed: %v", page, keyword, err)
				break
			}

			all = append(all, pageJobs...)
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

func (m *Meinestadt) searchPage(ctx context.Context, keyword, location string, page int) ([]models.JobSummary, error) {

	params := url.Values{}
	params.Set("was", keyword)
	params.Set("seite", strconv.Itoa(page))
	if location != "" {
		params.Set("wo", location)
	}
	searchURL := m.baseURL + "/jobs?" + params.Encode()

	pageResp, err := m.fetcher.Get(ctx, searchURL, fetch.Options{
		Headers: map[string]string{
			"Referer":        m.baseURL + "/",
			"Sec-Fetch-Site": "same-origin",
			"Sec-Fetch-Mode": "navigate",
			"Cache-Control":  "max-age=0",
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
		if job, ok := m.parseCard(card); ok {
			jobs = append(jobs, job)
		}
	})
	return jobs, nil
}

func (m *Meinestadt) parseCard(card *goquery.Selection) (models.JobSummary, bool) {

	title := cascade{selectors: []string{"[class*=job-title]", "h2", "h3"}, minLen: 3, maxLen: 200}.extract(card)
	link := card.Find("a[href]").First()
	if title == "" {
		title = cleanText(link.Text())
	}

	href, _ := link.Attr("href")
	jobURL := resolveURL(m.baseURL, href)
	if title == "" || jobURL == "" {
		return models.JobSummary{}, false
	}

	return models.JobSummary{
		Title:       title,
		Company:     cascade{selectors: []string{"[class*=company]"}, minLen: 2, maxLen: 100}.extract(card),
		Location:    cascade{selectors: []string{"[class*=location]"}, minLen: 2, maxLen: 100}.extract(card),
		URL:         jobURL,
		Description: cascade{selectors: []string{"[class*=job-description]"}, minLen: 20}.extract(card),
		Platform:    m.PlatformName(),
		ScrapedAt:   time.Now(),
	}, true
}

func (m *Meinestadt) FetchJobDetails(ctx context.Context, jobURL string) (*models.JobDetails, error) {

	pageResp, err := m.fetcher.Get(ctx, jobURL, fetch.Options{})
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}

	external := outboundLink(doc, m.baseURL, "meinestadt.de")
	if external != "" {
		if details := fetchExternalPosting(ctx, m.fetcher, external); details != nil {
			return details, nil
		}
	}

	description := cascade{
		selectors: []string{"#job-description", "[class*=job-description]", "div[class*=description]"},
		minLen:    50,
	}.extract(doc.Selection)
	if description == "" {
		description = largestTextBlock(doc)
	}

	if external == "" {
		external = jobURL
	}
	details := &models.JobDetails{
		Title:       cascade{selectors: []string{"h1", "title"}, minLen: 3}.extract(doc.Selection),
		Company:     cascade{selectors: []string{".company-name", ".employer-name", "span[class*=company]", "div[class*=company]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
		Location:    cascade{selectors: []string{".job-location", ".location", "span[class*=location]", "div[class*=location]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
		Salary:      cascade{selectors: []string{".salary", ".compensation", "span[class*=salary]"}, minLen: 3, maxLen: 100}.extract(doc.Selection),
		Description: description,
		ExternalURL: external,
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
