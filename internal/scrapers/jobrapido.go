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
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Jobrapido scrapes de.jobrapido.com. The site sits behind aggressive
// challenge protection and sometimes serves a favourites or challenge page
// with status 200, so every result page is sanity-checked before parsing.
type Jobrapido struct {
	fetcher fetch.Fetcher
	baseURL string
}

func NewJobrapido(fetcher fetch.Fetcher) *Jobrapido {
	return &Jobrapido{fetcher: fetcher, baseURL: "https://de.jobrapido.com"}
}

func (j *Jobrapido) PlatformName() string {
	return "jobrapido"
}

func (j *Jobrapido) SearchJobs(ctx context.Context, keywords, location string, maxPages int, englishOnly bool) ([]models.JobSummary, error) {

	var all []models.JobSummary

	for _, keyword := range splitKeywords(keywords) {
		for page := 1; page <= maxPages; page++ {

			pageJobs, err := j.searchPage(ctx, keyword, location, page)
			if errors.Is(err, fetch.ErrRateLimited) {
				log.Warnf("jobrapido rate limited on page %d, backing off", page)
				break
			}
			if err != nil {
				if ctx.Err() != nil {
					return dedupeByURL(all), ctx.Err()
				}
				log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
					Errorf("jobrapido page %d for %q failed: %v", page, keyword, err)
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

func (j *Jobrapido) searchPage(ctx context.Context, keyword, location string, page int) ([]models.JobSummary, error) {

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("p", strconv.Itoa(page))
	if location != "" {
		params.Set("l", location)
	}
	searchURL := j.baseURL + "/?" + params.Encode()

	pageResp, err := j.fetcher.Get(ctx, searchURL, fetch.Options{})
	if err != nil {
		return nil, err
	}
	if j.invalidResults(pageResp.Body) {
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return nil, err
	}

	var jobs []models.JobSummary
	findJobCards(doc).Each(func(_ int, card *goquery.Selection) {
		if job, ok := j.parseCard(card); ok {
			jobs = append(jobs, job)
		}
	})
	return jobs, nil
}

var jobrapidoInvalidMarkers = []string{
	"favouritejobs",
	"möchten sie ihre favorisierten",
	"saved jobs",
	"zu viele anfragen",
	"too many requests",
	"access denied",
	"cloudflare",
	"captcha",
}

// invalidResults detects the favourites page and challenge interstitials
// that the site serves in place of real results.
func (j *Jobrapido) invalidResults(body string) bool {

	lowered := strings.ToLower(body)

	jobTerms := 0
	for _, term := range []string{"job", "stelle", "arbeit", "developer", "entwickler", "engineer"} {
		if strings.Contains(lowered, term) {
			jobTerms++
		}
	}

	// a page dense with job terms is real even when a marker word appears
	// somewhere in its footer
	if jobTerms >= 3 {
		return false
	}

	for _, marker := range jobrapidoInvalidMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return jobTerms < 1 && len(lowered) < 500
}

func (j *Jobrapido) parseCard(card *goquery.Selection) (models.JobSummary, bool) {

	link := card.Find("a[href]").First()
	title := cascade{selectors: []string{"h2", "h3", "[class*=title]"}, minLen: 3, maxLen: 200}.extract(card)
	if title == "" {
		title = cleanText(link.Text())
	}

	href, _ := link.Attr("href")
	jobURL := resolveURL(j.baseURL, href)
	if title == "" || jobURL == "" {
		return models.JobSummary{}, false
	}

	return models.JobSummary{
		Title:       title,
		Company:     cascade{selectors: []string{"[class*=company]", "[class*=employer]"}, minLen: 2, maxLen: 100}.extract(card),
		Location:    cascade{selectors: []string{"[class*=location]", "[class*=place]"}, minLen: 2, maxLen: 100}.extract(card),
		URL:         jobURL,
		Description: cascade{selectors: []string{"[class*=description]", "[class*=snippet]"}, minLen: 20}.extract(card),
		Platform:    j.PlatformName(),
		ScrapedAt:   time.Now(),
	}, true
}

func (j *Jobrapido) FetchJobDetails(ctx context.Context, jobURL string) (*models.JobDetails, error) {

	pageResp, err := j.fetcher.Get(ctx, jobURL, fetch.Options{})
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}
	if j.invalidResults(pageResp.Body) {
		err := errors.New("challenge page served instead of job details")
		return models.FailedDetails(jobURL, err.Error()), err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return models.FailedDetails(jobURL, err.Error()), err
	}

	external := outboundLink(doc, j.baseURL, "jobrapido.com")
	if external != "" {
		if details := fetchExternalPosting(ctx, j.fetcher, external); details != nil {
			return details, nil
		}
	}

	description := cascade{
		selectors: []string{"[class*=job-description]", "[class*=description]", "article", "main"},
		minLen:    100,
	}.extract(doc.Selection)
	if description == "" {
		description = largestTextBlock(doc)
	}

	if external == "" {
		external = jobURL
	}
	details := &models.JobDetails{
		Title:       cascade{selectors: []string{"h1", "[class*=title]", "title"}, minLen: 3}.extract(doc.Selection),
		Company:     cascade{selectors: []string{"[class*=company]", "[class*=employer]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
		Location:    cascade{selectors: []string{"[class*=location]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
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
