package scrapers

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jobradar/jobradar/internal/clients/fetch"
	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/jobradar/jobradar/internal/logger"
	log "github.com/sirupsen/logrus"
)

// outboundLink finds the employer's own posting behind an aggregator
// interstitial. Returns "" when every candidate link stays on the
// aggregator's domain.
func outboundLink(doc *goquery.Document, baseURL, ownDomain string) string {

	var external string
	doc.Find("a[class*=apply], a[class*=bewerben], a[rel*=external], a[target=_blank]").
		EachWithBreak(func(_ int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			resolved := resolveURL(baseURL, href)
			if resolved != "" && !strings.Contains(resolved, ownDomain) {
				external = resolved
				return false
			}
			return true
		})
	return external
}

// fetchExternalPosting follows the resolved outbound link and parses the
// employer's page with generic selectors. A nil result means the page was
// unreachable or carried no usable description, and the caller keeps the
// interstitial content instead.
func fetchExternalPosting(ctx context.Context, fetcher fetch.Fetcher, postingURL string) *models.JobDetails {

	pageResp, err := fetcher.Get(ctx, postingURL, fetch.Options{})
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeFetch).
			Warnf("failed to fetch employer posting %v: %v", postingURL, err)
		return nil
	}
	if looksBlocked(pageResp.Body) {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(pageResp.Body))
	if err != nil {
		return nil
	}

	description := cascade{
		selectors: []string{"[class*=job-description]", "[class*=description]", "[class*=posting]", "article", "main"},
		minLen:    100,
	}.extract(doc.Selection)
	if description == "" {
		description = largestTextBlock(doc)
	}
	if description == "" {
		return nil
	}

	details := &models.JobDetails{
		Title:          cascade{selectors: []string{"h1", "[class*=title]", "title"}, minLen: 3}.extract(doc.Selection),
		Company:        cascade{selectors: []string{"[class*=company]", "[class*=employer]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
		Location:       cascade{selectors: []string{"[class*=location]"}, minLen: 2, maxLen: 100}.extract(doc.Selection),
		Salary:         cascade{selectors: []string{"[class*=salary]", "[class*=compensation]"}, minLen: 3, maxLen: 100}.extract(doc.Selection),
		Description:    description,
		ApplicationURL: postingURL,
		ExternalURL:    postingURL,
		RawHTML:        pageResp.Body,
		FetchedAt:      time.Now(),
		IsValid:        true,
	}
	if details.Company == "" {
		details.Company = models.PlaceholderCompany
	}
	details.Requirements = requirementLines(description)
	details.Language = DetectLanguage(details.Title + " " + details.Description)
	return details
}
