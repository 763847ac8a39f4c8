package scrapers

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meinestadtResultsPage = `
<html><body>
<div class="job-list">
  <div class="job-item-card">
    <h2 class="job-title">Backend Developer (m/w/d)</h2>
    <a href="/jobs/anzeige/98765-backend-developer">Details</a>
    <span class="company">Acme Software GmbH</span>
    <span class="location">Essen</span>
  </div>
</div>
</body></html>`

const meinestadtInterstitial = `
<html><body>
<h1>Backend Developer (m/w/d)</h1>
<span class="company-name">Acme Software GmbH</span>
<div id="job-description">Kurzbeschreibung der Stelle auf der Weiterleitungsseite von meinestadt.</div>
<a class="apply-button" href="https://careers.example.com/jobs/backend-dev" target="_blank">Angebot anzeigen</a>
</body></html>`

const employerPostingPage = `
<html><body>
<h1>Backend Developer</h1>
<span class="company">Acme Software GmbH</span>
<div class="job-description">
Wir suchen einen Backend Developer für unser Team in Essen. Sie entwickeln
Microservices mit Go und PostgreSQL, betreuen unsere CI-Pipelines und
arbeiten eng mit dem Produktteam zusammen. Anforderungen: mehrjährige
Erfahrung in der Backend-Entwicklung und sicherer Umgang mit SQL.
</div>
</body></html>`

func Test_Meinestadt_SearchParsesCards(t *testing.T) {

	fetcher := &stubFetcher{pages: map[string]string{
		"https://jobs.meinestadt.de/jobs?seite=1&was=backend+developer&wo=Essen": meinestadtResultsPage,
	}}

	adapter := NewMeinestadt(fetcher)
	jobs, err := adapter.SearchJobs(context.Background(), "backend developer", "Essen", 1, false)
	require.NoError(t, err)

	require.Len(t, jobs, 1)
	assert.Equal(t, "Backend Developer (m/w/d)", jobs[0].Title)
	assert.Equal(t, "Acme Software GmbH", jobs[0].Company)
	assert.Equal(t, "https://jobs.meinestadt.de/jobs/anzeige/98765-backend-developer", jobs[0].URL)
	assert.Equal(t, "meinestadt", jobs[0].Platform)
}

func Test_Meinestadt_FetchJobDetailsFollowsOutboundLink(t *testing.T) {

	interstitialURL := "https://jobs.meinestadt.de/jobs/anzeige/98765-backend-developer"
	employerURL := "https://careers.example.com/jobs/backend-dev"

	fetcher := &stubFetcher{pages: map[string]string{
		interstitialURL: meinestadtInterstitial,
		employerURL:     employerPostingPage,
	}}

	details, err := NewMeinestadt(fetcher).FetchJobDetails(context.Background(), interstitialURL)
	require.NoError(t, err)

	assert.Contains(t, fetcher.requests, employerURL)
	assert.True(t, details.IsValid)
	assert.Contains(t, details.Description, "Microservices mit Go")
	assert.Equal(t, employerURL, details.ExternalURL)
	assert.Equal(t, employerURL, details.ApplicationURL)
	assert.Equal(t, "de", details.Language)
	assert.Contains(t, details.Requirements, "Anforderungen")
}

func Test_Meinestadt_FetchJobDetailsFallsBackToInterstitial(t *testing.T) {

	interstitialURL := "https://jobs.meinestadt.de/jobs/anzeige/98765-backend-developer"

	// the employer page is not in the stub, so the outbound fetch yields an
	// empty document and the interstitial content must win
	fetcher := &stubFetcher{pages: map[string]string{
		interstitialURL: meinestadtInterstitial,
	}}

	details, err := NewMeinestadt(fetcher).FetchJobDetails(context.Background(), interstitialURL)
	require.NoError(t, err)

	assert.True(t, details.IsValid)
	assert.Contains(t, details.Description, "Weiterleitungsseite")
	assert.Equal(t, "https://careers.example.com/jobs/backend-dev", details.ExternalURL)
}

func Test_Meinestadt_FetchJobDetailsReturnsPlaceholderOnError(t *testing.T) {

	fetcher := &stubFetcher{err: errors.New("connection reset")}

	details, err := NewMeinestadt(fetcher).FetchJobDetails(context.Background(), "https://jobs.meinestadt.de/jobs/anzeige/1")
	require.Error(t, err)
	require.NotNil(t, details)
	assert.False(t, details.IsValid)
	assert.Contains(t, details.ErrorMessage, "connection reset")
}
