package scrapers

import (
	"context"
	"testing"

	"github.com/jobradar/jobradar/internal/clients/fetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages    map[string]string
	requests []string
	err      error
}

func (s *stubFetcher) Get(_ context.Context, url string, _ fetch.Options) (*fetch.Page, error) {
	s.requests = append(s.requests, url)
	if s.err != nil {
		return nil, s.err
	}
	body, ok := s.pages[url]
	if !ok {
		body = "<html></html>"
	}
	return &fetch.Page{StatusCode: 200, Body: body}, nil
}

const stellenanzeigenResultsPage = `
<html><body>
<div class="job-list">
  <div class="job-item-card">
    <h3>Python Developer (m/w/d)</h3>
    <a href="/stellenanzeige/12345-python-developer">Details</a>
    <span class="company-name">Acme Software GmbH</span>
    <span class="job-location">Essen</span>
    <p class="job-description">Wir suchen einen erfahrenen Python Developer für unser Team in Essen.</p>
  </div>
  <div class="job-item-card">
    <h3>Data Engineer Stelle</h3>
    <a href="https://www.stellenanzeigen.de/stellenanzeige/67890-data-engineer">Details</a>
    <span class="company-name">Beta Analytics AG</span>
    <span class="job-location">Düsseldorf</span>
    <p class="job-description">Data Engineer Position mit Schwerpunkt auf ETL-Pipelines und Datenbanken.</p>
  </div>
  <div class="job-item-card">
    <h3>Python Developer (m/w/d)</h3>
    <a href="/stellenanzeige/12345-python-developer">Duplicate job entry</a>
    <span class="company-name">Acme Software GmbH</span>
    <span class="job-location">Essen</span>
    <p class="job-description">Wir suchen einen erfahrenen Python Developer für unser Team in Essen.</p>
  </div>
</div>
</body></html>`

func Test_Stellenanzeigen_SearchParsesCardsAndDeduplicates(t *testing.T) {

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.stellenanzeigen.de/suche/?fulltext=python+developer&locationIds=M-DE-12804": stellenanzeigenResultsPage,
	}}

	adapter := NewStellenanzeigen(fetcher)
	jobs, err := adapter.SearchJobs(context.Background(), "python developer", "Essen", 1, false)
	require.NoError(t, err)

	require.Len(t, jobs, 2)
	assert.Equal(t, "Python Developer (m/w/d)", jobs[0].Title)
	assert.Equal(t, "Acme Software GmbH", jobs[0].Company)
	assert.Equal(t, "Essen", jobs[0].Location)
	assert.Equal(t, "https://www.stellenanzeigen.de/stellenanzeige/12345-python-developer", jobs[0].URL)
	assert.Equal(t, "stellenanzeigen", jobs[0].Platform)
	assert.Equal(t, "Beta Analytics AG", jobs[1].Company)
}

func Test_Stellenanzeigen_RemoteSearchUsesPseudoLocationAndLabels(t *testing.T) {

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.stellenanzeigen.de/suche/?fulltext=golang&locationIds=X-HO-100": stellenanzeigenResultsPage,
	}}

	adapter := NewStellenanzeigen(fetcher)
	jobs, err := adapter.SearchJobs(context.Background(), "golang", "remote", 1, false)
	require.NoError(t, err)

	require.NotEmpty(t, jobs)
	assert.Equal(t, "Essen (Remote)", jobs[0].Location)
}

func Test_Stellenanzeigen_BlockedPageYieldsNoJobs(t *testing.T) {

	fetcher := &stubFetcher{pages: map[string]string{
		"https://www.stellenanzeigen.de/suche/?fulltext=golang": "<html>Checking your browser - cloudflare challenge</html>",
	}}

	adapter := NewStellenanzeigen(fetcher)
	jobs, err := adapter.SearchJobs(context.Background(), "golang", "", 1, false)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

const stellenanzeigenDetailPage = `
<html><body>
<h1>Python Developer (m/w/d)</h1>
<div class="company-name">Acme Software GmbH</div>
<span class="job-location">Essen</span>
<div class="job-description">
  Wir suchen einen erfahrenen Python Developer für unser Team.
  Ihre Aufgaben umfassen die Entwicklung von Backend-Diensten und die Wartung unserer Datenpipelines.
  Anforderungen: Mehrjährige Erfahrung mit Python, Kenntnisse in SQL und Docker.
</div>
</body></html>`

func Test_Stellenanzeigen_FetchJobDetails(t *testing.T) {

	jobURL := "https://www.stellenanzeigen.de/stellenanzeige/12345"
	fetcher := &stubFetcher{pages: map[string]string{jobURL: stellenanzeigenDetailPage}}

	adapter := NewStellenanzeigen(fetcher)
	details, err := adapter.FetchJobDetails(context.Background(), jobURL)
	require.NoError(t, err)

	assert.True(t, details.IsValid)
	assert.Equal(t, "Python Developer (m/w/d)", details.Title)
	assert.Equal(t, "Acme Software GmbH", details.Company)
	assert.Contains(t, details.Description, "Backend-Diensten")
	assert.Contains(t, details.Requirements, "Anforderungen")
	assert.Equal(t, LanguageGerman, details.Language)
}

func Test_Stellenanzeigen_FetchJobDetailsFailureReturnsPlaceholder(t *testing.T) {

	fetcher := &stubFetcher{err: &fetch.StatusError{Code: 500}}

	adapter := NewStellenanzeigen(fetcher)
	details, err := adapter.FetchJobDetails(context.Background(), "https://www.stellenanzeigen.de/x")
	assert.Error(t, err)
	require.NotNil(t, details)
	assert.False(t, details.IsValid)
	assert.NotEmpty(t, details.ErrorMessage)
}
