package scrapers

import (
	"context"
	"testing"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

type fakeAdapter struct {
	name string
}

func (f *fakeAdapter) SearchJobs(_ context.Context, _, _ string, _ int, _ bool) ([]models.JobSummary, error) {
	return nil, nil
}

func (f *fakeAdapter) FetchJobDetails(_ context.Context, _ string) (*models.JobDetails, error) {
	return nil, nil
}

func (f *fakeAdapter) PlatformName() string {
	return f.name
}

func Test_Registry_LookupIsCaseInsensitive(t *testing.T) {

	registry := NewRegistry(&fakeAdapter{name: "stellenanzeigen"}, &fakeAdapter{name: "meinestadt"})

	adapter, ok := registry.Get("Stellenanzeigen")
	assert.True(t, ok)
	assert.Equal(t, "stellenanzeigen", adapter.PlatformName())

	adapter, ok = registry.Get("  MEINESTADT ")
	assert.True(t, ok)
	assert.Equal(t, "meinestadt", adapter.PlatformName())

	_, ok = registry.Get("indeed")
	assert.False(t, ok)
}

func Test_SplitKeywords(t *testing.T) {
	assert.Equal(t, []string{"python developer", "data engineer"}, splitKeywords("python developer, data engineer"))
	assert.Equal(t, []string{"golang"}, splitKeywords("golang"))
	assert.Equal(t, []string{"a", "b"}, splitKeywords(" a ,, b "))
}

func Test_DedupeByURL_KeepsFirstSeen(t *testing.T) {

	jobs := []models.JobSummary{
		{Title: "First", URL: "https://example.com/1"},
		{Title: "Second", URL: "https://example.com/2"},
		{Title: "Duplicate of first", URL: "https://example.com/1"},
		{Title: "No URL"},
	}

	unique := dedupeByURL(jobs)
	assert.Len(t, unique, 2)
	assert.Equal(t, "First", unique[0].Title)
	assert.Equal(t, "Second", unique[1].Title)
}

func Test_LooksBlocked(t *testing.T) {
	assert.True(t, looksBlocked("<html>Checking your browser... cloudflare</html>"))
	assert.True(t, looksBlocked("<html>Zu viele Anfragen</html>"))
	assert.False(t, looksBlocked("<html><div class='job-card'>Softwareentwickler</div></html>"))
}
