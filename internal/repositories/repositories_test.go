package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDb(t *testing.T) *DbContext {
	dbContext, err := NewDbContext(":memory:")
	require.NoError(t, err)
	require.NoError(t, dbContext.Migrate())
	t.Cleanup(func() { _ = dbContext.Close() })
	return dbContext
}

func sampleRecord(url string) models.JobRecord {
	return models.JobRecord{
		Title:       "Python Developer",
		Company:     "Acme GmbH",
		Location:    "Essen",
		URL:         url,
		Platform:    "stellenanzeigen",
		Description: "Backend development with Python and SQL in a small team.",
	}
}

func Test_Jobs_AddBatchSkipsDuplicateURLs(t *testing.T) {

	ctx := context.Background()
	repo := NewJobsRepository(setupDb(t).DB)

	inserted, err := repo.AddBatch(ctx, []models.JobRecord{
		sampleRecord("https://example.com/1"),
		sampleRecord("https://example.com/2"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, inserted)

	inserted, err = repo.AddBatch(ctx, []models.JobRecord{
		sampleRecord("https://example.com/2"),
		sampleRecord("https://example.com/3"),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, inserted)

	exists, err := repo.ExistsByURL(ctx, "https://example.com/3")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByURL(ctx, "https://example.com/404")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_Jobs_FindByTitleCompanyIsCaseInsensitiveAndWindowed(t *testing.T) {

	ctx := context.Background()
	repo := NewJobsRepository(setupDb(t).DB)

	_, err := repo.AddBatch(ctx, []models.JobRecord{sampleRecord("https://example.com/1")})
	require.NoError(t, err)

	found, err := repo.FindByTitleCompany(ctx, "PYTHON DEVELOPER", "acme gmbh", time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "https://example.com/1", found.URL)

	// a window starting in the future excludes the record
	found, err = repo.FindByTitleCompany(ctx, "Python Developer", "Acme GmbH", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, found)
}

func Test_Jobs_RecentByCompanyFiltersShortDescriptions(t *testing.T) {

	ctx := context.Background()
	repo := NewJobsRepository(setupDb(t).DB)

	short := sampleRecord("https://example.com/short")
	short.Description = "too short"
	_, err := repo.AddBatch(ctx, []models.JobRecord{sampleRecord("https://example.com/long"), short})
	require.NoError(t, err)

	records, err := repo.RecentByCompany(ctx, "Acme GmbH", time.Now().AddDate(0, 0, -90), 20, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "https://example.com/long", records[0].URL)
}

func Test_Jobs_Groups(t *testing.T) {

	ctx := context.Background()
	repo := NewJobsRepository(setupDb(t).DB)

	first := sampleRecord("https://example.com/1")
	second := sampleRecord("https://example.com/2")
	second.Title = "Python Developer (m/w/d)"
	second.Location = "Düsseldorf"
	second.Platform = "meinestadt"
	other := sampleRecord("https://example.com/3")
	other.Title = "Accountant"

	_, err := repo.AddBatch(ctx, []models.JobRecord{first, second, other})
	require.NoError(t, err)

	groups, err := repo.Groups(ctx, time.Now().AddDate(0, 0, -1))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Jobs, 2)
	assert.ElementsMatch(t, []string{"Essen", "Düsseldorf"}, groups[0].Cities)
	assert.ElementsMatch(t, []string{"stellenanzeigen", "meinestadt"}, groups[0].Platforms)
}

func Test_JobDetails_UpsertAndGetBumpsAccessStats(t *testing.T) {

	ctx := context.Background()
	repo := NewJobDetailsRepository(setupDb(t).DB)

	row := models.CacheRowFrom("https://example.com/job", "stellenanzeigen", models.JobDetails{
		Title:       "Python Developer",
		Company:     "Acme GmbH",
		Description: "A long enough description for caching.",
		FetchedAt:   time.Now(),
		IsValid:     true,
	})
	require.NoError(t, repo.Upsert(ctx, row))

	got, err := repo.Get(ctx, "https://example.com/job")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Python Developer", got.Title)

	// replacing the row keeps exactly one row per url
	row.Title = "Senior Python Developer"
	require.NoError(t, repo.Upsert(ctx, row))

	valid, invalid, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, valid)
	assert.EqualValues(t, 0, invalid)

	got, err = repo.Get(ctx, "https://example.com/job")
	require.NoError(t, err)
	assert.Equal(t, "Senior Python Developer", got.Title)
}

func Test_JobDetails_GetMissReturnsNil(t *testing.T) {

	repo := NewJobDetailsRepository(setupDb(t).DB)
	got, err := repo.Get(context.Background(), "https://example.com/nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func Test_JobDetails_DeleteExpiredHonorsPlatformTTLs(t *testing.T) {

	ctx := context.Background()
	repo := NewJobDetailsRepository(setupDb(t).DB)

	fresh := models.CacheRowFrom("https://example.com/fresh", "stellenanzeigen", models.JobDetails{
		FetchedAt: time.Now(), IsValid: true,
	})
	staleOverride := models.CacheRowFrom("https://example.com/stale", "jobrapido", models.JobDetails{
		FetchedAt: time.Now().AddDate(0, 0, -5), IsValid: true,
	})
	staleDefault := models.CacheRowFrom("https://example.com/old", "meinestadt", models.JobDetails{
		FetchedAt: time.Now().AddDate(0, 0, -10), IsValid: true,
	})

	require.NoError(t, repo.Upsert(ctx, fresh))
	require.NoError(t, repo.Upsert(ctx, staleOverride))
	require.NoError(t, repo.Upsert(ctx, staleDefault))

	// jobrapido expires after 3 days, everything else after 7
	removed, err := repo.DeleteExpired(ctx, 7, map[string]int{"jobrapido": 3})
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	got, err := repo.Get(ctx, "https://example.com/fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
