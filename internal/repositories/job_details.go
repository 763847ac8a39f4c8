package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type JobDetails struct {
	db *gorm.DB
}

func NewJobDetailsRepository(db *gorm.DB) *JobDetails {
	return &JobDetails{db: db}
}

// Get returns the cached row for url, bumping its access statistics.
// A nil row without error means a miss.
func (repo *JobDetails) Get(ctx context.Context, url string) (*models.CachedJobDetails, error) {
	var row models.CachedJobDetails
	err := repo.db.WithContext(ctx).First(&row, "url = ?", url).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = repo.db.WithContext(ctx).Model(&models.CachedJobDetails{}).
		Where("url = ?", url).
		Updates(map[string]any{
			"last_accessed_at": time.Now(),
			"access_count":     gorm.Expr("access_count + 1"),
		}).Error
	return &row, err
}

// Upsert replaces the row for the URL wholesale.
func (repo *JobDetails) Upsert(ctx context.Context, row models.CachedJobDetails) error {
	return repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, UpdateAll: true}).
		Create(&row).Error
}

// DeleteExpired removes rows older than their platform's TTL. Platforms
// without an override use defaultTTLDays.
func (repo *JobDetails) DeleteExpired(ctx context.Context, defaultTTLDays int, platformTTLDays map[string]int) (int64, error) {

	var total int64
	now := time.Now()

	for platform, days := range platformTTLDays {
		cutoff := now.AddDate(0, 0, -days)
		res := repo.db.WithContext(ctx).
			Delete(&models.CachedJobDetails{}, "platform = ? AND fetched_at < ?", platform, cutoff)
		if res.Error != nil {
			return total, res.Error
		}
		total += res.RowsAffected
	}

	platforms := make([]string, 0, len(platformTTLDays))
	for platform := range platformTTLDays {
		platforms = append(platforms, platform)
	}

	cutoff := now.AddDate(0, 0, -defaultTTLDays)
	query := repo.db.WithContext(ctx)
	if len(platforms) > 0 {
		query = query.Where("platform NOT IN ?", platforms)
	}
	res := query.Delete(&models.CachedJobDetails{}, "fetched_at < ?", cutoff)
	total += res.RowsAffected
	return total, res.Error
}

// Count returns the number of cached rows, valid and invalid.
func (repo *JobDetails) Count(ctx context.Context) (valid int64, invalid int64, err error) {
	err = repo.db.WithContext(ctx).Model(&models.CachedJobDetails{}).
		Where("is_valid = ?", true).Count(&valid).Error
	if err != nil {
		return 0, 0, err
	}
	err = repo.db.WithContext(ctx).Model(&models.CachedJobDetails{}).
		Where("is_valid = ?", false).Count(&invalid).Error
	return valid, invalid, err
}
