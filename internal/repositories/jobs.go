package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jobradar/jobradar/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

// AddBatch inserts records, silently skipping rows whose URL already exists.
func (repo *Jobs) AddBatch(ctx context.Context, records []models.JobRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	res := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		Create(&records)
	return res.RowsAffected, res.Error
}

func (repo *Jobs) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var count int64
	err := repo.db.WithContext(ctx).Model(&models.JobRecord{}).
		Where("url = ?", url).Count(&count).Error
	return count > 0, err
}

// FindByTitleCompany matches case-insensitively within the lookback window.
func (repo *Jobs) FindByTitleCompany(ctx context.Context, title, company string, since time.Time) (*models.JobRecord, error) {
	var record models.JobRecord
	err := repo.db.WithContext(ctx).
		Where("LOWER(title) = ? AND LOWER(company) = ? AND created_at >= ?",
			strings.ToLower(title), strings.ToLower(company), since).
		First(&record).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// RecentByCompany returns the company's latest records carrying a
// description of at least minDescriptionLen characters.
func (repo *Jobs) RecentByCompany(ctx context.Context, company string, since time.Time,
	minDescriptionLen, limit int) ([]models.JobRecord, error) {

	var records []models.JobRecord
	err := repo.db.WithContext(ctx).
		Where("LOWER(company) = ? AND created_at >= ? AND LENGTH(description) >= ?",
			strings.ToLower(company), since, minDescriptionLen).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (repo *Jobs) RemoveOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := repo.db.WithContext(ctx).Delete(&models.JobRecord{}, "created_at < ?", cutoff)
	return res.RowsAffected, res.Error
}

// Groups clusters persisted jobs by company and normalized title.
func (repo *Jobs) Groups(ctx context.Context, since time.Time) ([]models.JobGroup, error) {
	var records []models.JobRecord
	err := repo.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return models.GroupRecords(records), nil
}
