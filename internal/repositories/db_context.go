package repositories

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/jobradar/jobradar/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(models.JobRecord{})
	if err != nil {
		return fmt.Errorf("failed to migrate JobRecord entity: %w", err)
	}

	err = c.DB.AutoMigrate(models.CachedJobDetails{})
	if err != nil {
		return fmt.Errorf("failed to migrate CachedJobDetails entity: %w", err)
	}

	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_company_created ON job_records (company, created_at); " +
		"CREATE INDEX IF NOT EXISTS idx_cache_fetched ON cached_job_details (platform, fetched_at);").
		Error; err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
