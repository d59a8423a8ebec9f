package database

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/noah-isme/campus-go-api/internal/grading"
	"github.com/noah-isme/campus-go-api/internal/models"
	"github.com/noah-isme/campus-go-api/internal/repository"
)

// Connect opens a database using the named driver: postgres, mysql or sqlite.
func Connect(driver, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%s dsn must not be empty", driver)
	}

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return db, nil
}

// Migrate creates or updates every table and seeds the grade bands.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return SeedGradeBands(ctx, db)
}

// SeedGradeBands upserts the default letter thresholds into grade_bands.
func SeedGradeBands(ctx context.Context, db *gorm.DB) error {
	bands := make([]models.GradeBand, 0, len(grading.Bands))
	for _, band := range grading.Bands {
		bands = append(bands, models.GradeBand{
			Letter:        string(band.Letter),
			MinPercentage: band.MinPercentage,
			GradePoints:   grading.GradePoints(band.Letter),
		})
	}
	if err := repository.NewGradeRepository(db).SeedBands(ctx, bands); err != nil {
		return fmt.Errorf("failed to seed grade bands: %w", err)
	}
	return nil
}
