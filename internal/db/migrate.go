package db

import (
	"github.com/ikkim/tableqr-backend/internal/app/model"
	"github.com/ikkim/tableqr-backend/pkg/logger"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first
func Models() []interface{} {
	return []interface{}{
		&model.Restaurant{},
		&model.QRCode{},
		&model.QRFeeConfiguration{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// Seed inserts demo restaurants into an empty database
func Seed() error {
	return SeedRestaurants(DB)
}

// SeedRestaurants creates demo tenants when the restaurants table is empty
func SeedRestaurants(tx *gorm.DB) error {
	var count int64
	if err := tx.Model(&model.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		logger.Info("Restaurants already seeded, skipping...", map[string]interface{}{
			"existing_count": count,
		})
		return nil
	}

	logger.Info("Seeding restaurant data...")

	restaurants := []model.Restaurant{
		{Name: "Seoul Table", Address: "12 Teheran-ro, Gangnam-gu, Seoul", PhoneNumber: "02-555-0101", Cuisines: pq.StringArray{"korean", "bbq"}, IsActive: true},
		{Name: "Harbor Noodle House", Address: "88 Haeundae-ro, Busan", PhoneNumber: "051-555-0199", Cuisines: pq.StringArray{"noodles"}, IsActive: true},
		{Name: "Corner Bakery", Address: "3 Jongno, Seoul", PhoneNumber: "02-555-0142", Cuisines: pq.StringArray{"bakery", "cafe"}, IsActive: false},
	}

	for i := range restaurants {
		if err := tx.Create(&restaurants[i]).Error; err != nil {
			logger.Error("Failed to create restaurant", err, map[string]interface{}{
				"restaurant": restaurants[i].Name,
			})
			return err
		}
	}

	logger.Info("Restaurants seeded successfully", map[string]interface{}{
		"total_restaurants": len(restaurants),
	})
	return nil
}
