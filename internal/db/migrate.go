package db

import (
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Models lists every table managed by AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.CatalogItem{},
		&model.Order{},
		&model.OrderLine{},
		&model.Review{},
	}
}

// Migrate runs database migrations
func Migrate(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := conn.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := SeedRoles(conn); err != nil {
		logger.Error("Failed to seed initial data during migration", err)
		return err
	}

	logger.Info("Database migrations completed successfully", logger.Fields{
		"models_count": len(models),
	})
	return nil
}

// SeedRoles inserts the fixed role rows. Existing rows are left untouched.
func SeedRoles(conn *gorm.DB) error {
	roles := []model.Role{
		{ID: model.RoleIDUser, Name: model.RoleNameUser},
		{ID: model.RoleIDAdmin, Name: model.RoleNameAdmin},
	}
	if err := conn.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		return err
	}

	logger.Debug("Roles seeded", logger.Fields{"count": len(roles)})
	return nil
}
