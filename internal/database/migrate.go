package database

import (
	"fmt"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

// Models lists every persisted type in dependency order
func Models() []any {
	return []any{
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.ShoppingCartItem{},
		&models.Follow{},
	}
}

// Migrate creates or updates the schema for all models
func Migrate(db *gorm.DB) error {
	log.Info("Running schema migration")
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Info("Schema migration complete")
	return nil
}
