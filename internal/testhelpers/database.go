package testhelpers

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// SetupTestDB opens a private in-memory sqlite database with foreign keys
// on and the full schema migrated. The pool is pinned to one connection
// since every sqlite memory connection is its own database.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig()
	cfg.Logger = logger.Default.LogMode(logger.Silent)
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), cfg)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func next() int64 {
	return seq.Add(1)
}

// CreateUser inserts a user with unique email and username
func CreateUser(t *testing.T, db *gorm.DB, role ...string) *models.User {
	t.Helper()
	n := next()
	user := &models.User{
		Email:     fmt.Sprintf("cook%d@example.com", n),
		Username:  fmt.Sprintf("cook%d", n),
		FirstName: "Test",
		LastName:  fmt.Sprintf("Cook %d", n),
		Role:      models.RoleUser,
	}
	if len(role) > 0 {
		user.Role = role[0]
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: fmt.Sprintf("%s-%d", name, next())}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *models.Ingredient {
	t.Helper()
	ingredient := &models.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// Line is an ingredient reference used by CreateRecipe
type Line struct {
	Ingredient *models.Ingredient
	Amount     int
}

// CreateRecipe writes a recipe row with its lines and tags directly,
// bypassing validation. Use the recipe service to test the write path.
func CreateRecipe(t *testing.T, db *gorm.DB, author *models.User, name string, lines []Line, tags ...*models.Tag) *models.Recipe {
	t.Helper()
	recipe := &models.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        "Mix and serve.",
		Image:       "recipes/images/" + name + ".png",
		CookingTime: 10,
	}
	for _, tag := range tags {
		recipe.Tags = append(recipe.Tags, *tag)
	}
	require.NoError(t, db.Omit("Author", "RecipeIngredients").Create(recipe).Error)

	for _, line := range lines {
		ri := models.RecipeIngredient{RecipeID: recipe.ID, IngredientID: line.Ingredient.ID, Amount: line.Amount}
		require.NoError(t, db.Omit("Ingredient").Create(&ri).Error)
	}
	return recipe
}

// Count returns the number of rows of model
func Count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
