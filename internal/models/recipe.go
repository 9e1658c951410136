package models

import (
	"time"
)

// Field limits shared by validation and the schema
const (
	MaxRecipeNameLength = 256
	MaxShortLinkLength  = 16
	MinCookingTime      = 1
	MinIngredientAmount = 1
)

// Recipe is the aggregate root: the recipe row together with its ingredient
// lines and tag set. Lines and tags are only ever written through the
// recipe service, in the same transaction as the recipe itself.
type Recipe struct {
	ID          uint      `gorm:"primaryKey"`
	AuthorID    uint      `gorm:"not null;index"`
	Author      User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Name        string    `gorm:"size:256;not null"`
	Text        string    `gorm:"type:text;not null"`
	Image       string    `gorm:"not null"`
	CookingTime int       `gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	PubDate     time.Time `gorm:"not null;index;autoCreateTime"`
	ShortLink   *string   `gorm:"size:16;uniqueIndex"`

	RecipeIngredients []RecipeIngredient `gorm:"constraint:OnDelete:CASCADE"`
	Tags              []Tag              `gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is one line of a recipe. The (recipe, ingredient) pair
// is unique; the line order is the insertion order.
type RecipeIngredient struct {
	ID           uint       `gorm:"primaryKey"`
	RecipeID     uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredients_pair"`
	IngredientID uint       `gorm:"not null;uniqueIndex:idx_recipe_ingredients_pair;index"`
	Ingredient   Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Amount       int        `gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`
}
