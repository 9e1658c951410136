package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"gorm.io/gorm"
)

const ShoppingListFilename = "shopping_list.txt"

// ShoppingListLine is one ingredient summed across every recipe in the cart
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

func (l ShoppingListLine) String() string {
	return fmt.Sprintf("%s (%s) — %d", l.Name, l.MeasurementUnit, l.Amount)
}

type ShoppingList struct {
	Lines []ShoppingListLine
}

// Render produces the downloadable document, one line per ingredient.
// An empty cart renders as an empty document.
func (l *ShoppingList) Render() string {
	rendered := make([]string, 0, len(l.Lines))
	for _, line := range l.Lines {
		rendered = append(rendered, line.String())
	}
	return strings.Join(rendered, "\n")
}

type ShoppingListService interface {
	BuildShoppingList(ctx context.Context, userID uint) (*ShoppingList, error)
}

type shoppingListService struct {
	db *gorm.DB
}

func NewShoppingListService(db *gorm.DB) ShoppingListService {
	return &shoppingListService{db: db}
}

func (s *shoppingListService) BuildShoppingList(ctx context.Context, userID uint) (*ShoppingList, error) {
	lines := make([]ShoppingListLine, 0)
	err := s.db.WithContext(ctx).
		Model(&models.RecipeIngredient{}).
		Select("ingredients.name AS name, ingredients.measurement_unit AS measurement_unit, SUM(recipe_ingredients.amount) AS amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Joins("JOIN shopping_cart_items ON shopping_cart_items.recipe_id = recipe_ingredients.recipe_id").
		Where("shopping_cart_items.user_id = ?", userID).
		Group("ingredients.name, ingredients.measurement_unit").
		Order("ingredients.name, ingredients.measurement_unit").
		Scan(&lines).Error
	if err != nil {
		return nil, fmt.Errorf("aggregate shopping list for user %d: %w", userID, err)
	}
	return &ShoppingList{Lines: lines}, nil
}
