package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MembershipService toggles a (user, recipe) relation. The same
// implementation backs favorites and the shopping cart; T selects the table.
type MembershipService[T models.RecipeList] interface {
	// Add puts the recipe in the user's list and returns its short projection
	Add(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error)
	// Remove takes the recipe out of the user's list
	Remove(ctx context.Context, userID, recipeID uint) error
	// Contains reports which of recipeIDs are in the user's list
	Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
	// RecipeIDs is a subquery selecting the recipe ids in the user's list
	RecipeIDs(ctx context.Context, userID uint) *gorm.DB
}

type membershipService[T models.RecipeList] struct {
	db   *gorm.DB
	list string
}

func NewMembershipService[T models.RecipeList](db *gorm.DB, list string) MembershipService[T] {
	return &membershipService[T]{db: db, list: list}
}

func NewFavoriteService(db *gorm.DB) MembershipService[models.Favorite] {
	return NewMembershipService[models.Favorite](db, "favorites")
}

func NewShoppingCartService(db *gorm.DB) MembershipService[models.ShoppingCartItem] {
	return NewMembershipService[models.ShoppingCartItem](db, "shopping_cart")
}

func (s *membershipService[T]) Add(ctx context.Context, userID, recipeID uint) (*models.RecipeShort, error) {
	db := s.db.WithContext(ctx)

	recipe, err := findRecipeShort(db, recipeID)
	if err != nil {
		return nil, err
	}

	// Advisory only; the unique index decides concurrent adds.
	present, err := s.present(db, userID, recipeID)
	if err != nil {
		return nil, err
	}
	if present {
		return nil, ErrAlreadyExists
	}

	err = db.Model(new(T)).Create(map[string]any{
		"user_id":    userID,
		"recipe_id":  recipeID,
		"created_at": time.Now(),
	}).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return nil, ErrAlreadyExists
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("add to %s: %w", s.list, err)
	}

	log.WithFields(log.Fields{
		"list":      s.list,
		"user_id":   userID,
		"recipe_id": recipeID,
	}).Debug("Recipe added to list")
	return recipe, nil
}

func (s *membershipService[T]) Remove(ctx context.Context, userID, recipeID uint) error {
	db := s.db.WithContext(ctx)

	if _, err := findRecipeShort(db, recipeID); err != nil {
		return err
	}

	result := db.Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(new(T))
	if result.Error != nil {
		return fmt.Errorf("remove from %s: %w", s.list, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	log.WithFields(log.Fields{
		"list":      s.list,
		"user_id":   userID,
		"recipe_id": recipeID,
	}).Debug("Recipe removed from list")
	return nil
}

func (s *membershipService[T]) Contains(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}

	var ids []uint
	err := s.db.WithContext(ctx).Model(new(T)).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("load %s flags: %w", s.list, err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

func (s *membershipService[T]) RecipeIDs(ctx context.Context, userID uint) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T)).Select("recipe_id").Where("user_id = ?", userID)
}

func (s *membershipService[T]) present(db *gorm.DB, userID, recipeID uint) (bool, error) {
	var count int64
	err := db.Model(new(T)).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check %s: %w", s.list, err)
	}
	return count > 0, nil
}

func findRecipeShort(db *gorm.DB, recipeID uint) (*models.RecipeShort, error) {
	var recipe models.Recipe
	err := db.Select("id", "name", "image", "cooking_time").First(&recipe, recipeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}
	short := models.NewRecipeShort(recipe)
	return &short, nil
}
