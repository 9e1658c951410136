package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/foodgram-api/internal/cache"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// IngredientAmount is one submitted ingredient line
type IngredientAmount struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// RecipeInput is the complete desired state of a recipe. Updates replace
// the ingredient lines and tag set with exactly what is submitted.
type RecipeInput struct {
	Ingredients []IngredientAmount `json:"ingredients"`
	Tags        []uint             `json:"tags"`
	Image       string             `json:"image"`
	Name        string             `json:"name"`
	Text        string             `json:"text"`
	CookingTime int                `json:"cooking_time"`
}

// RecipeFilter narrows List. The membership flags only apply when ViewerID is set.
type RecipeFilter struct {
	ViewerID         uint
	AuthorID         uint
	TagSlugs         []string
	IsFavorited      bool
	IsInShoppingCart bool
}

type RecipeService interface {
	// Create validates in and stores the recipe with its lines and tags atomically
	Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error)
	// Update fully replaces the recipe. Only the author or an admin may call it.
	Update(ctx context.Context, p Principal, id uint, in RecipeInput) (*models.Recipe, error)
	Delete(ctx context.Context, p Principal, id uint) error
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	List(ctx context.Context, f RecipeFilter) ([]models.Recipe, error)
	// GetShortLink returns the recipe's token, assigning one on first use
	GetShortLink(ctx context.Context, id uint) (string, error)
	// ResolveShortLink maps a token back to its recipe id
	ResolveShortLink(ctx context.Context, code string) (uint, error)
	// Project renders recipes with the viewer's favorite, cart and subscription flags
	Project(ctx context.Context, viewerID uint, recipes ...models.Recipe) ([]models.RecipeResponse, error)
}

type RecipeServiceOptions struct {
	ShortLinkLength      int
	ShortLinkMaxAttempts int
	// Generate defaults to GenerateShortLink
	Generate LinkGenerator
	// Cache defaults to cache.NopShortLinkCache
	Cache cache.ShortLinkCache
}

type recipeService struct {
	db        *gorm.DB
	favorites MembershipService[models.Favorite]
	cart      MembershipService[models.ShoppingCartItem]
	follows   FollowService
	opts      RecipeServiceOptions
}

func NewRecipeService(
	db *gorm.DB,
	favorites MembershipService[models.Favorite],
	cart MembershipService[models.ShoppingCartItem],
	follows FollowService,
	opts RecipeServiceOptions,
) RecipeService {
	if opts.ShortLinkLength <= 0 {
		opts.ShortLinkLength = 8
	}
	if opts.ShortLinkMaxAttempts <= 0 {
		opts.ShortLinkMaxAttempts = 10
	}
	if opts.Generate == nil {
		opts.Generate = GenerateShortLink
	}
	if opts.Cache == nil {
		opts.Cache = cache.NopShortLinkCache{}
	}
	return &recipeService{
		db:        db,
		favorites: favorites,
		cart:      cart,
		follows:   follows,
		opts:      opts,
	}
}

func (s *recipeService) Create(ctx context.Context, authorID uint, in RecipeInput) (*models.Recipe, error) {
	recipe := models.Recipe{
		AuthorID:    authorID,
		Name:        in.Name,
		Text:        in.Text,
		Image:       in.Image,
		CookingTime: in.CookingTime,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags, err := validateRecipe(tx, in)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&recipe).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return fmt.Errorf("author %d: %w", authorID, ErrNotFound)
			}
			return fmt.Errorf("insert recipe: %w", err)
		}
		return writeAssociations(tx, &recipe, in.Ingredients, tags)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"recipe_id":   recipe.ID,
		"author_id":   authorID,
		"ingredients": len(in.Ingredients),
		"tags":        len(in.Tags),
	}).Info("Recipe created")
	return s.Get(ctx, recipe.ID)
}

func (s *recipeService) Update(ctx context.Context, p Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Select("id", "author_id").First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load recipe %d: %w", id, err)
		}
		if !p.CanModify(recipe.AuthorID) {
			return ErrForbidden
		}

		tags, err := validateRecipe(tx, in)
		if err != nil {
			return err
		}

		err = tx.Model(&recipe).Updates(map[string]any{
			"name":         in.Name,
			"text":         in.Text,
			"image":        in.Image,
			"cooking_time": in.CookingTime,
		}).Error
		if err != nil {
			return fmt.Errorf("update recipe %d: %w", id, err)
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear ingredients of %d: %w", id, err)
		}
		return writeAssociations(tx, &recipe, in.Ingredients, tags)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"recipe_id": id,
		"user_id":   p.UserID,
	}).Info("Recipe updated")
	return s.Get(ctx, id)
}

func (s *recipeService) Delete(ctx context.Context, p Principal, id uint) error {
	var recipe models.Recipe
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id", "author_id", "short_link").First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load recipe %d: %w", id, err)
		}
		if !p.CanModify(recipe.AuthorID) {
			return ErrForbidden
		}
		if err := tx.Model(&recipe).Association("Tags").Clear(); err != nil {
			return fmt.Errorf("clear tags of %d: %w", id, err)
		}
		if err := tx.Delete(&recipe).Error; err != nil {
			return fmt.Errorf("delete recipe %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if recipe.ShortLink != nil {
		if err := s.opts.Cache.Delete(ctx, *recipe.ShortLink); err != nil {
			log.WithError(err).WithField("recipe_id", id).Warn("Failed to evict short link")
		}
	}
	log.WithFields(log.Fields{
		"recipe_id": id,
		"user_id":   p.UserID,
	}).Info("Recipe deleted")
	return nil
}

func (s *recipeService) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	if err := preloadAggregate(s.db.WithContext(ctx)).First(&recipe, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get recipe %d: %w", id, err)
	}
	return &recipe, nil
}

func (s *recipeService) List(ctx context.Context, f RecipeFilter) ([]models.Recipe, error) {
	db := s.db.WithContext(ctx)
	query := preloadAggregate(db)

	if f.AuthorID != 0 {
		query = query.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		tagged := db.Table("recipe_tags").
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		query = query.Where("recipes.id IN (?)", tagged)
	}
	if f.ViewerID != 0 && f.IsFavorited {
		query = query.Where("recipes.id IN (?)", s.favorites.RecipeIDs(ctx, f.ViewerID))
	}
	if f.ViewerID != 0 && f.IsInShoppingCart {
		query = query.Where("recipes.id IN (?)", s.cart.RecipeIDs(ctx, f.ViewerID))
	}

	var recipes []models.Recipe
	if err := query.Order("recipes.pub_date, recipes.id").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *recipeService) Project(ctx context.Context, viewerID uint, recipes ...models.Recipe) ([]models.RecipeResponse, error) {
	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for _, r := range recipes {
		recipeIDs = append(recipeIDs, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	favorited, err := s.favorites.Contains(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := s.cart.Contains(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.follows.BatchIsFollowing(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]models.RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		tags := make([]models.TagResponse, 0, len(r.Tags))
		for _, t := range r.Tags {
			tags = append(tags, models.NewTagResponse(t))
		}
		lines := make([]models.IngredientLineResponse, 0, len(r.RecipeIngredients))
		for _, ri := range r.RecipeIngredients {
			lines = append(lines, models.IngredientLineResponse{
				ID:              ri.IngredientID,
				Name:            ri.Ingredient.Name,
				MeasurementUnit: ri.Ingredient.MeasurementUnit,
				Amount:          ri.Amount,
			})
		}
		out = append(out, models.RecipeResponse{
			ID:               r.ID,
			Tags:             tags,
			Author:           models.NewUserResponse(r.Author, subscribed[r.AuthorID]),
			Ingredients:      lines,
			IsFavorited:      favorited[r.ID],
			IsInShoppingCart: inCart[r.ID],
			Name:             r.Name,
			Image:            r.Image,
			Text:             r.Text,
			CookingTime:      r.CookingTime,
			PubDate:          r.PubDate,
		})
	}
	return out, nil
}

// preloadAggregate loads everything a recipe projection needs, keeping
// ingredient lines in insertion order.
func preloadAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("Tags", func(db *gorm.DB) *gorm.DB {
			return db.Order("tags.id")
		}).
		Preload("RecipeIngredients", func(db *gorm.DB) *gorm.DB {
			return db.Order("recipe_ingredients.id")
		}).
		Preload("RecipeIngredients.Ingredient")
}

func writeAssociations(tx *gorm.DB, recipe *models.Recipe, items []IngredientAmount, tags []models.Tag) error {
	lines := make([]models.RecipeIngredient, 0, len(items))
	for _, item := range items {
		lines = append(lines, models.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: item.ID,
			Amount:       item.Amount,
		})
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return fmt.Errorf("insert ingredient lines: %w", err)
	}
	if err := tx.Model(recipe).Association("Tags").Replace(tags); err != nil {
		return fmt.Errorf("set tags: %w", err)
	}
	return nil
}

// validateRecipe checks every field before anything is written and returns
// the referenced tags. All problems are reported together.
func validateRecipe(tx *gorm.DB, in RecipeInput) ([]models.Tag, error) {
	verr := &ValidationError{}

	switch {
	case strings.TrimSpace(in.Name) == "":
		verr.Add("name", "This field is required.")
	case utf8.RuneCountInString(in.Name) > models.MaxRecipeNameLength:
		verr.Add("name", fmt.Sprintf("Ensure this field has no more than %d characters.", models.MaxRecipeNameLength))
	}
	if strings.TrimSpace(in.Text) == "" {
		verr.Add("text", "This field is required.")
	}
	if strings.TrimSpace(in.Image) == "" {
		verr.Add("image", "This field is required.")
	}
	if in.CookingTime < models.MinCookingTime {
		verr.Add("cooking_time", fmt.Sprintf("Ensure this value is greater than or equal to %d.", models.MinCookingTime))
	}

	var tags []models.Tag
	if len(in.Tags) == 0 {
		verr.Add("tags", "At least one tag is required.")
	} else if hasDuplicates(in.Tags) {
		verr.Add("tags", "Tags must not repeat.")
	} else {
		if err := tx.Where("id IN ?", in.Tags).Find(&tags).Error; err != nil {
			return nil, fmt.Errorf("load tags: %w", err)
		}
		for _, id := range missingIDs(in.Tags, tags, func(t models.Tag) uint { return t.ID }) {
			verr.Add("tags", fmt.Sprintf("Tag %d does not exist.", id))
		}
	}

	if len(in.Ingredients) == 0 {
		verr.Add("ingredients", "At least one ingredient is required.")
	} else {
		ids := make([]uint, 0, len(in.Ingredients))
		for _, item := range in.Ingredients {
			ids = append(ids, item.ID)
			if item.Amount < models.MinIngredientAmount {
				verr.Add("ingredients", fmt.Sprintf("Amount of ingredient %d must be at least %d.", item.ID, models.MinIngredientAmount))
			}
		}
		if hasDuplicates(ids) {
			verr.Add("ingredients", "Ingredients must not repeat.")
		} else {
			var found []models.Ingredient
			if err := tx.Select("id").Where("id IN ?", ids).Find(&found).Error; err != nil {
				return nil, fmt.Errorf("load ingredients: %w", err)
			}
			for _, id := range missingIDs(ids, found, func(i models.Ingredient) uint { return i.ID }) {
				verr.Add("ingredients", fmt.Sprintf("Ingredient %d does not exist.", id))
			}
		}
	}

	if err := verr.Err(); err != nil {
		return nil, err
	}
	return tags, nil
}

func hasDuplicates(ids []uint) bool {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

// missingIDs returns the requested ids with no matching row, in request order
func missingIDs[T any](requested []uint, found []T, id func(T) uint) []uint {
	present := make(map[uint]struct{}, len(found))
	for _, f := range found {
		present[id(f)] = struct{}{}
	}
	var missing []uint
	for _, r := range requested {
		if _, ok := present[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}
