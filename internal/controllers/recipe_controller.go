package controllers

import (
	"fmt"
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests for recipes, their short links and
// the viewer's favorites and shopping cart
type RecipeController interface {
	ListRecipes(c *gin.Context)
	GetRecipe(c *gin.Context)
	CreateRecipe(c *gin.Context)
	UpdateRecipe(c *gin.Context)
	DeleteRecipe(c *gin.Context)
	GetLink(c *gin.Context)
	ResolveLink(c *gin.Context)
	AddFavorite(c *gin.Context)
	RemoveFavorite(c *gin.Context)
	AddToShoppingCart(c *gin.Context)
	RemoveFromShoppingCart(c *gin.Context)
	DownloadShoppingCart(c *gin.Context)
}

type recipeController struct {
	recipes       services.RecipeService
	favorites     services.MembershipService[models.Favorite]
	cart          services.MembershipService[models.ShoppingCartItem]
	shoppingList  services.ShoppingListService
	shortLinkBase string
}

func NewRecipeController(
	recipes services.RecipeService,
	favorites services.MembershipService[models.Favorite],
	cart services.MembershipService[models.ShoppingCartItem],
	shoppingList services.ShoppingListService,
	shortLinkBase string,
) RecipeController {
	return &recipeController{
		recipes:       recipes,
		favorites:     favorites,
		cart:          cart,
		shoppingList:  shoppingList,
		shortLinkBase: shortLinkBase,
	}
}

type recipeListQuery struct {
	Author           uint     `form:"author" binding:"omitempty,min=1"`
	Tags             []string `form:"tags" binding:"dive,max=128"`
	IsFavorited      int      `form:"is_favorited" binding:"omitempty,oneof=0 1"`
	IsInShoppingCart int      `form:"is_in_shopping_cart" binding:"omitempty,oneof=0 1"`
}

// ListRecipes godoc
// @Summary List recipes
// @Description List recipes ordered by publication date, optionally filtered
// @Tags recipes
// @Produce json
// @Param author query int false "Author user ID"
// @Param tags query []string false "Tag slugs, any match" collectionFormat(multi)
// @Param is_favorited query int false "1 to only return the viewer's favorites"
// @Param is_in_shopping_cart query int false "1 to only return recipes in the viewer's cart"
// @Success 200 {array} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Router /api/v1/recipes [get]
func (rc *recipeController) ListRecipes(c *gin.Context) {
	var q recipeListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	viewer := principal(c)
	recipes, err := rc.recipes.List(c.Request.Context(), services.RecipeFilter{
		ViewerID:         viewer.UserID,
		AuthorID:         q.Author,
		TagSlugs:         q.Tags,
		IsFavorited:      q.IsFavorited == 1,
		IsInShoppingCart: q.IsInShoppingCart == 1,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := rc.recipes.Project(c.Request.Context(), viewer.UserID, recipes...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GetRecipe godoc
// @Summary Get recipe by ID
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id} [get]
func (rc *recipeController) GetRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	recipe, err := rc.recipes.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// CreateRecipe godoc
// @Summary Create a recipe
// @Description Create a recipe with its ingredient lines and tags in one step
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 201 {object} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes [post]
func (rc *recipeController) CreateRecipe(c *gin.Context) {
	var in services.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := rc.recipes.Create(c.Request.Context(), principal(c).UserID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusCreated, recipe)
}

// UpdateRecipe godoc
// @Summary Replace a recipe
// @Description Replace a recipe, its ingredient lines and tags. Only the author or an admin may do this.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body services.RecipeInput true "Recipe"
// @Success 200 {object} models.RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [patch]
func (rc *recipeController) UpdateRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in services.RecipeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondBindError(c, err)
		return
	}

	recipe, err := rc.recipes.Update(c.Request.Context(), principal(c), id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	rc.respondRecipe(c, http.StatusOK, recipe)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 401 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [delete]
func (rc *recipeController) DeleteRecipe(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := rc.recipes.Delete(c.Request.Context(), principal(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetLink godoc
// @Summary Get a recipe short link
// @Description Returns the recipe's short link, assigning one on first request
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.ShortLinkResponse
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Router /api/v1/recipes/{id}/get-link [get]
func (rc *recipeController) GetLink(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	token, err := rc.recipes.GetShortLink(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ShortLinkResponse{ShortLink: rc.shortLinkBase + token})
}

// ResolveLink godoc
// @Summary Follow a short link
// @Tags recipes
// @Param code path string true "Short link token"
// @Success 302
// @Failure 404 {object} models.APIError
// @Router /s/{code} [get]
func (rc *recipeController) ResolveLink(c *gin.Context) {
	id, err := rc.recipes.ResolveShortLink(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/api/v1/recipes/%d", id))
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags favorites
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShort
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/favorite [post]
func (rc *recipeController) AddFavorite(c *gin.Context) {
	addToList[models.Favorite](c, rc.favorites)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags favorites
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/favorite [delete]
func (rc *recipeController) RemoveFavorite(c *gin.Context) {
	removeFromList[models.Favorite](c, rc.favorites)
}

// AddToShoppingCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags shopping_cart
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} models.RecipeShort
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/shopping_cart [post]
func (rc *recipeController) AddToShoppingCart(c *gin.Context) {
	addToList[models.ShoppingCartItem](c, rc.cart)
}

// RemoveFromShoppingCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags shopping_cart
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id}/shopping_cart [delete]
func (rc *recipeController) RemoveFromShoppingCart(c *gin.Context) {
	removeFromList[models.ShoppingCartItem](c, rc.cart)
}

// DownloadShoppingCart godoc
// @Summary Download the shopping list
// @Description Ingredients of every recipe in the cart, summed per ingredient and unit
// @Tags shopping_cart
// @Produce plain
// @Success 200 {string} string
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/download_shopping_cart [get]
func (rc *recipeController) DownloadShoppingCart(c *gin.Context) {
	list, err := rc.shoppingList.BuildShoppingList(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(list.Render()))
}

func (rc *recipeController) respondRecipe(c *gin.Context, status int, recipe *models.Recipe) {
	out, err := rc.recipes.Project(c.Request.Context(), principal(c).UserID, *recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, out[0])
}

func addToList[T models.RecipeList](c *gin.Context, list services.MembershipService[T]) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	short, err := list.Add(c.Request.Context(), principal(c).UserID, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, short)
}

func removeFromList[T models.RecipeList](c *gin.Context, list services.MembershipService[T]) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := list.Remove(c.Request.Context(), principal(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
