package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type CatalogController interface {
	ListTags(c *gin.Context)
	GetTag(c *gin.Context)
	ListIngredients(c *gin.Context)
	GetIngredient(c *gin.Context)
}

type catalogController struct {
	catalog services.CatalogService
}

func NewCatalogController(catalog services.CatalogService) CatalogController {
	return &catalogController{catalog: catalog}
}

// ListTags godoc
// @Summary List tags
// @Tags catalog
// @Produce json
// @Success 200 {array} models.TagResponse
// @Router /api/v1/tags [get]
func (cc *catalogController) ListTags(c *gin.Context) {
	tags, err := cc.catalog.ListTags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]models.TagResponse, len(tags))
	for i, t := range tags {
		out[i] = models.NewTagResponse(t)
	}
	c.JSON(http.StatusOK, out)
}

// GetTag godoc
// @Summary Get tag by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} models.TagResponse
// @Failure 404 {object} models.APIError
// @Router /api/v1/tags/{id} [get]
func (cc *catalogController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	tag, err := cc.catalog.GetTag(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTagResponse(*tag))
}

// ListIngredients godoc
// @Summary Search ingredients
// @Description Ingredients whose name starts with the given prefix, ignoring case
// @Tags catalog
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /api/v1/ingredients [get]
func (cc *catalogController) ListIngredients(c *gin.Context) {
	ingredients, err := cc.catalog.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get ingredient by ID
// @Tags catalog
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/v1/ingredients/{id} [get]
func (cc *catalogController) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	ingredient, err := cc.catalog.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
