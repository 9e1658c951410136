package controllers

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the controllers and settings the router is built from
type RouterConfig struct {
	Recipes            RecipeController
	Users              UserController
	Catalog            CatalogController
	JWTSecret          []byte
	CORSAllowedOrigins []string
}

// SetupRouter builds the gin engine with every API route registered
func SetupRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	if len(cfg.CORSAllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	requireAuth := middleware.JWTAuth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalJWTAuth(cfg.JWTSecret)

	router.GET("/health", healthCheckHandler)
	router.GET("/s/:code", cfg.Recipes.ResolveLink)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/tags", cfg.Catalog.ListTags)
		v1.GET("/tags/:id", cfg.Catalog.GetTag)
		v1.GET("/ingredients", cfg.Catalog.ListIngredients)
		v1.GET("/ingredients/:id", cfg.Catalog.GetIngredient)

		recipes := v1.Group("/recipes")
		{
			recipes.GET("", optionalAuth, cfg.Recipes.ListRecipes)
			recipes.GET("/:id", optionalAuth, cfg.Recipes.GetRecipe)
			recipes.GET("/:id/get-link", cfg.Recipes.GetLink)
			recipes.GET("/download_shopping_cart", requireAuth, cfg.Recipes.DownloadShoppingCart)

			recipes.POST("", requireAuth, cfg.Recipes.CreateRecipe)
			recipes.PATCH("/:id", requireAuth, cfg.Recipes.UpdateRecipe)
			recipes.PUT("/:id", requireAuth, cfg.Recipes.UpdateRecipe)
			recipes.DELETE("/:id", requireAuth, cfg.Recipes.DeleteRecipe)

			recipes.POST("/:id/favorite", requireAuth, cfg.Recipes.AddFavorite)
			recipes.DELETE("/:id/favorite", requireAuth, cfg.Recipes.RemoveFavorite)
			recipes.POST("/:id/shopping_cart", requireAuth, cfg.Recipes.AddToShoppingCart)
			recipes.DELETE("/:id/shopping_cart", requireAuth, cfg.Recipes.RemoveFromShoppingCart)
		}

		users := v1.Group("/users")
		{
			users.GET("", optionalAuth, cfg.Users.ListUsers)
			users.GET("/me", requireAuth, cfg.Users.Me)
			users.GET("/subscriptions", requireAuth, cfg.Users.Subscriptions)
			users.GET("/:id", optionalAuth, cfg.Users.GetUser)
			users.POST("/:id/subscribe", requireAuth, cfg.Users.Subscribe)
			users.DELETE("/:id/subscribe", requireAuth, cfg.Users.Unsubscribe)
		}
	}

	return router
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "foodgram-api",
	})
}
