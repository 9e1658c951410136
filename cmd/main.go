package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/foodgram-api/internal/cache"
	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// @title Foodgram API
// @version 1.0
// @description Recipe sharing backend: recipes, favorites, shopping cart and subscriptions
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Initialize logger
	setUpLogger()

	// Load configuration
	configuration := loadConfig()

	// Initialize database connection
	db := setupDatabase(configuration)

	linkCache := setupShortLinkCache(configuration)

	// Initialize services and controllers
	favorites := services.NewFavoriteService(db)
	cart := services.NewShoppingCartService(db)
	follows := services.NewFollowService(db)
	recipes := services.NewRecipeService(db, favorites, cart, follows, services.RecipeServiceOptions{
		ShortLinkLength:      configuration.ShortLinkLength,
		ShortLinkMaxAttempts: configuration.ShortLinkMaxAttempts,
		Cache:                linkCache,
	})

	router := controllers.SetupRouter(controllers.RouterConfig{
		Recipes: controllers.NewRecipeController(
			recipes, favorites, cart, services.NewShoppingListService(db), configuration.ShortLinkBaseURL),
		Users:              controllers.NewUserController(services.NewUserService(db), follows),
		Catalog:            controllers.NewCatalogController(services.NewCatalogService(db)),
		JWTSecret:          []byte(configuration.JWTSecret),
		CORSAllowedOrigins: configuration.CORSAllowedOrigins,
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start the server
	run(router, configuration)
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and sets the log level based on the environment.
// LOG_LEVEL, when set, overrides the environment default.
func setUpLogger() {
	log.SetFormatter(&log.JSONFormatter{})
	environment := config.GetEnvWithDefault("APP_ENV", "development")
	switch environment {
	case "development":
		log.SetLevel(log.DebugLevel)
	case "production":
		log.SetLevel(log.ErrorLevel)
		gin.SetMode(gin.ReleaseMode)
	default:
		log.SetLevel(log.InfoLevel)
	}
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	log.Infof("Configuration loaded: %s", conf)
	return conf
}

// setupDatabase connects with retries and migrates the schema
func setupDatabase(conf *config.Config) *gorm.DB {
	db, err := database.InitDatabase(conf.Database())
	checkPanicErr(err)
	checkPanicErr(database.Migrate(db))
	return db
}

// setupShortLinkCache connects to Redis when REDIS_URL is set. The service
// keeps working against the database alone when it is not.
func setupShortLinkCache(conf *config.Config) cache.ShortLinkCache {
	if conf.RedisURL == "" {
		log.Info("REDIS_URL not set, short link cache disabled")
		return cache.NopShortLinkCache{}
	}
	redisCache, err := cache.NewRedisShortLinkCache(conf.RedisURL, conf.ShortLinkCacheTTL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, short link cache disabled")
		return cache.NopShortLinkCache{}
	}
	log.Info("Short link cache connected to Redis")
	return redisCache
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests
func run(router *gin.Engine, conf *config.Config) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%v:%d", conf.Host, conf.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shut down")
	}
}
