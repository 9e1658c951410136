// Command loaddata bulk-loads the ingredient and tag catalogs from
// headerless two-column CSV files.
package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	ingredientsPath := flag.String("ingredients", "", "CSV of name,measurement_unit rows")
	tagsPath := flag.String("tags", "", "CSV of name,slug rows")
	force := flag.Bool("force", false, "Delete existing rows before loading")
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})
	if *ingredientsPath == "" && *tagsPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, using system environment variables")
	}
	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	catalog := services.NewCatalogService(db)
	ctx := context.Background()

	if *ingredientsPath != "" {
		load(ctx, "ingredients", *ingredientsPath, *force, catalog.ImportIngredients)
	}
	if *tagsPath != "" {
		load(ctx, "tags", *tagsPath, *force, catalog.ImportTags)
	}
}

func load(ctx context.Context, what, path string, force bool, importer func(context.Context, io.Reader, bool) (int64, error)) {
	f, err := os.Open(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Fatal("Cannot open CSV file")
	}
	defer f.Close()

	inserted, err := importer(ctx, f, force)
	if err != nil {
		log.WithError(err).WithField("path", path).Fatalf("Failed to load %s", what)
	}
	log.WithFields(log.Fields{
		"catalog":  what,
		"path":     path,
		"inserted": inserted,
		"force":    force,
	}).Info("Catalog loaded")
}
