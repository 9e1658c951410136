// Creates (or reuses) a development user and prints a bearer token for it.
//
//	go run scripts/create_dev_user.go -role admin
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/franciscosanchezn/foodgram-api/internal/config"
	"github.com/franciscosanchezn/foodgram-api/internal/database"
	"github.com/franciscosanchezn/foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/joho/godotenv"
)

func main() {
	role := flag.String("role", models.RoleUser, "User role (admin or user)")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *role != models.RoleUser && *role != models.RoleAdmin {
		log.Fatalf("Unknown role %q", *role)
	}

	_ = godotenv.Load()
	conf, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	users := services.NewUserService(db)
	user := getOrCreateUser(context.Background(), users, *role)

	token, err := middleware.NewAccessToken(user.ID, user.Role, *ttl, []byte(conf.JWTSecret))
	if err != nil {
		log.Fatal("Failed to sign token:", err)
	}

	fmt.Printf("✓ Development user ready for role '%s'\n", user.Role)
	fmt.Printf("User ID: %d\n", user.ID)
	fmt.Printf("Email: %s\n", user.Email)
	fmt.Printf("Token (valid %s):\n%s\n", *ttl, token)
	fmt.Println("\nUse it for testing:")
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:%d/api/v1/users/me\n", token, conf.Port)
}

// getOrCreateUser gets or creates the user for the specified role
func getOrCreateUser(ctx context.Context, users services.UserService, role string) *models.User {
	email := fmt.Sprintf("%s@foodgram.dev", role)

	user, err := users.GetUserByEmail(ctx, email)
	if err == nil {
		fmt.Printf("Found existing user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
		return user
	}
	if !errors.Is(err, services.ErrNotFound) {
		log.Fatal("Failed to look up user:", err)
	}

	user = &models.User{
		Email:     email,
		Username:  role,
		FirstName: "Dev",
		LastName:  role,
		Role:      role,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		log.Fatal("Failed to create user:", err)
	}
	fmt.Printf("Created new user: %s (ID: %d, Role: %s)\n", user.Email, user.ID, user.Role)
	return user
}
