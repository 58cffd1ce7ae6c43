package main

import (
	"context"
	"log"
	"os"

	"github.com/Baaaki/exercise-catalog/internal/config"
	"github.com/Baaaki/exercise-catalog/internal/database"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/internal/service"
	"github.com/Baaaki/exercise-catalog/internal/utils"
)

type sampleExercise struct {
	name        string
	description string
	difficulty  int
	isPublic    bool
}

var samples = []sampleExercise{
	{"Push-up", "Bodyweight press from a plank position", 2, true},
	{"Squat", "Lower the hips until the thighs are parallel to the floor", 2, true},
	{"Pull-up", "Hang from a bar and pull the chin above it", 4, true},
	{"Plank", "Hold a straight body on forearms and toes", 1, true},
	{"Pistol squat", "Single-leg squat with the free leg held forward", 5, false},
}

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatal("Failed to connect database:", err)
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Get demo credentials from env
	username := os.Getenv("SEED_USERNAME")
	password := os.Getenv("SEED_PASSWORD")

	if username == "" || password == "" {
		log.Fatal("Missing environment variables: SEED_USERNAME, SEED_PASSWORD")
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)

	// Check if the demo user already exists
	existing, err := userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		log.Fatal("Failed to look up user:", err)
	}
	if existing != nil {
		log.Println("✅ Demo user already exists:", existing.Username)
		return
	}

	authService := service.NewAuthService(
		userRepo,
		utils.NewPasswordHasher(cfg.BcryptCost),
		utils.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
	)
	user, err := authService.Register(ctx, username, password)
	if err != nil {
		log.Fatal("Failed to create demo user:", err)
	}

	exerciseService := service.NewExerciseService(repository.NewExerciseRepository(db))
	for _, sample := range samples {
		difficulty := sample.difficulty
		exercise, err := exerciseService.Create(ctx, user.ID, service.CreateExerciseInput{
			Name:        sample.name,
			Description: sample.description,
			Difficulty:  &difficulty,
			IsPublic:    sample.isPublic,
		})
		if err != nil {
			log.Fatal("Failed to create exercise:", err)
		}
		log.Println("   Exercise:", exercise.Name)
	}

	log.Println("✅ Demo user created successfully!")
	log.Println("   Username:", user.Username)
	log.Println("   Exercises:", len(samples))
}
