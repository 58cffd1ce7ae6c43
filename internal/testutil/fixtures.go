package testutil

import (
	"testing"

	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the plaintext password of users created by CreateTestUser
const DefaultPassword = "Test123456"

// Hasher uses the cheapest bcrypt cost to keep tests fast
var Hasher = utils.NewPasswordHasher(bcrypt.MinCost)

// CreateTestUser inserts a user whose password is DefaultPassword
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	hash, err := Hasher.Hash(DefaultPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return user
}

// CreateTestExercise inserts an exercise owned by owner
func CreateTestExercise(t *testing.T, db *gorm.DB, owner *models.User, name string, difficulty int, isPublic bool) *models.Exercise {
	exercise := &models.Exercise{
		Name:        name,
		Description: name + " description",
		Difficulty:  difficulty,
		IsPublic:    isPublic,
		UserID:      owner.ID,
	}
	if err := db.Omit("Owner").Create(exercise).Error; err != nil {
		t.Fatalf("Failed to create exercise %s: %v", name, err)
	}
	return exercise
}
