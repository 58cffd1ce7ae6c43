package repository

import (
	"context"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var userExerciseKey = []clause.Column{{Name: "user_id"}, {Name: "exercise_id"}}

// InteractionRepository stores favorites, saves and ratings
type InteractionRepository struct {
	db *gorm.DB
}

func NewInteractionRepository(db *gorm.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// AddFavorite creates the favorite if absent. created is false when it already existed.
func (r *InteractionRepository) AddFavorite(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return r.insertIfAbsent(ctx, &models.Favorite{UserID: userID, ExerciseID: exerciseID})
}

// RemoveFavorite reports whether a favorite was removed
func (r *InteractionRepository) RemoveFavorite(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return r.remove(ctx, &models.Favorite{}, userID, exerciseID)
}

// AddSave creates the save if absent. created is false when it already existed.
func (r *InteractionRepository) AddSave(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return r.insertIfAbsent(ctx, &models.Save{UserID: userID, ExerciseID: exerciseID})
}

// RemoveSave reports whether a save was removed
func (r *InteractionRepository) RemoveSave(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return r.remove(ctx, &models.Save{}, userID, exerciseID)
}

// insertIfAbsent is a single INSERT ... ON CONFLICT DO NOTHING, so concurrent
// identical requests still leave exactly one row
func (r *InteractionRepository) insertIfAbsent(ctx context.Context, value interface{}) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: userExerciseKey, DoNothing: true}).
		Omit(clause.Associations).
		Create(value)
	if result.Error != nil {
		return false, translate(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *InteractionRepository) remove(ctx context.Context, model interface{}, userID uuid.UUID, exerciseID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		Delete(model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// UpsertRating stores score for (user, exercise), overwriting an earlier score atomically
func (r *InteractionRepository) UpsertRating(ctx context.Context, userID uuid.UUID, exerciseID uint, score int) (*models.Rating, error) {
	now := time.Now()
	rating := &models.Rating{
		UserID:     userID,
		ExerciseID: exerciseID,
		Score:      score,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   userExerciseKey,
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Omit(clause.Associations).
		Create(rating).Error
	if err != nil {
		return nil, translate(err)
	}

	var stored models.Rating
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ?", userID, exerciseID).
		First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// ListFavoriters returns the users who favorited the exercise, earliest first
func (r *InteractionRepository) ListFavoriters(ctx context.Context, exerciseID uint) ([]models.User, error) {
	return r.listUsers(ctx, "favorites", exerciseID)
}

// ListSavers returns the users who saved the exercise, earliest first
func (r *InteractionRepository) ListSavers(ctx context.Context, exerciseID uint) ([]models.User, error) {
	return r.listUsers(ctx, "saves", exerciseID)
}

// table is one of the fixed join table names above, never caller input
func (r *InteractionRepository) listUsers(ctx context.Context, table string, exerciseID uint) ([]models.User, error) {
	users := []models.User{}
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Select("users.id, users.username").
		Joins("JOIN "+table+" ON "+table+".user_id = users.id").
		Where(table+".exercise_id = ?", exerciseID).
		Order(table + ".created_at ASC").
		Order("users.username ASC").
		Find(&users).Error
	return users, err
}

// FavoritedExerciseIDs returns the ids the user favorited, in favorite order
func (r *InteractionRepository) FavoritedExerciseIDs(ctx context.Context, userID uuid.UUID) ([]uint, error) {
	return r.exerciseIDs(ctx, &models.Favorite{}, userID)
}

// SavedExerciseIDs returns the ids the user saved, in save order
func (r *InteractionRepository) SavedExerciseIDs(ctx context.Context, userID uuid.UUID) ([]uint, error) {
	return r.exerciseIDs(ctx, &models.Save{}, userID)
}

func (r *InteractionRepository) exerciseIDs(ctx context.Context, model interface{}, userID uuid.UUID) ([]uint, error) {
	ids := []uint{}
	err := r.db.WithContext(ctx).
		Model(model).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("exercise_id ASC").
		Pluck("exercise_id", &ids).Error
	return ids, err
}
