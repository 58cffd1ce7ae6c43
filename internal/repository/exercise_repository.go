package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/access"
	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sortColumns whitelists the fields a listing may be ordered by.
// Keys are accepted in API (camelCase) and column (snake_case) spelling.
var sortColumns = map[string]string{
	"id":          "exercises.id",
	"name":        "exercises.name",
	"description": "exercises.description",
	"difficulty":  "exercises.difficulty",
	"isPublic":    "exercises.is_public",
	"is_public":   "exercises.is_public",
	"createdAt":   "exercises.created_at",
	"created_at":  "exercises.created_at",
	"updatedAt":   "exercises.updated_at",
	"updated_at":  "exercises.updated_at",
}

// IsSortable reports whether field may be used as a listing sort key
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

// SortableFields lists the accepted sort keys in API spelling
func SortableFields() []string {
	return []string{"id", "name", "description", "difficulty", "isPublic", "createdAt", "updatedAt"}
}

// ExerciseSummary is an exercise row with its derived counts
type ExerciseSummary struct {
	ID            uint
	Name          string
	Description   string
	Difficulty    int
	IsPublic      bool
	UserID        uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerUsername string
	FavoriteCount int64
	SaveCount     int64
	RatingCount   int64
	RatingAverage sql.NullFloat64
}

// ListQuery filters an exercise listing
type ListQuery struct {
	// Viewer sees public exercises plus the ones they own; access.Anonymous sees public only
	Viewer     uuid.UUID
	PublicOnly bool
	Search     string
	// SortBy must satisfy IsSortable; empty keeps creation order
	SortBy string
	Limit  int
	Offset int
}

type ExerciseRepository struct {
	db *gorm.DB
}

func NewExerciseRepository(db *gorm.DB) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

// Create inserts exercise. An unknown owner yields ErrReference.
func (r *ExerciseRepository) Create(ctx context.Context, exercise *models.Exercise) error {
	return translate(r.db.WithContext(ctx).Omit("Owner").Create(exercise).Error)
}

// GetByID returns (nil, nil) when the exercise does not exist
func (r *ExerciseRepository) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	var exercise models.Exercise
	err := r.db.WithContext(ctx).First(&exercise, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &exercise, nil
}

// Update writes the editable fields. Ownership is never written.
func (r *ExerciseRepository) Update(ctx context.Context, exercise *models.Exercise) error {
	err := r.db.WithContext(ctx).
		Model(exercise).
		Select("name", "description", "difficulty", "is_public", "updated_at").
		Updates(exercise).Error
	return translate(err)
}

// Delete removes the exercise and every favorite, save and rating pointing at it,
// atomically. It does not rely on the store enforcing ON DELETE CASCADE.
func (r *ExerciseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []interface{}{&models.Rating{}, &models.Save{}, &models.Favorite{}} {
			if err := tx.Where("exercise_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Exercise{}, id).Error
	})
}

// summaries selects exercises with owner name, favorite/save counts and rating average
func (r *ExerciseRepository) summaries(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("exercises").
		Select(`exercises.id, exercises.name, exercises.description, exercises.difficulty,
			exercises.is_public, exercises.user_id, exercises.created_at, exercises.updated_at,
			users.username AS owner_username,
			(SELECT COUNT(*) FROM favorites WHERE favorites.exercise_id = exercises.id) AS favorite_count,
			(SELECT COUNT(*) FROM saves WHERE saves.exercise_id = exercises.id) AS save_count,
			(SELECT COUNT(*) FROM ratings WHERE ratings.exercise_id = exercises.id) AS rating_count,
			(SELECT AVG(ratings.score) FROM ratings WHERE ratings.exercise_id = exercises.id) AS rating_average`).
		Joins("JOIN users ON users.id = exercises.user_id")
}

// GetSummary returns (nil, nil) when the exercise does not exist.
// Visibility is not applied; callers check access on the returned row.
func (r *ExerciseRepository) GetSummary(ctx context.Context, id uint) (*ExerciseSummary, error) {
	var rows []ExerciseSummary
	if err := r.summaries(ctx).Where("exercises.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// List returns the exercises matching q with their aggregates
func (r *ExerciseRepository) List(ctx context.Context, q ListQuery) ([]ExerciseSummary, error) {
	query := r.summaries(ctx)

	if q.PublicOnly {
		query = query.Scopes(access.PublicOnly())
	} else {
		query = query.Scopes(access.VisibleTo(q.Viewer))
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		query = query.Scopes(searchScope(term))
	}

	if q.SortBy != "" {
		column, ok := sortColumns[q.SortBy]
		if !ok {
			return nil, errors.New("unsupported sort field")
		}
		if column != "exercises.id" {
			query = query.Order(column + " ASC")
		}
	}
	query = query.Order("exercises.id ASC")

	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if q.Offset > 0 {
		query = query.Offset(q.Offset)
	}

	var rows []ExerciseSummary
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDs returns summaries for ids visible to viewer, keyed by exercise id
func (r *ExerciseRepository) ListByIDs(ctx context.Context, ids []uint, viewer uuid.UUID) (map[uint]ExerciseSummary, error) {
	result := make(map[uint]ExerciseSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []ExerciseSummary
	err := r.summaries(ctx).
		Scopes(access.VisibleTo(viewer)).
		Where("exercises.id IN ?", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.ID] = row
	}
	return result, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchScope matches a case-insensitive substring of name or description,
// or the exact difficulty when term is an integer.
// Both sides are folded by LOWER in SQL so the term and the columns use the same case mapping.
func searchScope(term string) func(*gorm.DB) *gorm.DB {
	pattern := "%" + likeEscaper.Replace(term) + "%"

	return func(db *gorm.DB) *gorm.DB {
		if difficulty, err := strconv.Atoi(term); err == nil {
			return db.Where(`(LOWER(exercises.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(COALESCE(exercises.description, '')) LIKE LOWER(?) ESCAPE '\' OR exercises.difficulty = ?)`,
				pattern, pattern, difficulty)
		}
		return db.Where(`(LOWER(exercises.name) LIKE LOWER(?) ESCAPE '\' OR LOWER(COALESCE(exercises.description, '')) LIKE LOWER(?) ESCAPE '\')`,
			pattern, pattern)
	}
}
