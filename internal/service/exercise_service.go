package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/exercise-catalog/internal/access"
	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNameLength = 255
	maxPageSize   = 100
)

type CreateExerciseInput struct {
	Name        string
	Description string
	// Difficulty is required; nil means the client omitted it
	Difficulty *int
	IsPublic   bool
}

// UpdateExerciseInput changes only the non-nil fields
type UpdateExerciseInput struct {
	Name        *string
	Description *string
	Difficulty  *int
	IsPublic    *bool
}

type ListOptions struct {
	Search string
	SortBy string
	Limit  int
	Offset int
}

type ExerciseService struct {
	exerciseRepo *repository.ExerciseRepository
}

func NewExerciseService(exerciseRepo *repository.ExerciseRepository) *ExerciseService {
	return &ExerciseService{exerciseRepo: exerciseRepo}
}

func (s *ExerciseService) Create(ctx context.Context, ownerID uuid.UUID, in CreateExerciseInput) (*ExerciseView, error) {
	name := strings.TrimSpace(in.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if in.Difficulty == nil {
		return nil, invalid("difficulty", "difficulty is required")
	}
	if err := validateDifficulty(*in.Difficulty); err != nil {
		return nil, err
	}

	exercise := &models.Exercise{
		Name:        name,
		Description: in.Description,
		Difficulty:  *in.Difficulty,
		IsPublic:    in.IsPublic,
		UserID:      ownerID,
	}

	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		if errors.Is(err, repository.ErrReference) {
			return nil, ErrUserNotFound
		}
		logger.Log.Error("Failed to create exercise",
			zap.String("user_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Exercise created",
		zap.Uint("exercise_id", exercise.ID),
		zap.String("user_id", ownerID.String()),
		zap.Bool("is_public", exercise.IsPublic),
	)

	return s.view(ctx, exercise.ID)
}

func (s *ExerciseService) Update(ctx context.Context, actorID uuid.UUID, id uint, in UpdateExerciseInput) (*ExerciseView, error) {
	exercise, err := s.owned(ctx, actorID, id, "update")
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if err := validateName(name); err != nil {
			return nil, err
		}
		exercise.Name = name
	}
	if in.Description != nil {
		exercise.Description = *in.Description
	}
	if in.Difficulty != nil {
		if err := validateDifficulty(*in.Difficulty); err != nil {
			return nil, err
		}
		exercise.Difficulty = *in.Difficulty
	}
	if in.IsPublic != nil {
		exercise.IsPublic = *in.IsPublic
	}

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		logger.Log.Error("Failed to update exercise",
			zap.Uint("exercise_id", id),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Exercise updated",
		zap.Uint("exercise_id", id),
		zap.String("user_id", actorID.String()),
	)

	return s.view(ctx, id)
}

// Delete removes the exercise together with its favorites, saves and ratings
func (s *ExerciseService) Delete(ctx context.Context, actorID uuid.UUID, id uint) error {
	if _, err := s.owned(ctx, actorID, id, "delete"); err != nil {
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, id); err != nil {
		logger.Log.Error("Failed to delete exercise",
			zap.Uint("exercise_id", id),
			zap.Error(err),
		)
		return err
	}

	logger.Log.Info("Exercise deleted",
		zap.Uint("exercise_id", id),
		zap.String("user_id", actorID.String()),
	)
	return nil
}

// Get returns the exercise if viewerID may see it
func (s *ExerciseService) Get(ctx context.Context, viewerID uuid.UUID, id uint) (*ExerciseView, error) {
	row, err := s.exerciseRepo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrExerciseNotFound
	}

	exercise := &models.Exercise{ID: row.ID, UserID: row.UserID, IsPublic: row.IsPublic}
	if decision := access.Decide(access.ActionView, viewerID, exercise); !decision.Allowed() {
		logger.Log.Warn("Exercise view denied",
			zap.String("decision", string(decision)),
			zap.Uint("exercise_id", id),
			zap.String("user_id", viewerID.String()),
		)
		return nil, forbidden("view")
	}

	view := resolveSummary(*row)
	return &view, nil
}

// List returns public exercises plus the viewer's own
func (s *ExerciseService) List(ctx context.Context, viewerID uuid.UUID, opts ListOptions) ([]ExerciseView, error) {
	return s.list(ctx, repository.ListQuery{Viewer: viewerID}, opts)
}

// ListPublic returns public exercises only, whoever asks
func (s *ExerciseService) ListPublic(ctx context.Context, opts ListOptions) ([]ExerciseView, error) {
	return s.list(ctx, repository.ListQuery{Viewer: access.Anonymous, PublicOnly: true}, opts)
}

func (s *ExerciseService) list(ctx context.Context, q repository.ListQuery, opts ListOptions) ([]ExerciseView, error) {
	if err := validateListOptions(opts); err != nil {
		return nil, err
	}

	q.Search = opts.Search
	q.SortBy = opts.SortBy
	q.Limit = opts.Limit
	q.Offset = opts.Offset

	rows, err := s.exerciseRepo.List(ctx, q)
	if err != nil {
		logger.Log.Error("Failed to list exercises",
			zap.Bool("public_only", q.PublicOnly),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Debug("Listed exercises",
		zap.Bool("public_only", q.PublicOnly),
		zap.Int("count", len(rows)),
	)
	return resolveSummaries(rows), nil
}

// owned loads the exercise and checks that actorID may change it.
// Existence is checked before ownership.
func (s *ExerciseService) owned(ctx context.Context, actorID uuid.UUID, id uint, action string) (*models.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if exercise == nil {
		return nil, ErrExerciseNotFound
	}
	if decision := access.Decide(access.ActionMutate, actorID, exercise); !decision.Allowed() {
		logger.Log.Warn("Exercise change denied",
			zap.String("decision", string(decision)),
			zap.String("action", action),
			zap.Uint("exercise_id", id),
			zap.String("user_id", actorID.String()),
		)
		return nil, forbidden(action)
	}
	return exercise, nil
}

func (s *ExerciseService) view(ctx context.Context, id uint) (*ExerciseView, error) {
	row, err := s.exerciseRepo.GetSummary(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrExerciseNotFound
	}
	view := resolveSummary(*row)
	return &view, nil
}

func validateName(name string) error {
	if name == "" {
		return invalid("name", "name is required")
	}
	if len(name) > maxNameLength {
		return invalid("name", "name must be at most %d characters", maxNameLength)
	}
	return nil
}

func validateDifficulty(difficulty int) error {
	if difficulty < models.MinDifficulty || difficulty > models.MaxDifficulty {
		return invalid("difficulty", "difficulty must be between %d and %d", models.MinDifficulty, models.MaxDifficulty)
	}
	return nil
}

func validateListOptions(opts ListOptions) error {
	if opts.SortBy != "" && !repository.IsSortable(opts.SortBy) {
		return invalid("sortBy", "sortBy must be one of %s", strings.Join(repository.SortableFields(), ", "))
	}
	if opts.Limit < 0 || opts.Limit > maxPageSize {
		return invalid("limit", "limit must be between 0 and %d", maxPageSize)
	}
	if opts.Offset < 0 {
		return invalid("offset", "offset must not be negative")
	}
	return nil
}
