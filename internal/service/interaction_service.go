package service

import (
	"context"
	"errors"

	"github.com/Baaaki/exercise-catalog/internal/access"
	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/Baaaki/exercise-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InteractionService handles favorites, saves, ratings and collections
type InteractionService struct {
	exerciseRepo    *repository.ExerciseRepository
	interactionRepo *repository.InteractionRepository
}

func NewInteractionService(exerciseRepo *repository.ExerciseRepository, interactionRepo *repository.InteractionRepository) *InteractionService {
	return &InteractionService{
		exerciseRepo:    exerciseRepo,
		interactionRepo: interactionRepo,
	}
}

// Favorite marks the exercise as a favorite of userID. Repeating it is a no-op.
func (s *InteractionService) Favorite(ctx context.Context, userID uuid.UUID, exerciseID uint) error {
	if _, err := s.viewable(ctx, userID, exerciseID, "favorite"); err != nil {
		return err
	}

	created, err := s.interactionRepo.AddFavorite(ctx, userID, exerciseID)
	if err != nil {
		return s.writeFailed("favorite", userID, exerciseID, err)
	}

	logger.Log.Debug("Exercise favorited",
		zap.Uint("exercise_id", exerciseID),
		zap.String("user_id", userID.String()),
		zap.Bool("created", created),
	)
	return nil
}

// Unfavorite reports whether a favorite existed and was removed
func (s *InteractionService) Unfavorite(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return s.interactionRepo.RemoveFavorite(ctx, userID, exerciseID)
}

// Save bookmarks the exercise for userID. Repeating it is a no-op.
func (s *InteractionService) Save(ctx context.Context, userID uuid.UUID, exerciseID uint) error {
	if _, err := s.viewable(ctx, userID, exerciseID, "save"); err != nil {
		return err
	}

	created, err := s.interactionRepo.AddSave(ctx, userID, exerciseID)
	if err != nil {
		return s.writeFailed("save", userID, exerciseID, err)
	}

	logger.Log.Debug("Exercise saved",
		zap.Uint("exercise_id", exerciseID),
		zap.String("user_id", userID.String()),
		zap.Bool("created", created),
	)
	return nil
}

// Unsave reports whether a save existed and was removed
func (s *InteractionService) Unsave(ctx context.Context, userID uuid.UUID, exerciseID uint) (bool, error) {
	return s.interactionRepo.RemoveSave(ctx, userID, exerciseID)
}

// Rate stores userID's score for the exercise, replacing any earlier score.
// The score is validated before the exercise is looked up.
func (s *InteractionService) Rate(ctx context.Context, userID uuid.UUID, exerciseID uint, score *int) (*models.Rating, error) {
	if score == nil {
		return nil, invalid("score", "score is required")
	}
	if *score < models.MinScore || *score > models.MaxScore {
		return nil, invalid("score", "score must be between %d and %d", models.MinScore, models.MaxScore)
	}

	if _, err := s.viewable(ctx, userID, exerciseID, "rate"); err != nil {
		return nil, err
	}

	rating, err := s.interactionRepo.UpsertRating(ctx, userID, exerciseID, *score)
	if err != nil {
		return nil, s.writeFailed("rate", userID, exerciseID, err)
	}

	logger.Log.Info("Exercise rated",
		zap.Uint("exercise_id", exerciseID),
		zap.String("user_id", userID.String()),
		zap.Int("score", *score),
	)
	return rating, nil
}

// Favoriters lists users who favorited an exercise viewerID may see
func (s *InteractionService) Favoriters(ctx context.Context, viewerID uuid.UUID, exerciseID uint) ([]UserView, error) {
	if _, err := s.viewable(ctx, viewerID, exerciseID, "view"); err != nil {
		return nil, err
	}
	users, err := s.interactionRepo.ListFavoriters(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return userViews(users), nil
}

// Savers lists users who saved an exercise viewerID may see
func (s *InteractionService) Savers(ctx context.Context, viewerID uuid.UUID, exerciseID uint) ([]UserView, error) {
	if _, err := s.viewable(ctx, viewerID, exerciseID, "view"); err != nil {
		return nil, err
	}
	users, err := s.interactionRepo.ListSavers(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	return userViews(users), nil
}

// Collections returns every exercise userID favorited or saved, once each,
// flagged with that user's own relation to it
func (s *InteractionService) Collections(ctx context.Context, userID uuid.UUID) ([]CollectionItem, error) {
	favorited, err := s.interactionRepo.FavoritedExerciseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	saved, err := s.interactionRepo.SavedExerciseIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(favorited)+len(saved))
	ids = append(ids, favorited...)
	ids = append(ids, saved...)

	summaries, err := s.exerciseRepo.ListByIDs(ctx, ids, userID)
	if err != nil {
		return nil, err
	}

	items := mergeCollections(favorited, saved, summaries)

	logger.Log.Debug("Collections resolved",
		zap.String("user_id", userID.String()),
		zap.Int("favorites", len(favorited)),
		zap.Int("saves", len(saved)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// viewable loads the exercise and checks that userID may see it.
// Existence is checked before visibility.
func (s *InteractionService) viewable(ctx context.Context, userID uuid.UUID, exerciseID uint, action string) (*models.Exercise, error) {
	exercise, err := s.exerciseRepo.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	if exercise == nil {
		return nil, ErrExerciseNotFound
	}
	if decision := access.Decide(access.ActionView, userID, exercise); !decision.Allowed() {
		logger.Log.Warn("Exercise interaction denied",
			zap.String("decision", string(decision)),
			zap.String("action", action),
			zap.Uint("exercise_id", exerciseID),
			zap.String("user_id", userID.String()),
		)
		return nil, forbidden(action)
	}
	return exercise, nil
}

// writeFailed maps a foreign key failure (exercise deleted between the check and the
// write) to not found
func (s *InteractionService) writeFailed(action string, userID uuid.UUID, exerciseID uint, err error) error {
	if errors.Is(err, repository.ErrReference) {
		return ErrExerciseNotFound
	}
	logger.Log.Error("Failed to store interaction",
		zap.String("action", action),
		zap.Uint("exercise_id", exerciseID),
		zap.String("user_id", userID.String()),
		zap.Error(err),
	)
	return err
}

func userViews(users []models.User) []UserView {
	views := make([]UserView, 0, len(users))
	for _, u := range users {
		views = append(views, UserView{ID: u.ID, Username: u.Username})
	}
	return views
}
