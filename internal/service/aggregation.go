package service

import (
	"math"
	"time"

	"github.com/Baaaki/exercise-catalog/internal/repository"
	"github.com/google/uuid"
)

// OwnerView identifies the owner of an exercise
type OwnerView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// UserView is the public shape of a user in listings
type UserView struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

// ExerciseView is an exercise as returned to clients, with derived fields.
// FavoriteCount and SaveCount count all users, not only the viewer.
// AverageRating is nil when nobody has rated the exercise.
type ExerciseView struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Difficulty    int       `json:"difficulty"`
	IsPublic      bool      `json:"isPublic"`
	Owner         OwnerView `json:"owner"`
	FavoriteCount int64     `json:"favoriteCount"`
	SaveCount     int64     `json:"saveCount"`
	RatingCount   int64     `json:"ratingCount"`
	AverageRating *float64  `json:"averageRating"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CollectionItem is one exercise in a user's collections with that user's own flags
type CollectionItem struct {
	Exercise    ExerciseView `json:"exercise"`
	IsFavorited bool         `json:"isFavorited"`
	IsSaved     bool         `json:"isSaved"`
}

// roundRating rounds to one decimal place
func roundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}

func resolveSummary(row repository.ExerciseSummary) ExerciseView {
	view := ExerciseView{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Difficulty:  row.Difficulty,
		IsPublic:    row.IsPublic,
		Owner: OwnerView{
			ID:       row.UserID,
			Username: row.OwnerUsername,
		},
		FavoriteCount: row.FavoriteCount,
		SaveCount:     row.SaveCount,
		RatingCount:   row.RatingCount,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	if row.RatingCount > 0 && row.RatingAverage.Valid {
		avg := roundRating(row.RatingAverage.Float64)
		view.AverageRating = &avg
	}

	return view
}

func resolveSummaries(rows []repository.ExerciseSummary) []ExerciseView {
	views := make([]ExerciseView, 0, len(rows))
	for _, row := range rows {
		views = append(views, resolveSummary(row))
	}
	return views
}

// mergeCollections unions favorited and saved ids by exercise identity.
// Favorites come first in favorite order, then saves not already present.
// Ids missing from summaries (deleted, or no longer visible) are skipped.
func mergeCollections(favorited, saved []uint, summaries map[uint]repository.ExerciseSummary) []CollectionItem {
	items := make([]CollectionItem, 0, len(favorited)+len(saved))
	position := make(map[uint]int, len(favorited)+len(saved))

	add := func(id uint, isFavorite bool) {
		summary, ok := summaries[id]
		if !ok {
			return
		}
		i, seen := position[id]
		if !seen {
			i = len(items)
			position[id] = i
			items = append(items, CollectionItem{Exercise: resolveSummary(summary)})
		}
		if isFavorite {
			items[i].IsFavorited = true
		} else {
			items[i].IsSaved = true
		}
	}

	for _, id := range favorited {
		add(id, true)
	}
	for _, id := range saved {
		add(id, false)
	}

	return items
}
