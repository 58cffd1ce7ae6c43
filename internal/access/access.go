// Package access decides who may see and change an exercise.
//
// Viewing is allowed for public exercises and for the owner. Changing or deleting is allowed
// for the owner only, whatever the visibility. uuid.Nil stands for an anonymous caller and
// never owns anything.
package access

import (
	"github.com/Baaaki/exercise-catalog/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Anonymous is the identity of an unauthenticated caller
var Anonymous = uuid.Nil

type Action int

const (
	ActionView Action = iota
	ActionMutate
)

type Decision string

const (
	ViewAllowed   Decision = "view-allowed"
	ViewDenied    Decision = "view-denied"
	MutateAllowed Decision = "mutate-allowed"
	MutateDenied  Decision = "mutate-denied"
)

// Allowed reports whether d grants the action it was computed for
func (d Decision) Allowed() bool {
	return d == ViewAllowed || d == MutateAllowed
}

func isOwner(viewer uuid.UUID, ex *models.Exercise) bool {
	return viewer != Anonymous && ex.UserID == viewer
}

func CanView(viewer uuid.UUID, ex *models.Exercise) bool {
	return ex.IsPublic || isOwner(viewer, ex)
}

func CanMutate(viewer uuid.UUID, ex *models.Exercise) bool {
	return isOwner(viewer, ex)
}

// Decide evaluates action for viewer against ex
func Decide(action Action, viewer uuid.UUID, ex *models.Exercise) Decision {
	switch action {
	case ActionMutate:
		if CanMutate(viewer, ex) {
			return MutateAllowed
		}
		return MutateDenied
	default:
		if CanView(viewer, ex) {
			return ViewAllowed
		}
		return ViewDenied
	}
}

// PublicOnly restricts an exercises query to public rows
func PublicOnly() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("exercises.is_public = ?", true)
	}
}

// VisibleTo restricts an exercises query to public rows and rows owned by viewer
func VisibleTo(viewer uuid.UUID) func(*gorm.DB) *gorm.DB {
	if viewer == Anonymous {
		return PublicOnly()
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(exercises.is_public = ? OR exercises.user_id = ?)", true, viewer)
	}
}
