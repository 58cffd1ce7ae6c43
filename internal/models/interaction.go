package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinScore = 1
	MaxScore = 5
)

// Favorite marks an exercise the user likes. At most one row per (user, exercise).
type Favorite struct {
	UserID     uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	ExerciseID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Exercise Exercise `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE"`
}

// Save bookmarks an exercise for later, independent of Favorite.
type Save struct {
	UserID     uuid.UUID `gorm:"type:varchar(36);primaryKey"`
	ExerciseID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Exercise Exercise `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE"`
}

// Rating holds one score per (user, exercise); rating again overwrites it.
type Rating struct {
	UserID     uuid.UUID `gorm:"type:varchar(36);primaryKey" json:"userId"`
	ExerciseID uint      `gorm:"primaryKey;autoIncrement:false;index" json:"exerciseId"`
	Score      int       `gorm:"not null;check:score >= 1 AND score <= 5" json:"score"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	User     User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Exercise Exercise `gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE" json:"-"`
}

// AllModels lists every table in migration order
func AllModels() []interface{} {
	return []interface{}{&User{}, &Exercise{}, &Favorite{}, &Save{}, &Rating{}}
}
