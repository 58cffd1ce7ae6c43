package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Exercise is owned by the user that created it. UserID is never reassigned.
type Exercise struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Difficulty  int       `gorm:"not null;check:difficulty >= 1 AND difficulty <= 5" json:"difficulty"`
	IsPublic    bool      `gorm:"not null;default:false;index" json:"isPublic"`
	UserID      uuid.UUID `gorm:"type:varchar(36);not null;index" json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Owner User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
