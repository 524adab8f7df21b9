package db

import (
	"time"

	"gorm.io/datatypes"
)

// GameResult outlives its room, so it carries no foreign keys.
type GameResult struct {
	ID               uint           `gorm:"primaryKey"`
	RoomID           uint           `gorm:"index;not null"`
	RoomCode         string         `gorm:"size:12;not null"`
	HostUID          string         `gorm:"size:128;index;not null"`
	QuestionID       uint           `gorm:"index;not null"`
	QuestionText     string         `gorm:"size:280;not null"`
	QuestionImageURL string         `gorm:"size:512;not null;default:''"`
	Answers          datatypes.JSON `gorm:"type:jsonb;not null"`
	ClosedAt         time.Time      `gorm:"index;not null"`
	CreatedAt        time.Time      `gorm:"not null"`
}
