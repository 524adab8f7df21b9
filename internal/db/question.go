package db

import "time"

type Question struct {
	ID        uint       `gorm:"primaryKey"`
	RoomID    uint       `gorm:"index;not null"`
	Text      string     `gorm:"size:280;not null"`
	ImageURL  string     `gorm:"size:512;not null;default:''"`
	Position  int        `gorm:"not null;default:0"`
	PostedAt  *time.Time `gorm:"type:timestamptz"`
	ClosedAt  *time.Time `gorm:"type:timestamptz"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`
	Answers   []Answer   `gorm:"constraint:OnDelete:CASCADE"`
}
