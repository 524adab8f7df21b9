package db

import "time"

type Profile struct {
	UID         string    `gorm:"primaryKey;size:128"`
	Email       string    `gorm:"size:320;not null;default:''"`
	DisplayName string    `gorm:"size:64;not null;default:''"`
	PhotoURL    string    `gorm:"size:512;not null;default:''"`
	AvatarURL   string    `gorm:"size:512;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	LastLoginAt time.Time `gorm:"not null"`
}
