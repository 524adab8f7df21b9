package db

import "time"

type Room struct {
	ID                uint          `gorm:"primaryKey"`
	HostUID           string        `gorm:"size:128;index;not null"`
	Code              string        `gorm:"size:12;index;not null"`
	Title             string        `gorm:"size:140;not null;default:''"`
	Status            string        `gorm:"size:32;index;not null"`
	CurrentQuestionID *uint         `gorm:"index"`
	MaxParticipants   int           `gorm:"not null;default:0"`
	CreatedAt         time.Time     `gorm:"not null"`
	UpdatedAt         time.Time     `gorm:"not null"`
	Participants      []Participant `gorm:"constraint:OnDelete:CASCADE"`
	BannedUsers       []BannedUser  `gorm:"constraint:OnDelete:CASCADE"`
	Questions         []Question    `gorm:"constraint:OnDelete:CASCADE"`
	Answers           []Answer      `gorm:"constraint:OnDelete:CASCADE"`
}
