package db

import "time"

type Answer struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null"`
	QuestionID  uint      `gorm:"index;not null;uniqueIndex:idx_answers_question_uid"`
	UID         string    `gorm:"size:128;not null;uniqueIndex:idx_answers_question_uid"`
	DisplayName string    `gorm:"size:64;not null;default:''"`
	ImageData   string    `gorm:"type:text;not null;default:''"`
	IsCorrect   bool      `gorm:"not null;default:false"`
	IsRevealed  bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
