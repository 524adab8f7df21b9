package db

import "time"

type Participant struct {
	ID          uint      `gorm:"primaryKey"`
	RoomID      uint      `gorm:"index;not null;uniqueIndex:idx_participants_room_uid"`
	UID         string    `gorm:"size:128;not null;uniqueIndex:idx_participants_room_uid"`
	DisplayName string    `gorm:"size:64;not null;default:''"`
	PhotoURL    string    `gorm:"size:512;not null;default:''"`
	Status      string    `gorm:"size:16;not null"`
	JoinedAt    time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}
