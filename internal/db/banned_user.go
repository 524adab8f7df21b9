package db

import "time"

// BannedUser rows are not unique per (room, uid); unban removes every match.
type BannedUser struct {
	ID        uint      `gorm:"primaryKey"`
	RoomID    uint      `gorm:"index:idx_banned_users_room_uid;not null"`
	UID       string    `gorm:"size:128;index:idx_banned_users_room_uid;not null"`
	BannedBy  string    `gorm:"size:128;not null"`
	Reason    string    `gorm:"size:280;not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}
