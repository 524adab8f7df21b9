package store

import "time"

type RoomStatus string

const (
	StatusWaiting     RoomStatus = "waiting"
	StatusQuestioning RoomStatus = "questioning"
	StatusOpen        RoomStatus = "open"
	StatusEnded       RoomStatus = "ended"
)

type ParticipantStatus string

// Capacity counts active and idle participants; left is kept for clients
// that still send it.
const (
	ParticipantActive ParticipantStatus = "active"
	ParticipantIdle   ParticipantStatus = "idle"
	ParticipantLeft   ParticipantStatus = "left"
)

func (s ParticipantStatus) Valid() bool {
	switch s {
	case ParticipantActive, ParticipantIdle, ParticipantLeft:
		return true
	}
	return false
}

// Identity is a signed-in user as reported by the identity provider.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
}

type Room struct {
	ID                uint       `json:"id"`
	HostUID           string     `json:"host_uid"`
	Code              string     `json:"code"`
	Title             string     `json:"title"`
	Status            RoomStatus `json:"status"`
	CurrentQuestionID *uint      `json:"current_question_id"`
	MaxParticipants   int        `json:"max_participants"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type Participant struct {
	ID          uint              `json:"id"`
	RoomID      uint              `json:"room_id"`
	UID         string            `json:"uid"`
	DisplayName string            `json:"display_name"`
	PhotoURL    string            `json:"photo_url,omitempty"`
	Status      ParticipantStatus `json:"status"`
	JoinedAt    time.Time         `json:"joined_at"`
}

type BannedUser struct {
	ID        uint      `json:"id"`
	RoomID    uint      `json:"room_id"`
	UID       string    `json:"uid"`
	BannedBy  string    `json:"banned_by"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Question struct {
	ID        uint       `json:"id"`
	RoomID    uint       `json:"room_id"`
	Text      string     `json:"text"`
	ImageURL  string     `json:"image_url,omitempty"`
	Position  int        `json:"position"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type Answer struct {
	ID          uint      `json:"id"`
	RoomID      uint      `json:"room_id"`
	QuestionID  uint      `json:"question_id"`
	UID         string    `json:"uid"`
	DisplayName string    `json:"display_name"`
	ImageData   string    `json:"image_data"`
	IsCorrect   bool      `json:"is_correct"`
	IsRevealed  bool      `json:"is_revealed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ResultAnswer struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url"`
	IsCorrect   bool   `json:"is_correct"`
}

// GameResult is the permanent record of one closed question.
type GameResult struct {
	ID               uint           `json:"id"`
	RoomID           uint           `json:"room_id"`
	RoomCode         string         `json:"room_code"`
	HostUID          string         `json:"host_uid"`
	QuestionID       uint           `json:"question_id"`
	QuestionText     string         `json:"question_text"`
	QuestionImageURL string         `json:"question_image_url,omitempty"`
	Answers          []ResultAnswer `json:"answers"`
	ClosedAt         time.Time      `json:"closed_at"`
}

type Profile struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}
