package store

import "context"

// Repository is the persistence boundary for every collection. Lookups that
// find nothing return ErrNotFound; inserts that hit a uniqueness rule return
// ErrDuplicate.
type Repository interface {
	CreateRoom(ctx context.Context, room *Room) error
	GetRoom(ctx context.Context, id uint) (Room, error)
	FindActiveRoomByCode(ctx context.Context, code string) (Room, error)
	ListRoomsByHost(ctx context.Context, hostUID string) ([]Room, error)
	UpdateRoom(ctx context.Context, id uint, update func(room *Room) error) (Room, error)
	DeleteRoom(ctx context.Context, id uint) error

	CreateParticipant(ctx context.Context, participant *Participant) error
	GetParticipant(ctx context.Context, roomID uint, uid string) (Participant, error)
	ListParticipants(ctx context.Context, roomID uint) ([]Participant, error)
	CountActiveParticipants(ctx context.Context, roomID uint) (int, error)
	UpdateParticipantStatus(ctx context.Context, roomID uint, uid string, status ParticipantStatus) (Participant, error)
	DeleteParticipant(ctx context.Context, roomID uint, uid string) error

	CreateBan(ctx context.Context, ban *BannedUser) error
	CountBans(ctx context.Context, roomID uint, uid string) (int, error)
	ListBans(ctx context.Context, roomID uint) ([]BannedUser, error)
	DeleteBans(ctx context.Context, roomID uint, uid string) (int, error)

	CreateQuestion(ctx context.Context, question *Question) error
	GetQuestion(ctx context.Context, id uint) (Question, error)
	ListQuestions(ctx context.Context, roomID uint) ([]Question, error)
	UpdateQuestion(ctx context.Context, id uint, update func(question *Question) error) (Question, error)

	// UpsertAnswer inserts or replaces the drawing for (question, uid). The
	// correctness and reveal flags of an existing answer are preserved.
	UpsertAnswer(ctx context.Context, answer *Answer) error
	GetAnswer(ctx context.Context, id uint) (Answer, error)
	ListAnswers(ctx context.Context, roomID, questionID uint) ([]Answer, error)
	UpdateAnswer(ctx context.Context, id uint, update func(answer *Answer) error) (Answer, error)

	CreateGameResult(ctx context.Context, result *GameResult) error
	GetGameResult(ctx context.Context, id uint) (GameResult, error)
	ListGameResults(ctx context.Context, roomID uint) ([]GameResult, error)
	ListGameResultsByHost(ctx context.Context, hostUID string) ([]GameResult, error)

	GetProfile(ctx context.Context, uid string) (Profile, error)
	SaveProfile(ctx context.Context, profile *Profile) error

	// InTx runs fn against a repository whose writes commit together.
	InTx(ctx context.Context, fn func(repo Repository) error) error
}
