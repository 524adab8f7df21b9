package store

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrInvalidInput      = errors.New("invalid input")
	ErrBanned            = errors.New("you are banned from this room")
	ErrRoomFull          = errors.New("room is full")
	ErrRoomEnded         = errors.New("room has ended")
	ErrNotHost           = errors.New("only the host can perform this action")
	ErrNotParticipant    = errors.New("join the room before answering")
	ErrInvalidTransition = errors.New("invalid room status transition")
	ErrNoCurrentQuestion = errors.New("no question has been posted")
	ErrQuestionClosed    = errors.New("question is not accepting answers")
	ErrNoFreeCode        = errors.New("could not find a free join code")
)
