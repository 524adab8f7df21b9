package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"flipquiz/internal/blob"
	"flipquiz/internal/realtime"
)

// Hub is the change feed the store publishes to and subscriptions listen on.
type Hub interface {
	Publish(ctx context.Context, topic string)
	Subscribe(topic string, fn func()) func()
}

type Options struct {
	DefaultMaxParticipants int
	MaxParticipantsLimit   int
}

// Store applies the room rules on top of a Repository and announces every
// change on the hub.
type Store struct {
	repo    Repository
	blobs   blob.Store
	hub     Hub
	opts    Options
	now     func() time.Time
	newCode func() string
}

func New(repo Repository, blobs blob.Store, hub Hub, opts Options) *Store {
	if hub == nil {
		hub = realtime.NewHub()
	}
	if blobs == nil {
		blobs = blob.NewMemory("/blobs")
	}
	if opts.DefaultMaxParticipants <= 0 {
		opts.DefaultMaxParticipants = 30
	}
	if opts.MaxParticipantsLimit <= 0 {
		opts.MaxParticipantsLimit = 100
	}
	return &Store{
		repo:    repo,
		blobs:   blobs,
		hub:     hub,
		opts:    opts,
		now:     timeNowUTC,
		newCode: newJoinCode,
	}
}

func (s *Store) Hub() Hub {
	return s.hub
}

func roomTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d", roomID)
}

func participantsTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d/participants", roomID)
}

func answersTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d/answers", roomID)
}

func questionsTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d/questions", roomID)
}

func bansTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d/bans", roomID)
}

func historyTopic(roomID uint) string {
	return fmt.Sprintf("rooms/%d/game-results", roomID)
}

func (s *Store) publish(ctx context.Context, topics ...string) {
	for _, topic := range topics {
		s.hub.Publish(ctx, topic)
	}
}

func newJoinCode() string {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "AAAAAA"
	}
	for i := range buf {
		buf[i] = alphabet[int(buf[i])%len(alphabet)]
	}
	return string(buf)
}
