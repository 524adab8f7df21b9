package store

import (
	"context"
	"sync"
	"sync/atomic"
)

// subscribe delivers load's result now and after every change on topic until
// the returned disposer runs or ctx is done. Deliveries never overlap and each
// one re-reads the full state.
func subscribe[T any](ctx context.Context, hub Hub, topic string, load func(ctx context.Context) (T, error), fn func(T, error)) func() {
	var (
		mu       sync.Mutex
		disposed atomic.Bool
	)
	deliver := func() {
		mu.Lock()
		defer mu.Unlock()
		if disposed.Load() {
			return
		}
		value, err := load(ctx)
		if ctx.Err() != nil || disposed.Load() {
			return
		}
		fn(value, err)
	}

	unsubscribe := hub.Subscribe(topic, deliver)
	var once sync.Once
	dispose := func() {
		once.Do(func() {
			disposed.Store(true)
			unsubscribe()
		})
	}
	stop := context.AfterFunc(ctx, dispose)
	deliver()
	return func() {
		stop()
		dispose()
	}
}

func (s *Store) SubscribeRoom(ctx context.Context, roomID uint, fn func(Room, error)) func() {
	return subscribe(ctx, s.hub, roomTopic(roomID), func(ctx context.Context) (Room, error) {
		return s.repo.GetRoom(ctx, roomID)
	}, fn)
}

func (s *Store) SubscribeParticipants(ctx context.Context, roomID uint, fn func([]Participant, error)) func() {
	return subscribe(ctx, s.hub, participantsTopic(roomID), func(ctx context.Context) ([]Participant, error) {
		return s.repo.ListParticipants(ctx, roomID)
	}, fn)
}

// SubscribeAnswers follows the answers to one question of the room.
func (s *Store) SubscribeAnswers(ctx context.Context, roomID, questionID uint, fn func([]Answer, error)) func() {
	return subscribe(ctx, s.hub, answersTopic(roomID), func(ctx context.Context) ([]Answer, error) {
		return s.repo.ListAnswers(ctx, roomID, questionID)
	}, fn)
}

func (s *Store) SubscribeQuestions(ctx context.Context, roomID uint, fn func([]Question, error)) func() {
	return subscribe(ctx, s.hub, questionsTopic(roomID), func(ctx context.Context) ([]Question, error) {
		return s.repo.ListQuestions(ctx, roomID)
	}, fn)
}

func (s *Store) SubscribeBans(ctx context.Context, roomID uint, fn func([]BannedUser, error)) func() {
	return subscribe(ctx, s.hub, bansTopic(roomID), func(ctx context.Context) ([]BannedUser, error) {
		return s.repo.ListBans(ctx, roomID)
	}, fn)
}

func (s *Store) SubscribeHistory(ctx context.Context, roomID uint, fn func([]GameResult, error)) func() {
	return subscribe(ctx, s.hub, historyTopic(roomID), func(ctx context.Context) ([]GameResult, error) {
		return s.repo.ListGameResults(ctx, roomID)
	}, fn)
}
