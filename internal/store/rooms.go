package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

const codeAttempts = 5

func (s *Store) CreateRoom(ctx context.Context, hostUID, title string, maxParticipants int) (Room, error) {
	hostUID = strings.TrimSpace(hostUID)
	if hostUID == "" {
		return Room{}, fmt.Errorf("%w: host is required", ErrInvalidInput)
	}
	limit, err := s.participantLimit(maxParticipants)
	if err != nil {
		return Room{}, err
	}
	code, err := s.freeCode(ctx)
	if err != nil {
		return Room{}, err
	}
	room := Room{
		HostUID:         hostUID,
		Code:            code,
		Title:           strings.TrimSpace(title),
		Status:          StatusWaiting,
		MaxParticipants: limit,
	}
	if err := s.repo.CreateRoom(ctx, &room); err != nil {
		return Room{}, fmt.Errorf("create room: %w", err)
	}
	log.Info().Uint("room_id", room.ID).Str("join_code", room.Code).Str("uid", hostUID).Msg("room created")
	s.publish(ctx, roomTopic(room.ID))
	return room, nil
}

func (s *Store) participantLimit(requested int) (int, error) {
	if requested == 0 {
		return s.opts.DefaultMaxParticipants, nil
	}
	if requested < 0 || requested > s.opts.MaxParticipantsLimit {
		return 0, fmt.Errorf("%w: max participants must be between 1 and %d", ErrInvalidInput, s.opts.MaxParticipantsLimit)
	}
	return requested, nil
}

// freeCode draws join codes until one is not held by a live room.
func (s *Store) freeCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < codeAttempts; attempt++ {
		code := s.newCode()
		_, err := s.repo.FindActiveRoomByCode(ctx, code)
		if errors.Is(err, ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check join code: %w", err)
		}
	}
	log.Warn().Int("attempts", codeAttempts).Msg("join codes still in use after retries")
	return "", ErrNoFreeCode
}

func (s *Store) GetRoom(ctx context.Context, roomID uint) (Room, error) {
	return s.repo.GetRoom(ctx, roomID)
}

// FindRoomByCode resolves a join code to the newest room that has not ended.
func (s *Store) FindRoomByCode(ctx context.Context, code string) (Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Room{}, ErrNotFound
	}
	return s.repo.FindActiveRoomByCode(ctx, code)
}

func (s *Store) ListRoomsByHost(ctx context.Context, hostUID string) ([]Room, error) {
	return s.repo.ListRoomsByHost(ctx, hostUID)
}

// hostRoom loads a room and checks that uid owns it.
func (s *Store) hostRoom(ctx context.Context, roomID uint, uid string) (Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return Room{}, err
	}
	if room.HostUID != uid {
		return Room{}, ErrNotHost
	}
	return room, nil
}

func (s *Store) UpdateRoomSettings(ctx context.Context, roomID uint, hostUID string, maxParticipants int, title *string) (Room, error) {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return Room{}, err
	}
	var limit int
	if maxParticipants != 0 {
		var err error
		if limit, err = s.participantLimit(maxParticipants); err != nil {
			return Room{}, err
		}
	}
	room, err := s.repo.UpdateRoom(ctx, roomID, func(room *Room) error {
		if limit > 0 {
			room.MaxParticipants = limit
		}
		if title != nil {
			room.Title = strings.TrimSpace(*title)
		}
		return nil
	})
	if err != nil {
		return Room{}, err
	}
	s.publish(ctx, roomTopic(roomID))
	return room, nil
}

// transition moves the room to next if the status machine allows it. The
// extra mutation runs inside the same update.
func (s *Store) transition(ctx context.Context, repo Repository, roomID uint, next RoomStatus, mutate func(room *Room) error) (Room, error) {
	return repo.UpdateRoom(ctx, roomID, func(room *Room) error {
		if !CanTransition(room.Status, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, room.Status, next)
		}
		room.Status = next
		if mutate != nil {
			return mutate(room)
		}
		return nil
	})
}

func (s *Store) EndRoom(ctx context.Context, roomID uint, hostUID string) (Room, error) {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return Room{}, err
	}
	room, err := s.transition(ctx, s.repo, roomID, StatusEnded, nil)
	if err != nil {
		return Room{}, err
	}
	log.Info().Uint("room_id", roomID).Msg("room ended")
	s.publish(ctx, roomTopic(roomID))
	return room, nil
}

// DeleteRoom removes the room with its members, bans, questions and answers.
// History snapshots are kept.
func (s *Store) DeleteRoom(ctx context.Context, roomID uint, hostUID string) error {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return err
	}
	if err := s.repo.DeleteRoom(ctx, roomID); err != nil {
		return err
	}
	log.Info().Uint("room_id", roomID).Msg("room deleted")
	s.publish(ctx,
		roomTopic(roomID),
		participantsTopic(roomID),
		bansTopic(roomID),
		questionsTopic(roomID),
		answersTopic(roomID),
	)
	return nil
}
