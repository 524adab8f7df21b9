package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// JoinRoom adds identity to the room. Bans are checked before capacity, and a
// returning participant gets their existing record back untouched.
func (s *Store) JoinRoom(ctx context.Context, roomID uint, identity Identity) (Participant, error) {
	if strings.TrimSpace(identity.UID) == "" {
		return Participant{}, fmt.Errorf("%w: identity is required", ErrInvalidInput)
	}
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		return Participant{}, err
	}
	if room.Status == StatusEnded {
		return Participant{}, ErrRoomEnded
	}
	banned, err := s.IsUserBanned(ctx, roomID, identity.UID)
	if err != nil {
		return Participant{}, err
	}
	if banned {
		log.Info().Uint("room_id", roomID).Str("uid", identity.UID).Msg("banned user rejected")
		return Participant{}, ErrBanned
	}
	existing, err := s.repo.GetParticipant(ctx, roomID, identity.UID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Participant{}, err
	}
	if room.MaxParticipants > 0 {
		count, err := s.repo.CountActiveParticipants(ctx, roomID)
		if err != nil {
			return Participant{}, err
		}
		if count >= room.MaxParticipants {
			return Participant{}, ErrRoomFull
		}
	}
	participant := Participant{
		RoomID:      roomID,
		UID:         identity.UID,
		DisplayName: displayName(identity),
		PhotoURL:    identity.PhotoURL,
		Status:      ParticipantActive,
		JoinedAt:    s.now(),
	}
	if err := s.repo.CreateParticipant(ctx, &participant); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return s.repo.GetParticipant(ctx, roomID, identity.UID)
		}
		return Participant{}, fmt.Errorf("join room: %w", err)
	}
	log.Info().Uint("room_id", roomID).Str("uid", identity.UID).Msg("participant joined")
	s.publish(ctx, participantsTopic(roomID))
	return participant, nil
}

func displayName(identity Identity) string {
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		return name
	}
	if at := strings.Index(identity.Email, "@"); at > 0 {
		return identity.Email[:at]
	}
	return "Player"
}

func (s *Store) LeaveRoom(ctx context.Context, roomID uint, uid string) error {
	if err := s.repo.DeleteParticipant(ctx, roomID, uid); err != nil {
		return err
	}
	log.Info().Uint("room_id", roomID).Str("uid", uid).Msg("participant left")
	s.publish(ctx, participantsTopic(roomID))
	return nil
}

func (s *Store) SetParticipantStatus(ctx context.Context, roomID uint, uid string, status ParticipantStatus) (Participant, error) {
	if !status.Valid() {
		return Participant{}, fmt.Errorf("%w: unknown participant status %q", ErrInvalidInput, status)
	}
	participant, err := s.repo.UpdateParticipantStatus(ctx, roomID, uid, status)
	if err != nil {
		return Participant{}, err
	}
	s.publish(ctx, participantsTopic(roomID))
	return participant, nil
}

func (s *Store) ListParticipants(ctx context.Context, roomID uint) ([]Participant, error) {
	return s.repo.ListParticipants(ctx, roomID)
}

func (s *Store) GetParticipant(ctx context.Context, roomID uint, uid string) (Participant, error) {
	return s.repo.GetParticipant(ctx, roomID, uid)
}

// KickParticipant removes uid from the room and bans them from rejoining.
// The ban is recorded even when uid has already left.
func (s *Store) KickParticipant(ctx context.Context, roomID uint, hostUID, uid, reason string) error {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return err
	}
	if uid == hostUID {
		return fmt.Errorf("%w: the host cannot be kicked", ErrInvalidInput)
	}
	err := s.repo.InTx(ctx, func(repo Repository) error {
		if err := repo.DeleteParticipant(ctx, roomID, uid); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return repo.CreateBan(ctx, &BannedUser{
			RoomID:   roomID,
			UID:      uid,
			BannedBy: hostUID,
			Reason:   strings.TrimSpace(reason),
		})
	})
	if err != nil {
		return err
	}
	log.Info().Uint("room_id", roomID).Str("uid", uid).Msg("participant kicked")
	s.publish(ctx, participantsTopic(roomID), bansTopic(roomID))
	return nil
}

// UnbanUser lifts every ban on uid. Membership is not restored.
func (s *Store) UnbanUser(ctx context.Context, roomID uint, hostUID, uid string) error {
	if _, err := s.hostRoom(ctx, roomID, hostUID); err != nil {
		return err
	}
	removed, err := s.repo.DeleteBans(ctx, roomID, uid)
	if err != nil {
		return err
	}
	log.Info().Uint("room_id", roomID).Str("uid", uid).Int("removed", removed).Msg("user unbanned")
	s.publish(ctx, bansTopic(roomID))
	return nil
}

func (s *Store) IsUserBanned(ctx context.Context, roomID uint, uid string) (bool, error) {
	count, err := s.repo.CountBans(ctx, roomID, uid)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) ListBannedUsers(ctx context.Context, roomID uint) ([]BannedUser, error) {
	return s.repo.ListBans(ctx, roomID)
}
