package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"flipquiz/internal/blob"
	"flipquiz/internal/dataurl"

	"github.com/rs/zerolog/log"
)

const maxDisplayName = 40

// UpsertProfile mirrors a sign-in into the profile collection. The first
// sign-in creates the profile; later ones only bump LastLoginAt so edits made
// in the app survive.
func (s *Store) UpsertProfile(ctx context.Context, identity Identity) (Profile, error) {
	if strings.TrimSpace(identity.UID) == "" {
		return Profile{}, fmt.Errorf("%w: identity is required", ErrInvalidInput)
	}
	now := s.now()
	profile, err := s.repo.GetProfile(ctx, identity.UID)
	switch {
	case errors.Is(err, ErrNotFound):
		profile = Profile{
			UID:         identity.UID,
			Email:       identity.Email,
			DisplayName: displayName(identity),
			PhotoURL:    identity.PhotoURL,
			CreatedAt:   now,
		}
		log.Info().Str("uid", identity.UID).Msg("profile created")
	case err != nil:
		return Profile{}, err
	}
	profile.LastLoginAt = now
	if err := s.repo.SaveProfile(ctx, &profile); err != nil {
		return Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (s *Store) GetProfile(ctx context.Context, uid string) (Profile, error) {
	return s.repo.GetProfile(ctx, uid)
}

func (s *Store) UpdateProfile(ctx context.Context, uid, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > maxDisplayName {
		return Profile{}, fmt.Errorf("%w: display name must be 1-%d characters", ErrInvalidInput, maxDisplayName)
	}
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	profile.DisplayName = name
	if err := s.repo.SaveProfile(ctx, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}

// SetAvatar uploads image as the user's avatar and records its URL.
func (s *Store) SetAvatar(ctx context.Context, uid, contentType string, image []byte) (Profile, error) {
	if len(image) == 0 {
		return Profile{}, fmt.Errorf("%w: %v", ErrInvalidInput, dataurl.ErrEmpty)
	}
	profile, err := s.repo.GetProfile(ctx, uid)
	if err != nil {
		return Profile{}, err
	}
	if contentType == "" {
		contentType = "image/png"
	}
	url, err := s.blobs.Upload(ctx, blob.AvatarPath(uid, dataurl.Extension(contentType)), contentType, image)
	if err != nil {
		return Profile{}, fmt.Errorf("upload avatar: %w", err)
	}
	profile.AvatarURL = url
	if err := s.repo.SaveProfile(ctx, &profile); err != nil {
		return Profile{}, err
	}
	return profile, nil
}
