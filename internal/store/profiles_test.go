package store

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestUpsertProfileKeepsEdits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	created, err := env.store.UpsertProfile(ctx, Identity{UID: "u1", Email: "u1@example.com", DisplayName: "Original"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if created.DisplayName != "Original" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected profile %#v", created)
	}
	if _, err := env.store.UpdateProfile(ctx, "u1", "Edited"); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := env.store.UpsertProfile(ctx, Identity{UID: "u1", Email: "u1@example.com", DisplayName: "Provider Name"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if again.DisplayName != "Edited" {
		t.Fatalf("expected edit kept, got %q", again.DisplayName)
	}
	if !again.LastLoginAt.After(created.LastLoginAt) || !again.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("expected only last login to move, got %#v", again)
	}
}

func TestUpdateProfileValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.store.UpdateProfile(ctx, "missing", "Name"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := env.store.UpsertProfile(ctx, identity("u2")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := env.store.UpdateProfile(ctx, "u2", strings.Repeat("x", 41)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected long name rejected, got %v", err)
	}
}

func TestSetAvatar(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.store.UpsertProfile(ctx, identity("u/3")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	profile, err := env.store.SetAvatar(ctx, "u/3", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("avatar: %v", err)
	}
	if !strings.HasPrefix(profile.AvatarURL, "/blobs/avatars/u_3/") || !strings.HasSuffix(profile.AvatarURL, ".png") {
		t.Fatalf("unexpected avatar url %q", profile.AvatarURL)
	}
	if env.blobs.Len() != 1 {
		t.Fatalf("expected one blob, got %d", env.blobs.Len())
	}
}
