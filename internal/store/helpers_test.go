package store

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"flipquiz/internal/blob"
	"flipquiz/internal/dataurl"
	"flipquiz/internal/realtime"
)

type testEnv struct {
	store *Store
	repo  *MemoryRepository
	blobs *blob.Memory
	hub   *realtime.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := NewMemoryRepository()
	blobs := blob.NewMemory("/blobs")
	hub := realtime.NewHub()
	s := New(repo, blobs, hub, Options{DefaultMaxParticipants: 3, MaxParticipantsLimit: 10})
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return &testEnv{store: s, repo: repo, blobs: blobs, hub: hub}
}

func (e *testEnv) room(t *testing.T) Room {
	t.Helper()
	room, err := e.store.CreateRoom(context.Background(), "host", "Quiz night", 0)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room
}

// questioningRoom returns a room with one joined player and a posted question.
func (e *testEnv) questioningRoom(t *testing.T) (Room, Question) {
	t.Helper()
	ctx := context.Background()
	room := e.room(t)
	if _, err := e.store.JoinRoom(ctx, room.ID, identity("ada")); err != nil {
		t.Fatalf("join: %v", err)
	}
	question, err := e.store.AskQuestion(ctx, room.ID, "host", "Draw a cat", nil)
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	room, err = e.store.GetRoom(ctx, room.ID)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	return room, question
}

func identity(uid string) Identity {
	return Identity{UID: uid, DisplayName: "User " + uid, Email: uid + "@example.com"}
}

func drawing(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.Black)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return dataurl.EncodePNG(buf.Bytes())
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}
