package blob

import (
	"context"
	"errors"
	"strings"
	"testing"

	"flipquiz/internal/config"
)

func TestMemoryUpload(t *testing.T) {
	store := NewMemory("/blobs/")
	url, err := store.Upload(context.Background(), "history/1/2/ada.png", "image/png", []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "/blobs/history/1/2/ada.png" {
		t.Fatalf("unexpected url %q", url)
	}
	obj, ok := store.Get("history/1/2/ada.png")
	if !ok || obj.ContentType != "image/png" || len(obj.Data) != 3 {
		t.Fatalf("unexpected object %#v", obj)
	}
	if _, err := store.Upload(context.Background(), "empty.png", "image/png", nil); err == nil {
		t.Fatalf("expected empty upload to fail")
	}
}

func TestMemoryFailOn(t *testing.T) {
	store := NewMemory("")
	store.FailOn(func(path string) error {
		if strings.HasPrefix(path, "history/") {
			return errors.New("storage offline")
		}
		return nil
	})
	if _, err := store.Upload(context.Background(), "history/1/1/x.png", "image/png", []byte{1}); err == nil {
		t.Fatalf("expected failure")
	}
	if _, err := store.Upload(context.Background(), "avatars/x.png", "image/png", []byte{1}); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}

func TestPaths(t *testing.T) {
	if got := HistoryImagePath(3, 9, "google|12/ab"); got != "history/3/9/google_12_ab.png" {
		t.Fatalf("unexpected history path %q", got)
	}
	if got := QuestionImagePath(4, ".jpg"); !strings.HasPrefix(got, "questions/4/") || !strings.HasSuffix(got, ".jpg") {
		t.Fatalf("unexpected question path %q", got)
	}
	if got := AvatarPath("", ".png"); !strings.HasPrefix(got, "avatars/_/") {
		t.Fatalf("unexpected avatar path %q", got)
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.BlobDriver = "floppy"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	cfg.BlobDriver = "supabase"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatalf("expected error for missing supabase settings")
	}
	cfg.BlobDriver = "memory"
	if _, err := New(context.Background(), cfg); err != nil {
		t.Fatalf("memory driver: %v", err)
	}
}
