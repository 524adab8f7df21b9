package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"flipquiz/internal/store"
)

type recordingSaver struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (r *recordingSaver) save(ctx context.Context, roomID uint, d draft) (store.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return store.Answer{}, r.err
	}
	r.saved = append(r.saved, d.image)
	return store.Answer{RoomID: roomID, UID: d.identity.UID, QuestionID: d.questionID, ImageData: d.image}, nil
}

func (r *recordingSaver) images() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saved...)
}

func testDraft(uid, image string) draft {
	return draft{identity: store.Identity{UID: uid}, questionID: 1, image: image}
}

func TestAutosaverSavesFirstDraftImmediately(t *testing.T) {
	rec := &recordingSaver{}
	saver := newAutosaver(time.Hour, rec.save)

	answer, saved, err := saver.Submit(context.Background(), 1, testDraft("ada", "one"), false)
	if err != nil || !saved {
		t.Fatalf("expected immediate save, got saved=%v err=%v", saved, err)
	}
	if answer.ImageData != "one" {
		t.Fatalf("unexpected answer %#v", answer)
	}

	// Another participant has a window of their own.
	if _, saved, _ := saver.Submit(context.Background(), 1, testDraft("bob", "two"), false); !saved {
		t.Fatalf("expected bob's draft saved")
	}
}

func TestAutosaverQueuesInsideWindow(t *testing.T) {
	rec := &recordingSaver{}
	saver := newAutosaver(time.Hour, rec.save)
	ctx := context.Background()

	if _, saved, _ := saver.Submit(ctx, 1, testDraft("ada", "one"), false); !saved {
		t.Fatalf("expected first draft saved")
	}
	if _, saved, _ := saver.Submit(ctx, 1, testDraft("ada", "two"), false); saved {
		t.Fatalf("expected second draft queued")
	}
	if !saver.Pending(1, "ada") {
		t.Fatalf("expected pending draft")
	}
	if got := rec.images(); len(got) != 1 {
		t.Fatalf("expected one save, got %v", got)
	}
	saver.Drop(1, "ada")
}

func TestAutosaverWritesLastDraftWhenWindowCloses(t *testing.T) {
	rec := &recordingSaver{}
	saver := newAutosaver(40*time.Millisecond, rec.save)
	ctx := context.Background()

	saver.Submit(ctx, 1, testDraft("ada", "one"), false)
	saver.Submit(ctx, 1, testDraft("ada", "two"), false)
	saver.Submit(ctx, 1, testDraft("ada", "three"), false)

	waitFor(t, 2*time.Second, func() bool { return len(rec.images()) == 2 })
	got := rec.images()
	if got[0] != "one" || got[1] != "three" {
		t.Fatalf("expected trailing save of the last draft, got %v", got)
	}
	if saver.Pending(1, "ada") {
		t.Fatalf("expected no pending draft after flush")
	}
}

func TestAutosaverFinalBypassesWindow(t *testing.T) {
	rec := &recordingSaver{}
	saver := newAutosaver(time.Hour, rec.save)
	ctx := context.Background()

	saver.Submit(ctx, 1, testDraft("ada", "one"), false)
	saver.Submit(ctx, 1, testDraft("ada", "two"), false)
	answer, saved, err := saver.Submit(ctx, 1, testDraft("ada", "final"), true)
	if err != nil || !saved || answer.ImageData != "final" {
		t.Fatalf("expected final save, got %#v saved=%v err=%v", answer, saved, err)
	}
	if saver.Pending(1, "ada") {
		t.Fatalf("final submission should discard the pending draft")
	}

	// A flush after the final save must not resurrect the older draft.
	saver.Flush(1, "ada")
	if got := rec.images(); len(got) != 2 || got[1] != "final" {
		t.Fatalf("unexpected saves %v", got)
	}
}

func TestAutosaverFlushAndDrop(t *testing.T) {
	rec := &recordingSaver{}
	saver := newAutosaver(time.Hour, rec.save)
	ctx := context.Background()

	saver.Submit(ctx, 1, testDraft("ada", "one"), false)
	saver.Submit(ctx, 1, testDraft("ada", "two"), false)
	saver.Submit(ctx, 1, testDraft("bob", "b1"), false)
	saver.Submit(ctx, 1, testDraft("bob", "b2"), false)
	saver.Submit(ctx, 2, testDraft("cy", "c1"), false)
	saver.Submit(ctx, 2, testDraft("cy", "c2"), false)

	saver.Flush(1, "ada")
	if got := rec.images(); got[len(got)-1] != "two" {
		t.Fatalf("expected ada's draft flushed, got %v", got)
	}

	saver.Drop(1, "bob")
	if saver.Pending(1, "bob") {
		t.Fatalf("expected bob's draft dropped")
	}

	saver.FlushRoom(2)
	got := rec.images()
	if got[len(got)-1] != "c2" {
		t.Fatalf("expected room 2 flushed, got %v", got)
	}
	for _, image := range got {
		if image == "b2" {
			t.Fatalf("dropped draft was saved: %v", got)
		}
	}
}

func TestAutosaverReportsSaveErrors(t *testing.T) {
	rec := &recordingSaver{err: store.ErrQuestionClosed}
	saver := newAutosaver(time.Hour, rec.save)

	_, saved, err := saver.Submit(context.Background(), 1, testDraft("ada", "one"), true)
	if saved || !errors.Is(err, store.ErrQuestionClosed) {
		t.Fatalf("expected question closed error, got saved=%v err=%v", saved, err)
	}
}
