package store

import (
	"context"
	"errors"
	"testing"
)

func TestSubmitAnswerUpserts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room, question := env.questioningRoom(t)
	first, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, drawing(t))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if first.DisplayName != "User ada" {
		t.Fatalf("expected participant name, got %q", first.DisplayName)
	}
	if _, err := env.store.SetAnswerCorrect(ctx, first.ID, "host", true); err != nil {
		t.Fatalf("correct: %v", err)
	}
	if _, err := env.store.SetAnswerRevealed(ctx, first.ID, "host", true); err != nil {
		t.Fatalf("reveal: %v", err)
	}

	redraw := "data:image/png;base64,AQID"
	second, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, redraw)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same record, got %d and %d", first.ID, second.ID)
	}
	if second.ImageData != redraw || !second.IsCorrect || !second.IsRevealed {
		t.Fatalf("expected drawing replaced and flags kept, got %#v", second)
	}
	answers, _ := env.store.ListAnswers(ctx, room.ID, question.ID)
	if len(answers) != 1 {
		t.Fatalf("expected one answer, got %d", len(answers))
	}
}

func TestSubmitAnswerRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room, question := env.questioningRoom(t)
	img := drawing(t)

	if _, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected empty drawing rejected, got %v", err)
	}
	if _, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID+100, img); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected stale question rejected, got %v", err)
	}
	if _, err := env.store.SubmitAnswer(ctx, room.ID, identity("stranger"), question.ID, img); !errors.Is(err, ErrNotParticipant) {
		t.Fatalf("expected non participant rejected, got %v", err)
	}
	if err := env.store.KickParticipant(ctx, room.ID, "host", "ada", ""); err != nil {
		t.Fatalf("kick: %v", err)
	}
	if _, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, img); !errors.Is(err, ErrBanned) {
		t.Fatalf("expected banned rejected, got %v", err)
	}
}

func TestSubmitAnswerAfterClose(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room, question := env.questioningRoom(t)
	if _, err := env.store.CloseQuestion(ctx, room.ID, "host"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, drawing(t)); !errors.Is(err, ErrQuestionClosed) {
		t.Fatalf("expected closed question, got %v", err)
	}
}

func TestHostFlagsWorkInAnyStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room, question := env.questioningRoom(t)
	answer, err := env.store.SubmitAnswer(ctx, room.ID, identity("ada"), question.ID, drawing(t))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := env.store.CloseQuestion(ctx, room.ID, "host"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := env.store.NextQuestion(ctx, room.ID, "host"); err != nil {
		t.Fatalf("next: %v", err)
	}
	updated, err := env.store.SetAnswerCorrect(ctx, answer.ID, "host", true)
	if err != nil || !updated.IsCorrect {
		t.Fatalf("expected correct flag in waiting room, got %#v %v", updated, err)
	}
	if _, err := env.store.SetAnswerRevealed(ctx, answer.ID, "ada", true); !errors.Is(err, ErrNotHost) {
		t.Fatalf("expected not host, got %v", err)
	}
}

func TestRevealAllAndRevealedAnswers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	room, question := env.questioningRoom(t)
	if _, err := env.store.JoinRoom(ctx, room.ID, identity("bob")); err != nil {
		t.Fatalf("join: %v", err)
	}
	for _, uid := range []string{"ada", "bob"} {
		if _, err := env.store.SubmitAnswer(ctx, room.ID, identity(uid), question.ID, drawing(t)); err != nil {
			t.Fatalf("submit %s: %v", uid, err)
		}
	}
	_, revealed, err := env.store.RevealedAnswers(ctx, room.ID)
	if err != nil || len(revealed) != 0 {
		t.Fatalf("expected nothing revealed, got %d %v", len(revealed), err)
	}
	changed, err := env.store.RevealAll(ctx, room.ID, "host", question.ID)
	if err != nil || changed != 2 {
		t.Fatalf("expected two reveals, got %d %v", changed, err)
	}
	if changed, _ := env.store.RevealAll(ctx, room.ID, "host", question.ID); changed != 0 {
		t.Fatalf("expected second reveal to change nothing, got %d", changed)
	}
	if _, err := env.store.CloseQuestion(ctx, room.ID, "host"); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := env.store.NextQuestion(ctx, room.ID, "host"); err != nil {
		t.Fatalf("next: %v", err)
	}
	current, revealed, err := env.store.RevealedAnswers(ctx, room.ID)
	if err != nil || current.ID != question.ID || len(revealed) != 2 {
		t.Fatalf("expected last posted question answers, got %d %d %v", current.ID, len(revealed), err)
	}
}
