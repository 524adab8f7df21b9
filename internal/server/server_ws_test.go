package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"flipquiz/internal/store"

	"github.com/gorilla/websocket"
)

func dialWS(t *testing.T, env *testEnv, path, token string) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(env.ts, path), header)
	if err != nil {
		if resp != nil {
			t.Fatalf("dial %s: status %d: %v", path, resp.StatusCode, err)
		}
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func dialWSStatus(t *testing.T, env *testEnv, path, token string) int {
	t.Helper()
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(env.ts, path), header)
	if err == nil {
		_ = conn.Close()
		return http.StatusSwitchingProtocols
	}
	if resp == nil {
		t.Skipf("skipping test; websocket dial unavailable: %v", err)
	}
	return resp.StatusCode
}

func TestRoomSocketSnapshots(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	ada := env.token(t, "ada")
	roomID := idOf(t, createRoom(t, env, host, nil))

	conn := dialWS(t, env, "/ws/rooms/"+itoaUint(roomID)+"?watch=room,participants", "")
	first := readWSMessage(t, conn, 2*time.Second)
	if first.Topic != topicRoom {
		t.Fatalf("expected room snapshot first, got %#v", first)
	}
	second := readWSMessage(t, conn, 2*time.Second)
	if second.Topic != topicParticipants {
		t.Fatalf("expected participants snapshot, got %#v", second)
	}
	if participants, ok := second.Data.([]any); !ok || len(participants) != 0 {
		t.Fatalf("expected empty participants, got %#v", second.Data)
	}

	expectStatus(t, doAuthRequest(t, env.ts, ada, http.MethodPost, roomPath(roomID, "/join"), nil), http.StatusOK)

	msg := waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool {
		participants, ok := msg.Data.([]any)
		return msg.Topic == topicParticipants && ok && len(participants) == 1
	})
	participant := msg.Data.([]any)[0].(map[string]any)
	if participant["uid"] != "ada" {
		t.Fatalf("unexpected participant %#v", participant)
	}
}

func TestRoomSocketHidesUnrevealedAnswers(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	ada := env.token(t, "ada")
	roomID := idOf(t, createRoom(t, env, host, nil))
	expectStatus(t, doAuthRequest(t, env.ts, ada, http.MethodPost, roomPath(roomID, "/join"), nil), http.StatusOK)
	resp := doAuthRequest(t, env.ts, host, http.MethodPost, roomPath(roomID, "/questions"), map[string]any{"text": "Draw a fish", "post": true})
	expectStatus(t, resp, http.StatusCreated)
	questionID := idOf(t, decodeBody(t, resp))

	resp = doAuthRequest(t, env.ts, ada, http.MethodPut, roomPath(roomID, "/answers"), map[string]any{
		"question_id": questionID,
		"image_data":  testDrawing(t),
		"final":       true,
	})
	expectStatus(t, resp, http.StatusOK)
	answerID := idOf(t, decodeBody(t, resp))

	viewer := dialWS(t, env, "/ws/rooms/"+itoaUint(roomID)+"?watch=answers", "")
	first := waitForWSMessage(t, viewer, 2*time.Second, func(msg wsMessage) bool { return msg.Topic == topicAnswers })
	if answers := first.Data.([]any); len(answers) != 0 {
		t.Fatalf("viewer should not see unrevealed answers, got %d", len(answers))
	}

	expectStatus(t, doAuthRequest(t, env.ts, host, http.MethodPost, answerPath(answerID, "/reveal"), map[string]any{"value": true}), http.StatusOK)
	waitForWSMessage(t, viewer, 2*time.Second, func(msg wsMessage) bool {
		answers, ok := msg.Data.([]any)
		return msg.Topic == topicAnswers && ok && len(answers) == 1
	})
}

func TestRoomSocketBansAreHostOnly(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	ada := env.token(t, "ada")
	roomID := idOf(t, createRoom(t, env, host, nil))
	path := "/ws/rooms/" + itoaUint(roomID) + "?watch=bans"

	if status := dialWSStatus(t, env, path, ""); status != http.StatusForbidden {
		t.Fatalf("expected 403 for anonymous bans watch, got %d", status)
	}
	if status := dialWSStatus(t, env, path, ada); status != http.StatusForbidden {
		t.Fatalf("expected 403 for participant bans watch, got %d", status)
	}
	if status := dialWSStatus(t, env, "/ws/rooms/"+itoaUint(roomID)+"?watch=nope", ""); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown topic, got %d", status)
	}

	conn := dialWS(t, env, path, host)
	msg := readWSMessage(t, conn, 2*time.Second)
	if msg.Topic != topicBans {
		t.Fatalf("expected bans snapshot, got %#v", msg)
	}
}

func TestDrawSocketSavesStrokes(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	ada := env.token(t, "ada")
	roomID := idOf(t, createRoom(t, env, host, nil))
	expectStatus(t, doAuthRequest(t, env.ts, ada, http.MethodPost, roomPath(roomID, "/join"), nil), http.StatusOK)
	resp := doAuthRequest(t, env.ts, host, http.MethodPost, roomPath(roomID, "/questions"), map[string]any{"text": "Draw a tree", "post": true})
	expectStatus(t, resp, http.StatusCreated)
	questionID := idOf(t, decodeBody(t, resp))

	conn := dialWS(t, env, "/ws/rooms/"+itoaUint(roomID)+"/draw", ada)
	reset := waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool { return msg.Type == "reset" })
	data := reset.Data.(map[string]any)
	if data["question_id"] != float64(questionID) || data["status"] != "questioning" {
		t.Fatalf("unexpected reset %#v", data)
	}

	waitFor(t, 2*time.Second, func() bool {
		p, err := env.store.GetParticipant(context.Background(), roomID, "ada")
		return err == nil && p.Status == store.ParticipantActive
	})

	strokes := []drawMessage{
		{Type: "brush", Color: "#ff0000", Width: 4},
		{Type: "begin", X: 5, Y: 5, DisplayW: 60, DisplayH: 40},
		{Type: "move", X: 30, Y: 20, DisplayW: 60, DisplayH: 40},
		{Type: "end"},
	}
	for _, stroke := range strokes {
		if err := conn.WriteJSON(stroke); err != nil {
			t.Fatalf("write stroke: %v", err)
		}
	}
	image := waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool { return msg.Type == "image" })
	if _, ok := image.Data.(string); !ok {
		t.Fatalf("expected data url, got %#v", image.Data)
	}

	if err := conn.WriteJSON(drawMessage{Type: "submit"}); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool {
		answers, err := env.store.ListAnswers(context.Background(), roomID, questionID)
		return err == nil && len(answers) == 1 && answers[0].UID == "ada"
	})

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	bad := waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool { return msg.Type == "error" })
	if bad.Error != "invalid message" {
		t.Fatalf("unexpected error %#v", bad)
	}

	_ = conn.Close()
	waitFor(t, 2*time.Second, func() bool {
		p, err := env.store.GetParticipant(context.Background(), roomID, "ada")
		return err == nil && p.Status == store.ParticipantIdle
	})
}

func TestDrawSocketRequiresParticipant(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	cy := env.token(t, "cy")
	roomID := idOf(t, createRoom(t, env, host, nil))

	if status := dialWSStatus(t, env, "/ws/rooms/"+itoaUint(roomID)+"/draw", cy); status != http.StatusForbidden {
		t.Fatalf("expected 403 for non-participant, got %d", status)
	}
	if status := dialWSStatus(t, env, "/ws/rooms/"+itoaUint(roomID)+"/draw", ""); status != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a session, got %d", status)
	}
}

func TestDrawSocketClosesOnKick(t *testing.T) {
	env := newTestEnv(t)
	host := env.token(t, "host")
	ada := env.token(t, "ada")
	roomID := idOf(t, createRoom(t, env, host, nil))
	expectStatus(t, doAuthRequest(t, env.ts, ada, http.MethodPost, roomPath(roomID, "/join"), nil), http.StatusOK)

	conn := dialWS(t, env, "/ws/rooms/"+itoaUint(roomID)+"/draw", ada)
	waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool { return msg.Type == "reset" })

	expectStatus(t, doAuthRequest(t, env.ts, host, http.MethodPost, roomPath(roomID, "/kick"), map[string]any{"uid": "ada"}), http.StatusNoContent)
	waitForWSMessage(t, conn, 2*time.Second, func(msg wsMessage) bool { return msg.Type == "removed" })
}
