package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	topicRoom         = "room"
	topicParticipants = "participants"
	topicAnswers      = "answers"
	topicQuestions    = "questions"
	topicBans         = "bans"
	topicHistory      = "history"

	wsWriteTimeout = 10 * time.Second
)

var watchTopics = []string{topicRoom, topicParticipants, topicAnswers, topicQuestions, topicBans, topicHistory}

type wsMessage struct {
	Topic string `json:"topic,omitempty"`
	Type  string `json:"type,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsClient serializes writes to one connection.
type wsClient struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	closed bool
}

func newWSClient(conn *websocket.Conn) *wsClient {
	return &wsClient{conn: conn}
}

func (w *wsClient) Send(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		w.closed = true
		_ = w.conn.Close()
	}
}

func (w *wsClient) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	_ = w.conn.Close()
}

func publishTo[T any](client *wsClient, topic string) func(T, error) {
	return func(value T, err error) {
		if err != nil {
			client.Send(wsMessage{Topic: topic, Error: err.Error()})
			return
		}
		client.Send(wsMessage{Topic: topic, Data: value})
	}
}

// roomWatcher pushes full snapshots of the watched topics of one room. The
// answers subscription follows the room's current question.
type roomWatcher struct {
	ctx      context.Context
	store    *store.Store
	client   *wsClient
	roomID   uint
	isHost   bool
	watch    map[string]bool
	mu       sync.Mutex
	question uint
	answers  func()
	disposes []func()
}

func (w *roomWatcher) start() {
	if w.watch[topicRoom] || w.watch[topicAnswers] {
		sendRoom := publishTo[store.Room](w.client, topicRoom)
		w.disposes = append(w.disposes, w.store.SubscribeRoom(w.ctx, w.roomID, func(room store.Room, err error) {
			if w.watch[topicRoom] {
				sendRoom(room, err)
			}
			if err == nil && w.watch[topicAnswers] {
				w.followQuestion(room.CurrentQuestionID)
			}
		}))
	}
	if w.watch[topicParticipants] {
		w.disposes = append(w.disposes, w.store.SubscribeParticipants(w.ctx, w.roomID, publishTo[[]store.Participant](w.client, topicParticipants)))
	}
	if w.watch[topicQuestions] {
		w.disposes = append(w.disposes, w.store.SubscribeQuestions(w.ctx, w.roomID, publishTo[[]store.Question](w.client, topicQuestions)))
	}
	if w.watch[topicBans] {
		w.disposes = append(w.disposes, w.store.SubscribeBans(w.ctx, w.roomID, publishTo[[]store.BannedUser](w.client, topicBans)))
	}
	if w.watch[topicHistory] {
		w.disposes = append(w.disposes, w.store.SubscribeHistory(w.ctx, w.roomID, publishTo[[]store.GameResult](w.client, topicHistory)))
	}
}

func (w *roomWatcher) followQuestion(current *uint) {
	var questionID uint
	if current != nil {
		questionID = *current
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.answers != nil && w.question == questionID {
		return
	}
	if w.answers != nil {
		w.answers()
		w.answers = nil
	}
	w.question = questionID
	if questionID == 0 {
		w.client.Send(wsMessage{Topic: topicAnswers, Data: []store.Answer{}})
		return
	}
	send := publishTo[[]store.Answer](w.client, topicAnswers)
	w.answers = w.store.SubscribeAnswers(w.ctx, w.roomID, questionID, func(answers []store.Answer, err error) {
		if err == nil && !w.isHost {
			answers = revealedOnly(answers)
		}
		send(answers, err)
	})
}

func (w *roomWatcher) stop() {
	for _, dispose := range w.disposes {
		dispose()
	}
	w.mu.Lock()
	if w.answers != nil {
		w.answers()
		w.answers = nil
	}
	w.mu.Unlock()
}

func revealedOnly(answers []store.Answer) []store.Answer {
	revealed := make([]store.Answer, 0, len(answers))
	for _, answer := range answers {
		if answer.IsRevealed {
			revealed = append(revealed, answer)
		}
	}
	return revealed
}

// handleRoomSocket streams room changes as {"topic","data"} snapshots. Only
// the host may watch bans; everyone else sees revealed answers only.
func (s *Server) handleRoomSocket(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	watch, ok := parseWatchList(c.Query("watch"))
	if !ok {
		writeError(c, http.StatusBadRequest, "unknown watch topic")
		return
	}
	identity, signedIn := s.identityFromRequest(c)
	isHost := signedIn && identity.UID == room.HostUID
	if !isHost {
		if c.Query("watch") != "" && watch[topicBans] {
			writeError(c, http.StatusForbidden, store.ErrNotHost.Error())
			return
		}
		delete(watch, topicBans)
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Info().Uint("room_id", roomID).Str("remote", c.Request.RemoteAddr).Bool("host", isHost).Msg("ws connected")
	ctx, cancel := context.WithCancel(context.Background())
	client := newWSClient(conn)
	watcher := &roomWatcher{
		ctx:    ctx,
		store:  s.store,
		client: client,
		roomID: roomID,
		isHost: isHost,
		watch:  watch,
	}
	watcher.start()
	go func() {
		defer func() {
			cancel()
			watcher.stop()
			client.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				log.Info().Uint("room_id", roomID).Err(err).Msg("ws disconnected")
				return
			}
		}
	}()
}
