package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"

	"flipquiz/internal/canvas"
	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type drawMessage struct {
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	DisplayW float64 `json:"display_w"`
	DisplayH float64 `json:"display_h"`
	Color    string  `json:"color,omitempty"`
	Width    float64 `json:"width,omitempty"`
}

// drawSession is one participant's live canvas for the room's current
// question. Each change is pushed back to the client and autosaved.
type drawSession struct {
	server   *Server
	ctx      context.Context
	client   *wsClient
	roomID   uint
	identity store.Identity

	mu         sync.Mutex
	surface    *canvas.Surface
	questionID uint
}

func (d *drawSession) newSurface(questionID uint, existing string) *canvas.Surface {
	cfg := d.server.cfg
	surface := canvas.NewSurface(cfg.CanvasWidth, cfg.CanvasHeight, cfg.UndoLimit)
	if existing != "" {
		if err := surface.Load(existing); err != nil {
			log.Warn().Err(err).Uint("room_id", d.roomID).Str("uid", d.identity.UID).Msg("saved drawing could not be loaded")
		}
	}
	surface.OnChange(func(dataURL string) {
		d.client.Send(wsMessage{Type: "image", Data: dataURL})
		d.autosave(questionID, dataURL, false)
	})
	return surface
}

func (d *drawSession) autosave(questionID uint, dataURL string, final bool) {
	if questionID == 0 {
		return
	}
	if _, err := d.server.store.CheckAnswer(d.ctx, d.roomID, d.identity.UID, questionID); err != nil {
		d.client.Send(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	item := draft{identity: d.identity, questionID: questionID, image: dataURL}
	if _, _, err := d.server.autosave.Submit(d.ctx, d.roomID, item, final); err != nil {
		d.client.Send(wsMessage{Type: "error", Error: err.Error()})
	}
}

// follow swaps in a blank surface when the current question changes. The
// participant's saved answer, if any, is loaded back.
func (d *drawSession) follow(room store.Room) {
	var questionID uint
	if room.Status == store.StatusQuestioning && room.CurrentQuestionID != nil {
		questionID = *room.CurrentQuestionID
	}
	d.mu.Lock()
	if d.surface != nil && d.questionID == questionID {
		d.mu.Unlock()
		return
	}
	previous := d.questionID
	d.mu.Unlock()
	if previous != 0 {
		d.server.autosave.Flush(d.roomID, d.identity.UID)
	}

	existing := ""
	if questionID != 0 {
		answers, err := d.server.store.ListAnswers(d.ctx, d.roomID, questionID)
		if err == nil {
			for _, answer := range answers {
				if answer.UID == d.identity.UID {
					existing = answer.ImageData
				}
			}
		}
	}
	surface := d.newSurface(questionID, existing)
	d.mu.Lock()
	d.surface = surface
	d.questionID = questionID
	d.mu.Unlock()

	image, err := surface.DataURL()
	if err != nil {
		return
	}
	d.client.Send(wsMessage{Type: "reset", Data: gin.H{
		"question_id": questionID,
		"status":      room.Status,
		"image":       image,
	}})
}

func (d *drawSession) current() (*canvas.Surface, uint) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.surface, d.questionID
}

func (d *drawSession) handle(msg drawMessage) error {
	surface, questionID := d.current()
	if surface == nil {
		return errors.New("canvas is not ready")
	}
	point := canvas.Point{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case "begin":
		surface.BeginStroke(point, msg.DisplayW, msg.DisplayH)
	case "move":
		surface.ExtendStroke(point, msg.DisplayW, msg.DisplayH)
	case "end":
		_, err := surface.EndStroke()
		return err
	case "clear":
		_, err := surface.Clear()
		return err
	case "undo":
		_, err := surface.Undo()
		return err
	case "brush":
		ink, err := parseHexColor(msg.Color)
		if err != nil {
			return err
		}
		surface.SetBrush(ink, msg.Width)
	case "submit":
		if questionID == 0 {
			return store.ErrQuestionClosed
		}
		image, err := surface.DataURL()
		if err != nil {
			return err
		}
		d.autosave(questionID, image, true)
	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
	return nil
}

func parseHexColor(raw string) (color.RGBA, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if raw == "" {
		return canvas.DefaultInk, nil
	}
	var r, g, b uint8
	if len(raw) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	if _, err := fmt.Sscanf(raw, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q", raw)
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// handleDrawSocket runs a drawing session for a participant of the room. The
// participant is marked active while connected and idle afterwards.
func (s *Server) handleDrawSocket(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	identity := currentUser(c)
	if _, err := s.store.GetParticipant(c.Request.Context(), roomID, identity.UID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = store.ErrNotParticipant
		}
		writeStoreError(c, err)
		return
	}
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	log.Info().Uint("room_id", roomID).Str("uid", identity.UID).Msg("draw session connected")

	ctx, cancel := context.WithCancel(context.Background())
	client := newWSClient(conn)
	session := &drawSession{
		server:   s,
		ctx:      ctx,
		client:   client,
		roomID:   roomID,
		identity: identity,
	}
	if _, err := s.store.SetParticipantStatus(ctx, roomID, identity.UID, store.ParticipantActive); err != nil {
		log.Warn().Err(err).Uint("room_id", roomID).Str("uid", identity.UID).Msg("participant status not updated")
	}
	disposeRoom := s.store.SubscribeRoom(ctx, roomID, func(room store.Room, err error) {
		if err != nil {
			client.Send(wsMessage{Type: "error", Error: err.Error()})
			if errors.Is(err, store.ErrNotFound) {
				client.Close()
			}
			return
		}
		session.follow(room)
	})
	disposeMembers := s.store.SubscribeParticipants(ctx, roomID, func(participants []store.Participant, err error) {
		if err != nil {
			return
		}
		for _, p := range participants {
			if p.UID == identity.UID {
				return
			}
		}
		client.Send(wsMessage{Type: "removed"})
		client.Close()
	})

	go func() {
		defer func() {
			disposeRoom()
			disposeMembers()
			s.autosave.Flush(roomID, identity.UID)
			if _, err := s.store.SetParticipantStatus(context.Background(), roomID, identity.UID, store.ParticipantIdle); err != nil && !errors.Is(err, store.ErrNotFound) {
				log.Warn().Err(err).Uint("room_id", roomID).Str("uid", identity.UID).Msg("participant status not updated")
			}
			cancel()
			client.Close()
			log.Info().Uint("room_id", roomID).Str("uid", identity.UID).Msg("draw session closed")
		}()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var msg drawMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				client.Send(wsMessage{Type: "error", Error: "invalid message"})
				continue
			}
			if err := session.handle(msg); err != nil {
				client.Send(wsMessage{Type: "error", Error: err.Error()})
			}
		}
	}()
}
