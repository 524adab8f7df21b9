package server

import (
	"net/http"
	"strings"

	"flipquiz/internal/store"
	"flipquiz/internal/web"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func render(c *gin.Context, component templ.Component) {
	templ.Handler(component).ServeHTTP(c.Writer, c.Request)
}

func (s *Server) viewer(c *gin.Context) *web.Viewer {
	identity, ok := s.identityFromRequest(c)
	if !ok {
		return nil
	}
	return &web.Viewer{UID: identity.UID, DisplayName: identity.DisplayName, PhotoURL: identity.PhotoURL}
}

func (s *Server) handleHome(c *gin.Context) {
	page := web.HomePage{
		Flash:        popFlash(c),
		Viewer:       s.viewer(c),
		SignInReady:  s.provider != nil,
		MaxPlayers:   s.cfg.MaxParticipantsLimit,
		DefaultLimit: s.cfg.DefaultMaxParticipants,
	}
	if page.Viewer != nil {
		rooms, err := s.store.ListRoomsByHost(c.Request.Context(), page.Viewer.UID)
		if err != nil {
			log.Warn().Err(err).Str("uid", page.Viewer.UID).Msg("listing rooms failed")
		}
		for _, room := range rooms {
			if room.Status == store.StatusEnded {
				continue
			}
			page.Rooms = append(page.Rooms, web.RoomLink{
				Title:     room.Title,
				Code:      room.Code,
				Status:    string(room.Status),
				HostURL:   hostPath(room.ID),
				CreatedAt: room.CreatedAt,
			})
		}
	}
	render(c, web.Home(page))
}

func (s *Server) handleHostView(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.hostRoom(c, roomID)
	if err != nil {
		log.Info().Uint("room_id", roomID).Err(err).Msg("host view unavailable")
		setFlash(c, "That room is not available.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, web.HostView(web.HostPage{
		RoomID:    room.ID,
		Code:      room.Code,
		Title:     room.Title,
		Status:    string(room.Status),
		PlayURL:   playPath(room.Code),
		Viewer:    s.viewer(c),
		CanvasW:   s.cfg.CanvasWidth,
		CanvasH:   s.cfg.CanvasHeight,
		Broadcast: broadcastPath(room.ID),
	}))
}

func (s *Server) handlePlayView(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	room, err := s.store.FindRoomByCode(c.Request.Context(), code)
	if err != nil {
		log.Info().Str("code", code).Err(err).Msg("play view missing room")
		setFlash(c, "No open room uses that code.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	if room.Status == store.StatusEnded {
		setFlash(c, "That room has ended.")
		c.Redirect(http.StatusFound, "/")
		return
	}
	render(c, web.PlayView(web.PlayPage{
		RoomID:  room.ID,
		Code:    room.Code,
		Title:   room.Title,
		Viewer:  s.viewer(c),
		CanvasW: s.cfg.CanvasWidth,
		CanvasH: s.cfg.CanvasHeight,
	}))
}

func (s *Server) handleBroadcastView(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	render(c, web.BroadcastView(web.BroadcastPage{
		RoomID: room.ID,
		Code:   room.Code,
		Title:  room.Title,
	}))
}

// handleBlob serves objects from the in-memory blob store.
func (s *Server) handleBlob(c *gin.Context) {
	if s.blobs == nil {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	obj, ok := s.blobs.Get(strings.TrimPrefix(c.Param("path"), "/"))
	if !ok {
		writeError(c, http.StatusNotFound, "not found")
		return
	}
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, obj.ContentType, obj.Data)
}
