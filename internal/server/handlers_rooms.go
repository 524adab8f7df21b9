package server

import (
	"net/http"

	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

type createRoomRequest struct {
	Title           string `json:"title" binding:"title"`
	MaxParticipants int    `json:"max_participants" binding:"min=0"`
}

var roomMessages = bindMessages{
	"Title": {
		"title": "title must be 80 printable characters or fewer",
	},
	"MaxParticipants": {
		"min": "max participants must be positive",
	},
}

func (s *Server) handleCreateRoom(c *gin.Context) {
	var req createRoomRequest
	if !bindJSON(c, &req, roomMessages, "invalid room") {
		return
	}
	room, err := s.store.CreateRoom(c.Request.Context(), currentUser(c).UID, normalizeText(req.Title), req.MaxParticipants)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Info().Uint("room_id", room.ID).Str("code", room.Code).Msg("room created")
	c.JSON(http.StatusCreated, room)
}

func (s *Server) handleGetRoom(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (s *Server) handleFindRoom(c *gin.Context) {
	room, err := s.store.FindRoomByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (s *Server) handleListRooms(c *gin.Context) {
	rooms, err := s.store.ListRoomsByHost(c.Request.Context(), currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type updateRoomRequest struct {
	Title           *string `json:"title" binding:"omitempty,title"`
	MaxParticipants int     `json:"max_participants" binding:"min=0"`
}

func (s *Server) handleUpdateRoom(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var req updateRoomRequest
	if !bindJSON(c, &req, roomMessages, "invalid room settings") {
		return
	}
	if req.Title != nil {
		title := normalizeText(*req.Title)
		req.Title = &title
	}
	room, err := s.store.UpdateRoomSettings(c.Request.Context(), roomID, currentUser(c).UID, req.MaxParticipants, req.Title)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	log.Info().Uint("room_id", roomID).Int("max_participants", room.MaxParticipants).Msg("room settings updated")
	c.JSON(http.StatusOK, room)
}

func (s *Server) handleEndRoom(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.EndRoom(c.Request.Context(), roomID, currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (s *Server) handleDeleteRoom(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	if err := s.store.DeleteRoom(c.Request.Context(), roomID, currentUser(c).UID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleRoomQR renders a QR code pointing players at the room's join page.
func (s *Server) handleRoomQR(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	room, err := s.store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	scheme := "http"
	if isSecureRequest(c.Request) {
		scheme = "https"
	}
	png, err := qrcode.Encode(scheme+"://"+c.Request.Host+playPath(room.Code), qrcode.Medium, qrSize)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "qr generation failed")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) hostRoom(c *gin.Context, roomID uint) (store.Room, error) {
	room, err := s.store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		return store.Room{}, err
	}
	if room.HostUID != currentUser(c).UID {
		return store.Room{}, store.ErrNotHost
	}
	return room, nil
}
