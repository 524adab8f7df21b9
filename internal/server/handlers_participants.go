package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleJoin(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	identity := currentUser(c)
	if profile, err := s.store.GetProfile(c.Request.Context(), identity.UID); err == nil {
		identity.DisplayName = profile.DisplayName
		if profile.AvatarURL != "" {
			identity.PhotoURL = profile.AvatarURL
		}
	}
	participant, err := s.store.JoinRoom(c.Request.Context(), roomID, identity)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, participant)
}

func (s *Server) handleLeave(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	uid := currentUser(c).UID
	s.autosave.Flush(roomID, uid)
	if err := s.store.LeaveRoom(c.Request.Context(), roomID, uid); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListParticipants(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	participants, err := s.store.ListParticipants(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

type kickRequest struct {
	UID    string `json:"uid" binding:"required"`
	Reason string `json:"reason" binding:"reason"`
}

func (s *Server) handleKick(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	var req kickRequest
	if !bindJSON(c, &req, bindMessages{
		"UID":    {"required": "uid is required"},
		"Reason": {"reason": "reason must be 200 printable characters or fewer"},
	}, "invalid kick request") {
		return
	}
	if err := s.store.KickParticipant(c.Request.Context(), roomID, currentUser(c).UID, req.UID, normalizeText(req.Reason)); err != nil {
		writeStoreError(c, err)
		return
	}
	s.autosave.Drop(roomID, req.UID)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListBans(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	if _, err := s.hostRoom(c, roomID); err != nil {
		writeStoreError(c, err)
		return
	}
	bans, err := s.store.ListBannedUsers(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bans": bans})
}

func (s *Server) handleUnban(c *gin.Context) {
	var uri banURI
	if !bindURI(c, &uri) {
		return
	}
	if err := s.store.UnbanUser(c.Request.Context(), uri.ID, currentUser(c).UID, uri.UID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleBannedStatus tells the signed-in user whether they are banned.
func (s *Server) handleBannedStatus(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	banned, err := s.store.IsUserBanned(c.Request.Context(), roomID, currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banned": banned})
}
