package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type resultURI struct {
	ResultID uint `uri:"rid" binding:"required,min=1"`
}

func (s *Server) handleRoomHistory(c *gin.Context) {
	roomID, ok := bindRoom(c)
	if !ok {
		return
	}
	results, err := s.store.ListGameResults(c.Request.Context(), roomID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	page, pagination := paginate(c, roomHistoryPath(roomID), results)
	c.JSON(http.StatusOK, gin.H{"results": page, "pagination": pagination})
}

func (s *Server) handleHostHistory(c *gin.Context) {
	results, err := s.store.ListGameResultsByHost(c.Request.Context(), currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	page, pagination := paginate(c, "/api/history", results)
	c.JSON(http.StatusOK, gin.H{"results": page, "pagination": pagination})
}

func (s *Server) handleGetGameResult(c *gin.Context) {
	var uri resultURI
	if !bindURI(c, &uri) {
		return
	}
	result, err := s.store.GetGameResult(c.Request.Context(), uri.ResultID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
