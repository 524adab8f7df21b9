package server

import (
	"errors"
	"net/http"
	"time"

	"flipquiz/internal/auth"
	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func writeError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// writeStoreError maps domain errors onto HTTP statuses. Unexpected errors
// are logged and reported without detail.
func writeStoreError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrNoCurrentQuestion):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotHost), errors.Is(err, store.ErrBanned), errors.Is(err, store.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, store.ErrRoomFull), errors.Is(err, store.ErrRoomEnded),
		errors.Is(err, store.ErrInvalidTransition), errors.Is(err, store.ErrQuestionClosed),
		errors.Is(err, store.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		writeError(c, status, "internal error")
		return
	}
	writeError(c, status, err.Error())
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Str("remote", c.ClientIP()).
			Msg("request")
	}
}
