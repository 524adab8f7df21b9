package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func safeRedirect(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

func (s *Server) handleLogin(c *gin.Context) {
	if s.provider == nil {
		writeError(c, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}
	state := newSessionID()
	setStateCookie(c, state+"|"+safeRedirect(c.Query("next")))
	c.Redirect(http.StatusFound, s.provider.AuthCodeURL(state))
}

func (s *Server) handleCallback(c *gin.Context) {
	if s.provider == nil {
		writeError(c, http.StatusServiceUnavailable, "sign-in is not configured")
		return
	}
	cookie, err := c.Request.Cookie(stateCookie)
	clearCookie(c, stateCookie)
	if err != nil {
		writeError(c, http.StatusBadRequest, "sign-in expired, try again")
		return
	}
	state, next, _ := strings.Cut(cookie.Value, "|")
	if state == "" || c.Query("state") != state {
		writeError(c, http.StatusBadRequest, "sign-in state mismatch")
		return
	}
	code := c.Query("code")
	if code == "" {
		writeError(c, http.StatusBadRequest, "missing authorization code")
		return
	}
	identity, err := s.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		log.Warn().Err(err).Msg("oauth exchange failed")
		writeError(c, http.StatusBadGateway, "sign-in failed")
		return
	}
	if _, err := s.store.UpsertProfile(c.Request.Context(), identity); err != nil {
		writeStoreError(c, err)
		return
	}
	token, err := s.sessions.Issue(identity)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	s.setSessionCookie(c, token)
	log.Info().Str("uid", identity.UID).Msg("signed in")
	setFlash(c, "Signed in as "+identity.DisplayName)
	c.Redirect(http.StatusFound, safeRedirect(next))
}

func (s *Server) handleLogout(c *gin.Context) {
	clearCookie(c, sessionCookie)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMe(c *gin.Context) {
	profile, err := s.store.GetProfile(c.Request.Context(), currentUser(c).UID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" binding:"required,name"`
}

func (s *Server) handleUpdateMe(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req, bindMessages{
		"DisplayName": {
			"required": "display name is required",
			"name":     "display name must be 1-40 printable characters",
		},
	}, "invalid profile") {
		return
	}
	profile, err := s.store.UpdateProfile(c.Request.Context(), currentUser(c).UID, normalizeText(req.DisplayName))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleAvatar(c *gin.Context) {
	data, contentType, err := readUploadedImage(c, "avatar")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	profile, err := s.store.SetAvatar(c.Request.Context(), currentUser(c).UID, contentType, data)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
