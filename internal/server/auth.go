package server

import (
	"net/http"
	"strings"

	"flipquiz/internal/store"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// identityFromRequest reads the session token from the Authorization header
// or the session cookie.
func (s *Server) identityFromRequest(c *gin.Context) (store.Identity, bool) {
	token := ""
	if header := c.GetHeader("Authorization"); header != "" {
		if scheme, rest, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			token = strings.TrimSpace(rest)
		}
	}
	if token == "" {
		if cookie, err := c.Request.Cookie(sessionCookie); err == nil {
			token = cookie.Value
		}
	}
	if token == "" {
		return store.Identity{}, false
	}
	identity, err := s.sessions.Verify(token)
	if err != nil {
		return store.Identity{}, false
	}
	return identity, true
}

func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := s.identityFromRequest(c)
		if !ok {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") || strings.HasPrefix(c.Request.URL.Path, "/ws/") {
				writeError(c, http.StatusUnauthorized, "sign in required")
				return
			}
			c.Redirect(http.StatusFound, "/auth/login?next="+c.Request.URL.Path)
			c.Abort()
			return
		}
		c.Set(identityKey, identity)
		c.Next()
	}
}

func currentUser(c *gin.Context) store.Identity {
	if value, ok := c.Get(identityKey); ok {
		if identity, ok := value.(store.Identity); ok {
			return identity
		}
	}
	return store.Identity{}
}
