package server

import (
	"net/http"
	"time"

	"flipquiz/internal/auth"
	"flipquiz/internal/blob"
	"flipquiz/internal/config"
	"flipquiz/internal/recolor"
	"flipquiz/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

type Server struct {
	store    *store.Store
	cfg      config.Config
	sessions *auth.Sessions
	provider auth.Provider
	blobs    *blob.Memory
	limiter  *rateLimiter
	autosave *autosaver
	upgrader websocket.Upgrader
}

func New(st *store.Store, cfg config.Config) *Server {
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
		log.Warn().Msg("JWT_SECRET is not set; sessions will not survive a restart")
	}
	s := &Server{
		store:    st,
		cfg:      cfg,
		sessions: auth.NewSessions(secret, cfg.SessionTTL()),
		limiter:  newRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst, 10*time.Minute),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.autosave = newAutosaver(cfg.AutosaveInterval(), s.saveDraft)
	return s
}

// SetProvider enables the sign-in routes.
func (s *Server) SetProvider(provider auth.Provider) {
	s.provider = provider
}

// ServeBlobs exposes objects from an in-memory blob store under /blobs.
func (s *Server) ServeBlobs(memory *blob.Memory) {
	s.blobs = memory
}

func (s *Server) Sessions() *auth.Sessions {
	return s.sessions
}

func (s *Server) recolorOptions() recolor.Options {
	threshold := s.cfg.InkThreshold
	if threshold <= 0 || threshold > 255 {
		threshold = recolor.DefaultThreshold
	}
	return recolor.Options{Threshold: uint8(threshold)}
}

func (s *Server) Handler() http.Handler {
	registerValidators()
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(), gin.Recovery(), s.corsMiddleware(), rateLimitByIP(s.limiter))

	router.GET("/", s.handleHome)
	router.GET("/host/:id", s.requireUser(), s.handleHostView)
	router.GET("/play/:code", s.handlePlayView)
	router.GET("/broadcast/:id", s.handleBroadcastView)
	router.GET("/blobs/*path", s.handleBlob)
	router.Static("/static", "static")

	router.GET("/auth/login", s.handleLogin)
	router.GET("/auth/callback", s.handleCallback)
	router.POST("/auth/logout", s.handleLogout)

	api := router.Group("/api")
	api.GET("/rooms/:id", s.handleGetRoom)
	api.GET("/rooms/code/:code", s.handleFindRoom)
	api.GET("/rooms/:id/qr.png", s.handleRoomQR)
	api.GET("/rooms/:id/participants", s.handleListParticipants)
	api.GET("/rooms/:id/questions", s.handleListQuestions)
	api.GET("/rooms/:id/broadcast", s.handleBroadcast)
	api.GET("/rooms/:id/history", s.handleRoomHistory)
	api.GET("/answers/:aid/card.png", s.handleAnswerCard)
	api.GET("/history/:rid", s.handleGetGameResult)

	user := api.Group("", s.requireUser())
	user.GET("/me", s.handleMe)
	user.PATCH("/me", s.handleUpdateMe)
	user.POST("/me/avatar", s.handleAvatar)

	user.POST("/rooms", s.handleCreateRoom)
	user.GET("/rooms", s.handleListRooms)
	user.PATCH("/rooms/:id", s.handleUpdateRoom)
	user.POST("/rooms/:id/end", s.handleEndRoom)
	user.DELETE("/rooms/:id", s.handleDeleteRoom)

	user.POST("/rooms/:id/join", s.handleJoin)
	user.POST("/rooms/:id/leave", s.handleLeave)
	user.POST("/rooms/:id/kick", s.handleKick)
	user.GET("/rooms/:id/bans", s.handleListBans)
	user.DELETE("/rooms/:id/bans/:uid", s.handleUnban)
	user.GET("/rooms/:id/banned", s.handleBannedStatus)

	user.POST("/rooms/:id/questions", s.handleCreateQuestion)
	user.POST("/rooms/:id/questions/:qid/post", s.handlePostQuestion)
	user.POST("/rooms/:id/close", s.handleCloseQuestion)
	user.POST("/rooms/:id/next", s.handleNextQuestion)

	user.PUT("/rooms/:id/answers", s.handleSubmitAnswer)
	user.GET("/rooms/:id/answers", s.handleListAnswers)
	user.POST("/answers/:aid/correct", s.handleMarkAnswer)
	user.POST("/answers/:aid/reveal", s.handleRevealAnswer)
	user.POST("/rooms/:id/reveal-all", s.handleRevealAll)

	user.GET("/history", s.handleHostHistory)

	router.GET("/ws/rooms/:id", s.handleRoomSocket)
	router.GET("/ws/rooms/:id/draw", s.requireUser(), s.handleDrawSocket)
	return router
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origins := s.cfg.CORSOrigins
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(origin string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}
