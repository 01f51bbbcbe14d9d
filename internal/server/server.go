// Package server exposes the avatar runtime over HTTP and WebSocket: REST
// endpoints for chat, speech synthesis, catalog and microphone control, plus
// a frame stream for renderers.
package server

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Amandubey211/AVA.AI/internal/anim"
	"github.com/Amandubey211/AVA.AI/internal/avatar"
	"github.com/Amandubey211/AVA.AI/internal/bus"
	"github.com/Amandubey211/AVA.AI/internal/chat"
	"github.com/Amandubey211/AVA.AI/internal/config"
	"github.com/Amandubey211/AVA.AI/internal/listen"
	"github.com/Amandubey211/AVA.AI/internal/speech"
	"github.com/Amandubey211/AVA.AI/internal/state"
)

// Deps are the runtime components the server fronts.
type Deps struct {
	Store      *state.Store
	Events     *bus.Bus
	Catalog    *avatar.Catalog
	Session    *chat.Session
	Synth      speech.Synthesizer
	Listener   *listen.Controller
	Recognizer *listen.PushRecognizer
	Frames     *anim.Loop
}

// Server is the HTTP/WebSocket front of the runtime.
type Server struct {
	cfg    config.ServerConfig
	deps   Deps
	router *gin.Engine
	logger zerolog.Logger
	http   *http.Server
}

func New(cfg config.ServerConfig, deps Deps, logger zerolog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"X-Visemes"},
		AllowCredentials: true,
	}))

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: router,
		logger: logger.With().Str("component", "server").Logger(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/chat", s.handleChat)
		api.POST("/tts", s.handleTTS)
		api.GET("/avatars", s.handleAvatars)
		api.GET("/avatars/:id", s.handleAvatar)
		api.GET("/state", s.handleState)

		mic := api.Group("/listen")
		{
			mic.POST("/start", s.handleListenStart)
			mic.POST("/stop", s.handleListenStop)
			mic.POST("/mute", s.handleListenMute)
			mic.POST("/result", s.handleListenResult)
		}
	}
	s.router.GET("/ws/frames", s.handleFrames)
	s.router.GET("/ws/events", s.handleEvents)
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// No WriteTimeout: the frame stream holds its connection open for the
	// life of the client.
	s.http = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("Shutting down HTTP server")
		return s.http.Shutdown(context.Background())
	}
}
