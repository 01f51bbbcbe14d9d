package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Amandubey211/AVA.AI/internal/chat"
	"github.com/Amandubey211/AVA.AI/internal/speech"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	reply, err := s.deps.Session.SendMessage(c.Request.Context(), req.Message)
	switch {
	case errors.Is(err, chat.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "a reply is already in progress"})
	case errors.Is(err, chat.ErrUpstreamTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "the model took too long to reply"})
	case err != nil:
		s.logger.Error().Err(err).Msg("Chat turn failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "chat backend failed"})
	default:
		c.JSON(http.StatusOK, reply)
	}
}

type ttsRequest struct {
	Text    string `json:"text" binding:"required"`
	VoiceID string `json:"voiceId"`
}

// handleTTS renders speech and returns raw audio. The lip-sync track rides
// in the X-Visemes header as a JSON array of [timestampMs, visemeId] pairs
// so the audio body stays opaque bytes.
func (s *Server) handleTTS(c *gin.Context) {
	var req ttsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	resp, err := s.deps.Synth.Synthesize(c.Request.Context(), &speech.SynthesizeRequest{
		Text:    req.Text,
		VoiceID: req.VoiceID,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("TTS synthesis failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "speech synthesis failed"})
		return
	}

	encoded, err := resp.Visemes.Encode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "viseme encoding failed"})
		return
	}

	c.Header("X-Visemes", encoded)
	c.Data(http.StatusOK, "audio/mpeg", resp.Audio)
}

func (s *Server) handleAvatars(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"avatars": s.deps.Catalog.All()})
}

func (s *Server) handleAvatar(c *gin.Context) {
	profile, ok := s.deps.Catalog.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown avatar"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Store.Snapshot())
}

func (s *Server) handleListenStart(c *gin.Context) {
	if err := s.deps.Listener.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.deps.Store.Snapshot())
}

func (s *Server) handleListenStop(c *gin.Context) {
	s.deps.Listener.Stop()
	c.JSON(http.StatusOK, s.deps.Store.Snapshot())
}

func (s *Server) handleListenMute(c *gin.Context) {
	muted := s.deps.Listener.ToggleMute()
	c.JSON(http.StatusOK, gin.H{"muted": muted})
}

type listenResultRequest struct {
	Text  string `json:"text" binding:"required"`
	Final bool   `json:"final"`
}

// handleListenResult feeds a transcript segment from a client-side
// recognizer into the running session.
func (s *Server) handleListenResult(c *gin.Context) {
	var req listenResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if !s.deps.Listener.Recording() {
		c.JSON(http.StatusConflict, gin.H{"error": "not recording"})
		return
	}
	if req.Final {
		s.deps.Recognizer.Final(req.Text)
	} else {
		s.deps.Recognizer.Interim(req.Text)
	}
	c.JSON(http.StatusOK, gin.H{"transcript": s.deps.Listener.Transcript()})
}
