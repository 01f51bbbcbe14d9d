package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Amandubey211/AVA.AI/internal/bus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const frameWriteTimeout = 2 * time.Second

// handleFrames streams animator frames to a renderer. One JSON frame per
// message; slow clients skip frames instead of backing up the loop.
func (s *Server) handleFrames(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	frames, cancel := s.deps.Frames.Subscribe()
	defer cancel()

	// Drain reads so close frames and pings are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	for frame := range frames {
		conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Debug().Err(err).Msg("Frame client disconnected")
			return
		}
	}
}

// wireEvent is the JSON shape of one bus event on the event stream.
type wireEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// handleEvents streams runtime lifecycle events (status, speaking, recording,
// emotion, transcript, blink) to UI clients. Slow clients drop events rather
// than back up the publishers.
func (s *Server) handleEvents(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	events := make(chan bus.Event, 32)
	cancel := s.deps.Events.SubscribeMultiple(bus.AllTypes(), func(e bus.Event) {
		select {
		case events <- e:
		default:
		}
	})
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case e := <-events:
			conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
			if err := conn.WriteJSON(wireEvent{Type: string(e.Type), Data: e.Data}); err != nil {
				s.logger.Debug().Err(err).Msg("Event client disconnected")
				return
			}
		}
	}
}
