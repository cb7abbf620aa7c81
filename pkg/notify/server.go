package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const headerRequestID = "X-Request-Id"

// Server exposes a Stream and a Hub over HTTP:
//
//	/ws       WebSocket event stream (?learner= filter)
//	/events   recorded events as JSON (?learner= filter)
//	/stats    hub counters as JSON
//	/health   liveness probe
type Server struct {
	addr   string
	stream *Stream
	hub    *Hub
	server *http.Server
}

// NewServer creates a Server. Events delivered to hub are
// forwarded to stream.
func NewServer(addr string, stream *Stream, hub *Hub) *Server {
	hub.OnEvent(stream.Notify)
	return &Server{addr: addr, stream: stream, hub: hub}
}

// Handler returns the HTTP handler without starting a listener.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())

	r.GET("/ws", gin.WrapH(s.stream))
	r.GET("/events", s.handleEvents)
	r.GET("/stats", s.handleStats)
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

// requestID echoes X-Request-Id, generating one when the client
// sent none.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(headerRequestID))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(headerRequestID, id)
		c.Next()
	}
}

// Start serves until ctx is cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		_ = s.server.Close()
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("notify server: %w", err)
	}
	return nil
}

// Stop shuts the server down and disconnects stream clients.
func (s *Server) Stop(ctx context.Context) error {
	_ = s.stream.Close()
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleEvents(c *gin.Context) {
	events := s.hub.Events()
	if learner := c.Query("learner"); learner != "" {
		events = s.hub.EventsFor(learner)
	}
	if events == nil {
		events = []Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.hub.Stats())
}
