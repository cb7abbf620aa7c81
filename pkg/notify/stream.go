package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"digital.vasic.defecthunt/pkg/logging"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	defaultClientBuf = 32
)

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithStreamLogger sets the logger used for connection errors.
func WithStreamLogger(l logging.Logger) StreamOption {
	return func(s *Stream) {
		s.log = logging.OrNull(l)
	}
}

// WithClientBuffer sets how many events may queue for one slow
// client before further events to it are dropped.
func WithClientBuffer(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.buffer = n
		}
	}
}

// WithCheckOrigin overrides the WebSocket origin check.
func WithCheckOrigin(fn func(*http.Request) bool) StreamOption {
	return func(s *Stream) {
		s.upgrader.CheckOrigin = fn
	}
}

type streamClient struct {
	conn    *websocket.Conn
	send    chan []byte
	learner string
}

// Stream is a Sink that broadcasts events as JSON text frames to
// connected WebSocket clients. A client may pass ?learner=<id>
// to receive only that learner's events.
type Stream struct {
	mu       sync.RWMutex
	clients  map[*streamClient]struct{}
	upgrader websocket.Upgrader
	buffer   int
	log      logging.Logger
}

// NewStream creates a Stream with no clients.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{
		clients: make(map[*streamClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		buffer: defaultClientBuf,
		log:    logging.NullLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify broadcasts event to matching clients. Clients whose
// queue is full miss the event.
func (s *Stream) Notify(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("encode event", logging.ErrorField(err))
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if c.learner != "" && c.learner != event.LearnerID {
			continue
		}
		select {
		case c.send <- data:
		default:
			s.log.Warn("stream client too slow, event dropped",
				logging.StringField("event_id", event.ID),
			)
		}
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and
// streams events to it until either side closes.
func (s *Stream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", logging.ErrorField(err))
		return
	}

	c := &streamClient{
		conn:    conn,
		send:    make(chan []byte, s.buffer),
		learner: r.URL.Query().Get("learner"),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.writeLoop(c)

	// Inbound frames are ignored; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.remove(c)
}

func (s *Stream) writeLoop(c *streamClient) {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}

func (s *Stream) remove(c *streamClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// Clients returns the number of connected clients.
func (s *Stream) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Close disconnects every client.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		delete(s.clients, c)
		close(c.send)
	}
	return nil
}
