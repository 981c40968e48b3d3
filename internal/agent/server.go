package agent

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"srvpanel/internal/constants"
	"srvpanel/internal/daemon"
	"srvpanel/internal/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// Server answers panel websocket sessions. A new session is greeted with the
// current lifecycle status; the first stats request is answered immediately
// and switches the session into streaming mode, where a fresh stats event is
// pushed every sample interval until the peer goes away.
type Server struct {
	sampler *Sampler
	logger  *utils.Logger
}

func NewServer(sampler *Sampler, logger *utils.Logger) *Server {
	return &Server{sampler: sampler, logger: logger}
}

// session serializes writes to one websocket peer; the read loop and the
// streaming ticker both emit frames.
type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
	once sync.Once
	done chan struct{}
}

func (s *session) write(event, payload string) error {
	frame, err := json.Marshal(daemon.Envelope{Event: event, Args: []string{payload}})
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, frame)
}

// HandleWebSocket upgrades the connection and serves the stats protocol.
func (s *Server) HandleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.logf("websocket upgrade error: %v", err)
			return
		}
		sess := &session{conn: conn, done: make(chan struct{})}
		defer func() {
			close(sess.done)
			conn.Close()
		}()

		if err := sess.write(constants.EventStatus, string(s.sampler.Status())); err != nil {
			s.logf("status write error: %v", err)
			return
		}

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					s.logf("websocket error: %v", err)
				}
				return
			}
			var env daemon.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				// Unknown frames from peers are ignored.
				continue
			}
			if env.Event != constants.EventRequestStats {
				continue
			}
			if err := s.sendStats(sess); err != nil {
				s.logf("stats write error: %v", err)
				return
			}
			sess.once.Do(func() { go s.stream(sess) })
		}
	}
}

func (s *Server) sendStats(sess *session) error {
	payload, err := json.Marshal(s.sampler.Payload())
	if err != nil {
		return err
	}
	return sess.write(constants.EventStats, string(payload))
}

func (s *Server) stream(sess *session) {
	ticker := time.NewTicker(s.sampler.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-sess.done:
			return
		case <-ticker.C:
			if err := s.sendStats(sess); err != nil {
				return
			}
		}
	}
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Writef(format, args...)
	}
}
