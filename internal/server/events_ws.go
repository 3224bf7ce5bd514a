package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/framecut/framecut/internal/events"
)

const (
	wsWriteWait    = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsSendBuffer   = 64
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API binds to localhost; the shell connects from a file or dev
	// origin, so origin checks stay off.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEventSocket streams bus events to a websocket client. Each client
// gets its own subscription and buffered send queue; a client that cannot
// keep up is dropped so publishers never block.
func (s *Server) handleEventSocket(c *gin.Context) {
	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	send := make(chan events.Event, wsSendBuffer)
	subID := s.eventBus.SubscribeAll(func(evt events.Event) {
		select {
		case send <- evt:
		default:
			s.logger.Debug("dropping event for slow websocket client")
		}
	})

	done := make(chan struct{})
	go s.readPump(conn, done)
	go s.writePump(conn, send, done, subID)
}

// readPump drains client frames so control messages are processed, and
// signals the writer when the connection dies.
func (s *Server) readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(conn *websocket.Conn, send chan events.Event, done chan struct{}, subID string) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		s.eventBus.Unsubscribe(subID)
		conn.Close()
	}()

	for {
		select {
		case evt := <-send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
