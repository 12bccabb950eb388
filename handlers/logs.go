package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"trip-search-ai/logstream"
)

var upgrader = websocket.Upgrader{
	// The UI is served from a different origin during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LogHandler streams pipeline progress to browser clients over a websocket.
type LogHandler struct {
	hub *logstream.Hub
	log *logrus.Logger
}

// NewLogHandler creates the websocket endpoint handler.
func NewLogHandler(hub *logstream.Hub, log *logrus.Logger) *LogHandler {
	return &LogHandler{hub: hub, log: log}
}

// Stream handles GET /ws: upgrade, greet, then hold the connection open in
// the broadcast set until the client goes away. Inbound messages are echoed
// back, which the UI uses as a connectivity check. All writes go through the
// hub so they are serialized against concurrent broadcasts; gorilla/websocket
// allows only one writer per connection at a time.
func (h *LogHandler) Stream(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	h.hub.Register(conn)
	defer func() {
		h.hub.Unregister(conn)
		conn.Close()
	}()

	if err := h.hub.Send(conn, "⚙️SERVER: Welcome! You are now connected to the WebSocket server.", 200); err != nil {
		return
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			h.log.Debug("websocket client disconnected")
			return
		}
		if err := h.hub.Send(conn, "🧑‍💻CLIENT: Received your message: "+string(message), 200); err != nil {
			return
		}
	}
}
