package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"course_miniapp/store"
)

const streamWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

type StreamHandler struct {
	store *store.Store
	log   logrus.FieldLogger
}

func NewStreamHandler(s *store.Store, log logrus.FieldLogger) *StreamHandler {
	return &StreamHandler{store: s, log: log}
}

// State pushes the current snapshot on connect and then one per change
// until the client goes away.
func (h *StreamHandler) State(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("failed to upgrade the websocket")
		return
	}
	defer ws.Close()

	log := h.log.WithField("stream_id", uuid.NewString())
	log.Debug("state stream connected")

	updates, cancel := h.store.Subscribe()
	defer cancel()

	// Reads only detect the close; clients never send anything useful.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.send(ws, h.store.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			log.Debug("state stream disconnected")
			return
		case <-c.Request.Context().Done():
			return
		case st, ok := <-updates:
			if !ok {
				return
			}
			if err := h.send(ws, st); err != nil {
				log.WithError(err).Debug("state stream write failed")
				return
			}
		}
	}
}

func (h *StreamHandler) send(ws *websocket.Conn, st store.State) error {
	if err := ws.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
		return err
	}
	return ws.WriteJSON(View{Page: "state", State: st})
}
