package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"scenario-analysis/web/internal/form"
)

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

// handleSession serves one form over a websocket. Each inbound SessionRequest
// is submitted in turn; the client sees the submitting state followed by the
// success or error state of every submission.
func (s *Server) handleSession(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout:  5 * time.Second,
		EnableCompression: true,
		CheckOrigin:       s.originAllowed,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}

	client := &wsClient{conn: conn}
	remote := conn.RemoteAddr().String()
	logrus.WithField("remote", remote).Info("analysis session connected")
	defer func() {
		_ = conn.Close()
	}()

	f := form.New(s.analyzer)
	f.OnChange(func(v form.View) {
		if err := client.writeJSON(EventFromView(v)); err != nil {
			logrus.WithError(err).WithField("remote", remote).Warn("write session event")
		}
	})

	ctx := c.Request.Context()
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("remote", remote).Warn("analysis session unexpected close")
			} else {
				logrus.WithField("remote", remote).Info("analysis session closed")
			}
			return
		}

		var req SessionRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			logrus.WithError(err).WithField("remote", remote).Warn("decode session request")
			_ = client.writeJSON(SessionEvent{
				Type:      EventInvalid,
				Phase:     f.View().Phase,
				Label:     form.LabelIdle,
				Message:   "Request must be a JSON object with scenario and constraints.",
				Timestamp: time.Now().UTC(),
			})
			continue
		}
		// Validation failures are reported through the observer as an invalid event.
		_, _ = f.Submit(ctx, req.Scenario, req.Constraints)
	}
}
