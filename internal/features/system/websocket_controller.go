package system

import (
	"time"

	"go-lms/internal/features/progress"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const feedWriteTimeout = 10 * time.Second

type WebSocketController struct {
	Hub    *progress.Hub
	Logger *zap.Logger
}

func NewWebSocketController(hub *progress.Hub, logger *zap.Logger) *WebSocketController {
	return &WebSocketController{
		Hub:    hub,
		Logger: logger.Named("progress-feed"),
	}
}

// HandleProgressFeed streams the caller's module progress changes until the client goes away.
// The user comes from the "user_id" local, the only form of the principal that survives the
// upgrade.
func (h *WebSocketController) HandleProgressFeed(c *websocket.Conn) {
	raw, _ := c.Locals("user_id").(string)
	userID, err := uuid.Parse(raw)
	if err != nil {
		h.Logger.Warn("Progress feed opened without a user", zap.String("user_id", raw))
		_ = c.Close()
		return
	}

	events, unsubscribe := h.Hub.Subscribe(userID)
	defer unsubscribe()

	// Clients never send anything meaningful; reading only detects the close.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.Logger.Debug("Progress feed connected", zap.String("user_id", raw))
	for {
		select {
		case <-closed:
			h.Logger.Debug("Progress feed closed", zap.String("user_id", raw))
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = c.SetWriteDeadline(time.Now().Add(feedWriteTimeout))
			if err := c.WriteJSON(ev); err != nil {
				h.Logger.Warn("Failed to write progress event", zap.String("user_id", raw), zap.Error(err))
				return
			}
		}
	}
}
