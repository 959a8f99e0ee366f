package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/storefront/orderflow/internal/http/response"
	"github.com/storefront/orderflow/internal/platform/logger"
	"github.com/storefront/orderflow/internal/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type StatusWSHandler struct {
	log  *logger.Logger
	feed services.StatusFeedService
}

func NewStatusWSHandler(log *logger.Logger, feed services.StatusFeedService) *StatusWSHandler {
	handlerLog := log.With("handler", "StatusWSHandler")
	return &StatusWSHandler{log: handlerLog, feed: feed}
}

// GET /orders/:order_id/ws
// Rejects orders with no recorded events before upgrading, so clients get a
// plain 404 instead of a dropped socket.
func (sh *StatusWSHandler) Subscribe(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_order_id", err)
		return
	}

	if _, err := sh.feed.Snapshot(c.Request.Context(), orderID); err != nil {
		response.RespondMapped(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sh.log.Warn("WebSocket upgrade failed", "order_id", orderID, "error", err)
		return
	}

	ch := newWSStatusChannel(conn)
	if err := sh.feed.Run(c.Request.Context(), orderID, ch); err != nil &&
		!errors.Is(err, context.Canceled) && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		sh.log.Debug("Status feed session ended", "order_id", orderID, "error", err)
	}
}

// wsStatusChannel adapts a websocket connection to the feed's channel
// contract, translating context deadlines into socket deadlines.
type wsStatusChannel struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

func newWSStatusChannel(conn *websocket.Conn) *wsStatusChannel {
	return &wsStatusChannel{conn: conn}
}

func (wc *wsStatusChannel) SendHeartbeat(ctx context.Context, payload string) error {
	_ = wc.conn.SetWriteDeadline(deadlineFrom(ctx))
	return wc.conn.WriteMessage(websocket.TextMessage, []byte(payload))
}

func (wc *wsStatusChannel) AwaitAck(ctx context.Context) (string, error) {
	_ = wc.conn.SetReadDeadline(deadlineFrom(ctx))
	_, msg, err := wc.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(msg), nil
}

func (wc *wsStatusChannel) SendUpdates(ctx context.Context, updates []services.StatusUpdate) error {
	_ = wc.conn.SetWriteDeadline(deadlineFrom(ctx))
	return wc.conn.WriteJSON(updates)
}

func (wc *wsStatusChannel) Close() error {
	wc.closeOnce.Do(func() {
		wc.closeErr = wc.conn.Close()
	})
	return wc.closeErr
}

func deadlineFrom(ctx context.Context) time.Time {
	if d, ok := ctx.Deadline(); ok {
		return d
	}
	return time.Time{}
}
