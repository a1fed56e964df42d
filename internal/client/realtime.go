package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"debate_arena/internal/models"
)

// Subscribe 連上房間的 WebSocket，每收到一個事件就呼叫 handle。
// 阻塞直到 ctx 結束或連線中斷；ctx 結束時回傳 nil。
func (c *Client) Subscribe(ctx context.Context, roomID uint, handle func(models.Event)) error {
	wsURL, err := c.roomSocketURL(roomID)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			apiErr := decodeError(resp)
			if IsUnauthorized(apiErr) && c.session != nil {
				c.session.Invalidate()
			}
			return fmt.Errorf("dial room %d: %w", roomID, apiErr)
		}
		return fmt.Errorf("dial room %d: %w", roomID, err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		var evt models.Event
		if err := conn.ReadJSON(&evt); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read room %d: %w", roomID, err)
		}
		c.logger.Debug("room event", zap.Uint("room_id", roomID), zap.String("type", string(evt.Type)))
		handle(evt)
	}
}

func (c *Client) roomSocketURL(roomID uint) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = fmt.Sprintf("/api/rooms/%d/ws", roomID)
	if c.session != nil && c.session.Token() != "" {
		u.RawQuery = url.Values{"token": {c.session.Token()}}.Encode()
	}
	return u.String(), nil
}
