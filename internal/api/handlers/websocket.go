package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // 來源限制交給 CORS 設定
	},
}

// WebSocketHandler 處理房間即時事件的 WebSocket 連接
type WebSocketHandler struct {
	roomService *service.RoomService
	hub         *service.Hub
	logger      *zap.Logger
}

// NewWebSocketHandler 創建一個新的 WebSocketHandler 實例
func NewWebSocketHandler(roomService *service.RoomService, hub *service.Hub, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{roomService: roomService, hub: hub, logger: logger}
}

// HandleWebSocket 只允許房間內的參與者訂閱
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	participant, err := h.roomService.Participant(userID, roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Uint("room_id", roomID), zap.Error(err))
		return
	}

	h.hub.HandleConnection(conn, roomID, userID, participant.Role)
}
