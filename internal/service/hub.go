package service

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"debate_arena/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	conn   *websocket.Conn
	userID uint
	roomID uint
	role   models.Role
	send   chan models.Event // 消息發送通道，用於異步傳送消息
	done   chan struct{}
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub 管理所有房間的 WebSocket 連接並廣播事件
type Hub struct {
	clients    map[uint]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]bool),
		logger:  logger,
	}
}

// HandleConnection 處理新的 WebSocket 連接，直到連線關閉才返回
func (h *Hub) HandleConnection(conn *websocket.Conn, roomID, userID uint, role models.Role) {
	client := &Client{
		conn:   conn,
		userID: userID,
		roomID: roomID,
		role:   role,
		send:   make(chan models.Event, sendBuffer),
		done:   make(chan struct{}),
	}

	h.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		h.removeClient(client)
		client.close()
		conn.Close()
	}()

	go h.writePump(client)
	h.readPump(client)
}

// readPump 讀取客戶端訊息，只轉發聊天訊息
func (h *Hub) readPump(client *Client) {
	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket unexpected close", zap.Uint("room_id", client.roomID), zap.Error(err))
			}
			return
		}

		var evt models.Event
		if err := json.Unmarshal(message, &evt); err != nil {
			h.logger.Debug("websocket message parse error", zap.Error(err))
			continue
		}
		if evt.Type != models.EventChat || evt.Content == "" {
			continue
		}

		// 由伺服器決定發送者與房間，不信任客戶端內容
		evt.UserID = client.userID
		evt.RoomID = client.roomID
		evt.Data = map[string]any{"role": client.role}
		evt.Timestamp = time.Now()
		h.Broadcast(evt)
	}
}

// writePump 處理向客戶端發送消息與心跳
func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		// 關閉連線讓 readPump 結束
		client.conn.Close()
	}()

	for {
		select {
		case <-client.done:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case evt := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteJSON(evt); err != nil {
				client.close()
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.close()
				return
			}
		}
	}
}

// Broadcast 向房間內的所有客戶端廣播事件，隊列已滿的客戶端會被斷開
func (h *Hub) Broadcast(evt models.Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	h.clientsMux.RLock()
	clients := make([]*Client, 0, len(h.clients[evt.RoomID]))
	for c := range h.clients[evt.RoomID] {
		clients = append(clients, c)
	}
	h.clientsMux.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- evt:
		case <-client.done:
		default:
			h.logger.Warn("websocket send buffer full, dropping client",
				zap.Uint("room_id", client.roomID), zap.Uint("user_id", client.userID))
			h.removeClient(client)
			client.close()
		}
	}
}

// BroadcastSystemMessage 發送系統消息到指定房間
func (h *Hub) BroadcastSystemMessage(roomID uint, content string) {
	h.Broadcast(models.NewSystemEvent(roomID, content))
}

func (h *Hub) addClient(client *Client) {
	h.clientsMux.Lock()
	if h.clients[client.roomID] == nil {
		h.clients[client.roomID] = make(map[*Client]bool)
	}
	h.clients[client.roomID][client] = true
	h.clientsMux.Unlock()

	h.logger.Debug("websocket client joined", zap.Uint("room_id", client.roomID), zap.Uint("user_id", client.userID))
}

func (h *Hub) removeClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if clients, ok := h.clients[client.roomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(h.clients, client.roomID)
		}
	}
}

// RoomClients 獲取指定房間的在線客戶端數量
func (h *Hub) RoomClients(roomID uint) int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	return len(h.clients[roomID])
}
