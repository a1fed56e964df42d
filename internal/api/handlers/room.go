package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/middleware"
	"debate_arena/internal/models"
	"debate_arena/internal/service"
)

// RoomHandler 處理與辯論房間和參與者相關的請求
type RoomHandler struct {
	roomService *service.RoomService
	logger      *zap.Logger
}

// NewRoomHandler 創建一個新的 RoomHandler 實例
func NewRoomHandler(roomService *service.RoomService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{roomService: roomService, logger: logger}
}

type createRoomInput struct {
	Topic           string            `json:"topic" binding:"required"`
	Description     string            `json:"description"`
	ScheduledTime   time.Time         `json:"scheduled_time"`
	DurationMinutes int               `json:"duration_minutes"`
	Mode            models.DebateMode `json:"mode"`
	Type            models.DebateType `json:"type"`
	Visibility      models.Visibility `json:"visibility"`
	Rounds          int               `json:"rounds"`
	TimePerTurn     int               `json:"time_per_turn"`
	MaxParticipants int               `json:"max_participants"`
	Resources       []string          `json:"resources"`
}

// CreateRoom 處理創建新房間的請求
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input createRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	room, err := h.roomService.CreateRoom(userID, service.RoomInput{
		Topic:           input.Topic,
		Description:     input.Description,
		ScheduledTime:   input.ScheduledTime,
		DurationMinutes: input.DurationMinutes,
		Mode:            input.Mode,
		Type:            input.Type,
		Visibility:      input.Visibility,
		Rounds:          input.Rounds,
		TimePerTurn:     input.TimePerTurn,
		MaxParticipants: input.MaxParticipants,
		Resources:       input.Resources,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// ListRooms 列出公開房間，可用 ?status= 過濾
func (h *RoomHandler) ListRooms(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	rooms, err := h.roomService.ListRooms(models.RoomStatus(c.Query("status")), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom 處理獲取房間訊息的請求
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	room, err := h.roomService.GetRoom(roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// GetRoomByCode 以房間代碼查詢
func (h *RoomHandler) GetRoomByCode(c *gin.Context) {
	room, err := h.roomService.GetRoomByCode(c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

type joinInput struct {
	RoomCode string       `json:"room_code" binding:"required"`
	Team     *models.Team `json:"team"`
}

// JoinRoom 以辯手身份加入房間
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var input joinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	p, err := h.roomService.JoinAsDebater(userID, input.RoomCode, input.Team)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// JoinAsSpectator 以觀眾身份加入房間
func (h *RoomHandler) JoinAsSpectator(c *gin.Context) {
	var input joinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	p, err := h.roomService.JoinAsSpectator(userID, input.RoomCode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// LeaveRoom 處理離開房間的請求
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	participantID, ok := paramID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	if err := h.roomService.Leave(participantID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}
