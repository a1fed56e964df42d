package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
)

// SpectatorHandler 處理觀眾反應
type SpectatorHandler struct {
	spectatorService *service.SpectatorService
	logger           *zap.Logger
}

func NewSpectatorHandler(spectatorService *service.SpectatorService, logger *zap.Logger) *SpectatorHandler {
	return &SpectatorHandler{spectatorService: spectatorService, logger: logger}
}

type rewardInput struct {
	ParticipantID uint   `json:"participant_id" binding:"required"`
	ReactionType  string `json:"reaction_type" binding:"required"`
}

// Reward 對房間 :id 內的辯手送出反應
func (h *SpectatorHandler) Reward(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input rewardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	vote, err := h.spectatorService.Reward(roomID, userID, input.ParticipantID, input.ReactionType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, vote)
}

// Stats 回傳房間的觀眾反應統計
func (h *SpectatorHandler) Stats(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	stats, err := h.spectatorService.Stats(roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
