package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/middleware"
	"debate_arena/internal/service"
)

// DebateHandler 處理辯論進行中的請求
type DebateHandler struct {
	debateService *service.DebateService
	logger        *zap.Logger
}

// NewDebateHandler 創建一個新的 DebateHandler 實例
func NewDebateHandler(debateService *service.DebateService, logger *zap.Logger) *DebateHandler {
	return &DebateHandler{debateService: debateService, logger: logger}
}

type submitTurnInput struct {
	Content     string `json:"content" binding:"required"`
	RoundNumber int    `json:"round_number"`
	TurnNumber  int    `json:"turn_number"`
}

// Status 回傳房間、參與者與發言數
func (h *DebateHandler) Status(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	status, err := h.debateService.Status(roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Transcript 依 (round, turn) 排序回傳所有發言
func (h *DebateHandler) Transcript(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	turns, err := h.debateService.Transcript(roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, turns)
}

// SubmitTurn 提交文字發言
func (h *DebateHandler) SubmitTurn(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input submitTurnInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := middleware.UserID(c)
	turn, err := h.debateService.SubmitTurn(roomID, userID, service.TurnInput{
		Content:     input.Content,
		RoundNumber: input.RoundNumber,
		TurnNumber:  input.TurnNumber,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, turn)
}

// SubmitAudio 提交語音發言，multipart 欄位 audio 為檔案
func (h *DebateHandler) SubmitAudio(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	userID, _ := middleware.UserID(c)
	turn, err := h.debateService.SubmitAudio(roomID, userID, service.TurnInput{
		Content:     formValue(c, "content"),
		RoundNumber: formInt(c, "round_number"),
		TurnNumber:  formInt(c, "turn_number"),
	}, fileHeader.Filename, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, turn)
}

// EndDebate 由主持人結束辯論
func (h *DebateHandler) EndDebate(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	userID, _ := middleware.UserID(c)
	result, err := h.debateService.EndDebate(roomID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "debate ended", "result": result})
}

// Result 回傳已結束辯論的結果
func (h *DebateHandler) Result(c *gin.Context) {
	roomID, ok := paramID(c, "id")
	if !ok {
		return
	}

	result, err := h.debateService.Result(roomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type finalScoreInput struct {
	RoomID uint `json:"room_id" binding:"required"`
}

// FinalScore 計算每位辯手的平均分數與加權總分
func (h *DebateHandler) FinalScore(c *gin.Context) {
	var input finalScoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cards, err := h.debateService.FinalScore(input.RoomID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": input.RoomID, "scores": cards})
}

// multipart 欄位沒有時退回查詢參數
func formValue(c *gin.Context, key string) string {
	if v, ok := c.GetPostForm(key); ok {
		return v
	}
	return c.Query(key)
}

func formInt(c *gin.Context, key string) int {
	n, _ := strconv.Atoi(formValue(c, key))
	return n
}
