package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"debate_arena/internal/debate"
	"debate_arena/internal/service"
	"debate_arena/internal/storage"
)

var gateReasons = map[error]debate.Reason{
	debate.ErrNotParticipant:   debate.ReasonNotParticipant,
	debate.ErrSeatsNotFull:     debate.ReasonSeatsNotFull,
	debate.ErrRoundExhausted:   debate.ReasonRoundExhausted,
	debate.ErrAlreadySubmitted: debate.ReasonAlreadySubmittedThisRound,
}

// statusFor 把 service 的錯誤轉成 HTTP 狀態碼
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrParticipantNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrNotHost), errors.Is(err, service.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyArgument),
		errors.Is(err, service.ErrInvalidTeam),
		errors.Is(err, service.ErrModeNotAllowed):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRoomNotOpen),
		errors.Is(err, service.ErrRoomFull),
		errors.Is(err, service.ErrTeamFull),
		errors.Is(err, service.ErrDebateNotOngoing),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	}
	for gateErr := range gateReasons {
		if errors.Is(err, gateErr) {
			// 發言資格不符不是身份驗證失敗，不用 403，避免客戶端誤判為登入失效
			return http.StatusUnprocessableEntity
		}
	}
	return http.StatusInternalServerError
}

// respondError 回傳 {"error": ...}，發言資格錯誤另外附上 reason 代碼
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	for gateErr, reason := range gateReasons {
		if errors.Is(err, gateErr) {
			body["reason"] = reason
			break
		}
	}
	c.JSON(status, body)
}

// paramID 解析路徑中的數字 ID
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
