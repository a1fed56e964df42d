package debate

import "debate_arena/internal/models"

// DefaultDebaterCount 名單未知或為空時使用的辯手人數
const DefaultDebaterCount = 2

// Position 目前的輪次與輪內第幾位發言，皆從 1 開始
type Position struct {
	Round int `json:"current_round"`
	Turn  int `json:"current_turn"`
}

// Progress 由已提交的發言總數推算目前輪次與輪內順序。
// participantCount 必須為正數，呼叫端應先經過 DebaterCountOrDefault。
func Progress(totalTurns, participantCount, maxRounds int) Position {
	if totalTurns < 0 {
		totalTurns = 0
	}
	if participantCount <= 0 {
		participantCount = DefaultDebaterCount
	}
	if maxRounds < 1 {
		maxRounds = 1
	}

	round := totalTurns/participantCount + 1
	if round > maxRounds {
		round = maxRounds
	}

	return Position{
		Round: round,
		Turn:  totalTurns%participantCount + 1,
	}
}

// DebaterCountOrDefault 回傳名單中的辯手人數，為 0 時回傳 DefaultDebaterCount
func DebaterCountOrDefault(participants []models.Participant) int {
	n := len(models.Debaters(participants))
	if n == 0 {
		return DefaultDebaterCount
	}
	return n
}

// ExpectedTotalTurns 所有輪次結束時應有的發言總數
func ExpectedTotalTurns(maxRounds, debaterCount int) int {
	return maxRounds * debaterCount
}
