package models

import "time"

// Turn 表示一次發言，建立後不可修改或刪除
type Turn struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	RoomID      uint       `gorm:"index;not null" json:"room_id"`
	SpeakerID   uint       `gorm:"index;not null" json:"speaker_id"` // Participant ID
	Content     string     `gorm:"type:text" json:"content"`
	AudioURL    *string    `json:"audio_url"`
	RoundNumber int        `json:"round_number"`
	TurnNumber  int        `json:"turn_number"`
	AIFeedback  AIFeedback `gorm:"serializer:json" json:"ai_feedback"`
	Timestamp   time.Time  `json:"timestamp"`
}

// AIFeedback 裁判對單次發言的評分與評語
type AIFeedback struct {
	Logic       float64 `json:"logic"`
	Credibility float64 `json:"credibility"`
	Rhetoric    float64 `json:"rhetoric"`
	Feedback    string  `json:"feedback"`
}

// TurnsInRound 計算指定回合已記錄的發言數
func TurnsInRound(turns []Turn, round int) int {
	n := 0
	for _, t := range turns {
		if t.RoundNumber == round {
			n++
		}
	}
	return n
}
