package models

import "time"

// SpectatorVote 觀眾對某位參與者送出的反應
type SpectatorVote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoomID       uint      `gorm:"index;not null" json:"room_id"`
	SpectatorID  uint      `json:"spectator_id"` // User ID
	TargetID     uint      `json:"target_id"`    // Participant ID
	ReactionType string    `json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// Result 辯論結束後的結果
type Result struct {
	ID                 uint               `gorm:"primaryKey" json:"id"`
	RoomID             uint               `gorm:"uniqueIndex" json:"room_id"`
	WinnerID           *uint              `json:"winner_id"`
	Scores             map[uint]ScoreCard `gorm:"serializer:json" json:"scores_json"`
	Summary            string             `json:"summary"`
	SpectatorInfluence map[uint]int       `gorm:"serializer:json" json:"spectator_influence"`
	CreatedAt          time.Time          `json:"created_at"`
}

// ScoreCard 單一辯手的平均分數與加權總分
type ScoreCard struct {
	Scores
	WeightedTotal float64 `json:"weighted_total"`
	TurnCount     int     `json:"turn_count"`
}
