package models

import "time"

// Participant 表示用戶在某個房間中的身份
type Participant struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RoomID      uint      `gorm:"index;not null" json:"room_id"`
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `gorm:"type:varchar(10)" json:"role"`
	Team        *Team     `gorm:"type:varchar(10)" json:"team"`
	IsReady     bool      `json:"is_ready"`
	Score       Scores    `gorm:"serializer:json" json:"score"`
	XPEarned    int       `json:"xp_earned"`
	CreatedAt   time.Time `json:"created_at"`
}

// Role 定義參與者角色
type Role string

const (
	RoleDebater   Role = "debater"   // 辯論者角色
	RoleSpectator Role = "spectator" // 觀眾角色
)

type Team string

const (
	TeamFor     Team = "for"
	TeamAgainst Team = "against"
)

// Scores 三項評分
type Scores struct {
	Logic       float64 `json:"logic"`
	Credibility float64 `json:"credibility"`
	Rhetoric    float64 `json:"rhetoric"`
}

// IsDebater 判斷參與者是否擁有發言權
func (p Participant) IsDebater() bool {
	return p.Role == RoleDebater
}

// Debaters 從名單中篩出辯手
func Debaters(participants []Participant) []Participant {
	debaters := make([]Participant, 0, len(participants))
	for _, p := range participants {
		if p.IsDebater() {
			debaters = append(debaters, p)
		}
	}
	return debaters
}
