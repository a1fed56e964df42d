package models

import "time"

// Room 表示一個辯論房間
type Room struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	RoomCode        string     `gorm:"uniqueIndex;size:6" json:"room_code"`
	Topic           string     `gorm:"not null" json:"topic"`
	Description     string     `json:"description"`
	ScheduledTime   time.Time  `json:"scheduled_time"`
	DurationMinutes int        `json:"duration_minutes"`
	Mode            DebateMode `gorm:"type:varchar(10)" json:"mode"`
	Type            DebateType `gorm:"type:varchar(12)" json:"type"`
	Visibility      Visibility `gorm:"type:varchar(10)" json:"visibility"`
	Rounds          int        `json:"rounds"`
	TimePerTurn     int        `json:"time_per_turn"` // 以分鐘為單位
	MaxParticipants int        `json:"max_participants"`
	Resources       []string   `gorm:"serializer:json" json:"resources"`
	HostID          uint       `gorm:"index" json:"host_id"`
	Status          RoomStatus `gorm:"type:varchar(10);index" json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
}

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting   RoomStatus = "waiting"
	RoomStatusOngoing   RoomStatus = "ongoing"
	RoomStatusCompleted RoomStatus = "completed"
)

type DebateMode string

const (
	ModeText  DebateMode = "text"
	ModeAudio DebateMode = "audio"
	ModeBoth  DebateMode = "both"
)

type DebateType string

const (
	TypeIndividual DebateType = "individual"
	TypeTeam       DebateType = "team"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// SeatCount 回傳需要坐滿的辯手席位數。
// 以伺服器宣告的 MaxParticipants 為準，未設定時才依房間類型推算。
func (r *Room) SeatCount() int {
	if r.MaxParticipants > 0 {
		return r.MaxParticipants
	}
	if r.Type == TypeTeam {
		return 4
	}
	return 2
}

// AllowsText 表示房間是否接受文字發言
func (r *Room) AllowsText() bool {
	return r.Mode != ModeAudio
}

// AllowsAudio 表示房間是否接受語音發言
func (r *Room) AllowsAudio() bool {
	return r.Mode == ModeAudio || r.Mode == ModeBoth
}
