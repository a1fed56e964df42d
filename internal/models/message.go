package models

import "time"

// EventType 房間即時頻道的事件類型
type EventType string

const (
	EventParticipantJoined EventType = "participant_joined"
	EventTurnSubmitted     EventType = "turn_submitted"
	EventDebateEnded       EventType = "debate_ended"
	EventSystem            EventType = "system_message"
	EventChat              EventType = "chat"
)

// Event 代表一個透過 WebSocket 廣播到房間的事件
type Event struct {
	Type      EventType `json:"type"`
	RoomID    uint      `json:"room_id"`
	UserID    uint      `json:"user_id,omitempty"`
	Content   string    `json:"content,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSystemEvent 創建一個新的系統事件
func NewSystemEvent(roomID uint, content string) Event {
	return Event{
		Type:      EventSystem,
		Content:   content,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}
}
