package models

import "time"

// User 表示系統中的用戶
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Username  string    `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password  string    `gorm:"not null" json:"-"`                    // 密碼，json 序列化時會被忽略
	XP        int       `json:"xp"`
	CreatedAt time.Time `json:"created_at"`
}
