package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// ChatMessage rows are append-only: nothing in the server updates or
// deletes them once written.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(255);index;not null" json:"user_id"`
	Role       string    `gorm:"type:varchar(32);not null" json:"role"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	TokensUsed int       `gorm:"default:0" json:"tokens_used"`
	Timestamp  time.Time `json:"timestamp"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	m.ID = uuid.New()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	if m.TokensUsed < 0 {
		m.TokensUsed = 0
	}
	return
}
