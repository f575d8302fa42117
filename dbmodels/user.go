package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Recognized profile keys. The profile blob stays free-form in storage,
// but only these keys are read back by the context builder.
const (
	ProfileName               = "name"
	ProfileLanguage           = "language"
	ProfileTonePreference     = "tone_preference"
	ProfileCustomInstructions = "custom_instructions"
)

type User struct {
	ID           uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	UserID       string            `gorm:"type:varchar(255);uniqueIndex;not null" json:"user_id"`
	Profile      map[string]string `gorm:"serializer:json" json:"profile"`
	SystemPrompt string            `gorm:"type:text" json:"system_prompt"`
	MessageCount int               `gorm:"default:0" json:"message_count"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	LastActive   time.Time         `json:"last_active"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	u.ID = uuid.New()
	if u.Profile == nil {
		u.Profile = map[string]string{}
	}
	if u.LastActive.IsZero() {
		u.LastActive = time.Now().UTC()
	}
	return
}
