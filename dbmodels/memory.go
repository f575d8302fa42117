package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MemoryTypeShortTerm = "short_term"
	MemoryTypeLongTerm  = "long_term"
	MemoryTypeSummary   = "summary"
)

const (
	MinImportance = 0
	MaxImportance = 10
)

type Memory struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(255);index;not null" json:"user_id"`
	MemoryType string    `gorm:"type:varchar(32);index;not null" json:"memory_type"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	Importance int       `gorm:"default:5" json:"importance"`
	Topic      string    `gorm:"type:varchar(255)" json:"topic"`
	Tags       []string  `gorm:"serializer:json" json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m *Memory) BeforeCreate(tx *gorm.DB) error {
	m.ID = uuid.New()
	return m.validate()
}

func (m *Memory) BeforeSave(tx *gorm.DB) error {
	// Importance stays in [0,10] no matter what the caller hands us.
	if m.Importance < MinImportance {
		m.Importance = MinImportance
	}
	if m.Importance > MaxImportance {
		m.Importance = MaxImportance
	}
	return nil
}

func (m *Memory) validate() error {
	if m.Content == "" {
		return fmt.Errorf("memory content must not be empty")
	}
	switch m.MemoryType {
	case MemoryTypeShortTerm, MemoryTypeLongTerm, MemoryTypeSummary:
	case "":
		m.MemoryType = MemoryTypeShortTerm
	default:
		return fmt.Errorf("unknown memory type: %s", m.MemoryType)
	}
	return nil
}
