package memory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	models "github.com/memorai/memorai/dbmodels"
)

// Storage is the row-level access layer for memories. The Engine sits on
// top of it; handlers that just need a listing can use it directly.
type Storage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// Save appends a single memory row.
func (s *Storage) Save(userID, content, memoryType string, importance int, topic string, tags []string) (*models.Memory, error) {
	mem := &models.Memory{
		UserID:     userID,
		MemoryType: memoryType,
		Content:    content,
		Importance: importance,
		Topic:      topic,
		Tags:       tags,
	}
	if err := s.db.Create(mem).Error; err != nil {
		return nil, err
	}
	return mem, nil
}

// ByUser returns up to limit memories for a user, most important first,
// newest first among equals. Optional memory types narrow the result.
func (s *Storage) ByUser(userID string, limit int, memoryTypes ...string) ([]models.Memory, error) {
	query := s.db.Where("user_id = ?", userID)
	if len(memoryTypes) > 0 {
		query = query.Where("memory_type IN ?", memoryTypes)
	}

	var memories []models.Memory
	err := query.
		Order("importance DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&memories).Error
	return memories, err
}

// Recent returns up to limit memories created within the last N days,
// newest first.
func (s *Storage) Recent(userID string, days, limit int) ([]models.Memory, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	var memories []models.Memory
	err := s.db.
		Where("user_id = ? AND created_at >= ?", userID, cutoff).
		Order("created_at DESC").
		Limit(limit).
		Find(&memories).Error
	return memories, err
}

func (s *Storage) UpdateImportance(id uuid.UUID, importance int) error {
	if importance < models.MinImportance {
		importance = models.MinImportance
	}
	if importance > models.MaxImportance {
		importance = models.MaxImportance
	}
	return s.db.Model(&models.Memory{}).
		Where("id = ?", id).
		Update("importance", importance).Error
}

func (s *Storage) Delete(id uuid.UUID) error {
	return s.db.Where("id = ?", id).Delete(&models.Memory{}).Error
}

// PruneOlderThan removes every memory older than the retention horizon,
// regardless of importance. A row created exactly at the cutoff instant
// survives.
func (s *Storage) PruneOlderThan(userID string, retentionDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	res := s.db.
		Where("user_id = ? AND created_at < ?", userID, cutoff).
		Delete(&models.Memory{})
	return res.RowsAffected, res.Error
}

// PruneBelowImportance removes memories that are both older than the
// retention horizon and below the importance threshold.
func (s *Storage) PruneBelowImportance(userID string, retentionDays, minImportance int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	res := s.db.
		Where("user_id = ? AND created_at < ? AND importance < ?", userID, cutoff, minImportance).
		Delete(&models.Memory{})
	return res.RowsAffected, res.Error
}
