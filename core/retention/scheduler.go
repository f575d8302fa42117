package retention

import (
	"github.com/mudler/xlog"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	models "github.com/memorai/memorai/dbmodels"
)

// Pruner is the slice of the memory engine the scheduler needs.
type Pruner interface {
	PruneBelowImportance(userID string, retentionDays, minImportance int) (int64, error)
}

// Scheduler runs the importance-aware pruner over every known user on a
// cron schedule. The on-demand path stays on the HTTP surface; this is
// the periodic leg.
type Scheduler struct {
	db            *gorm.DB
	pruner        Pruner
	spec          string
	retentionDays int
	minImportance int
	cron          *cron.Cron
}

func NewScheduler(db *gorm.DB, pruner Pruner, spec string, retentionDays, minImportance int) *Scheduler {
	return &Scheduler{
		db:            db,
		pruner:        pruner,
		spec:          spec,
		retentionDays: retentionDays,
		minImportance: minImportance,
		cron:          cron.New(),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if _, err := s.RunOnce(); err != nil {
			xlog.Error("Scheduled prune failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	xlog.Info("Retention scheduler started", "schedule", s.spec, "retention_days", s.retentionDays, "min_importance", s.minImportance)
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// RunOnce prunes every user and returns the total rows removed.
func (s *Scheduler) RunOnce() (int64, error) {
	var userIDs []string
	if err := s.db.Model(&models.User{}).Pluck("user_id", &userIDs).Error; err != nil {
		return 0, err
	}

	var total int64
	for _, userID := range userIDs {
		count, err := s.pruner.PruneBelowImportance(userID, s.retentionDays, s.minImportance)
		if err != nil {
			return total, err
		}
		total += count
	}

	xlog.Info("Retention sweep done", "users", len(userIDs), "pruned", total)
	return total, nil
}
