package watch

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Service is the facade payment flows use: durable scheduling inside
// their transaction plus post-commit timer arming.
type Service struct {
	repo      *Repository
	scheduler *Scheduler
}

// NewService creates watch service
func NewService(repo *Repository, scheduler *Scheduler) *Service {
	return &Service{repo: repo, scheduler: scheduler}
}

// ScheduleTx stores the watch inside the caller's transaction. Arm the
// returned watch only after the transaction commits.
func (s *Service) ScheduleTx(ctx context.Context, tx *sqlx.Tx, userID int64, channelID string, reward, taskID int64, dueAt time.Time) (*Watch, error) {
	return s.repo.ScheduleTx(ctx, tx, userID, channelID, reward, taskID, dueAt, StageInitial)
}

// Arm registers the in-memory timer for a committed watch.
func (s *Service) Arm(w *Watch) {
	s.scheduler.Arm(w)
}
