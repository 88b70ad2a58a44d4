package scheduler

import (
	"time"

	"github.com/ikkim/pizza-delivery-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// CartPurger deletes carts that have been empty for longer than retention.
type CartPurger interface {
	PurgeStaleCarts(retention time.Duration) (int64, error)
}

type CartCleanupScheduler struct {
	cron      *cron.Cron
	purger    CartPurger
	spec      string
	retention time.Duration
}

func NewCartCleanupScheduler(purger CartPurger, spec string, retention time.Duration) *CartCleanupScheduler {
	return &CartCleanupScheduler{
		cron:      cron.New(),
		purger:    purger,
		spec:      spec,
		retention: retention,
	}
}

func (s *CartCleanupScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		logger.Error("Failed to add cron job for cart cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Cart cleanup scheduler started", map[string]interface{}{
		"spec":      s.spec,
		"retention": s.retention.String(),
	})
	return nil
}

// RunOnce performs one cleanup pass. Errors are logged, never returned, so a
// failed run does not stop the schedule.
func (s *CartCleanupScheduler) RunOnce() {
	logger.Info("Starting scheduled cart cleanup")

	deleted, err := s.purger.PurgeStaleCarts(s.retention)
	if err != nil {
		logger.Error("Failed to clean up stale carts", err)
		return
	}

	logger.Info("Cart cleanup finished", map[string]interface{}{
		"deleted": deleted,
	})
}

func (s *CartCleanupScheduler) Stop() {
	logger.Info("Stopping cart cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Cart cleanup scheduler stopped")
}
