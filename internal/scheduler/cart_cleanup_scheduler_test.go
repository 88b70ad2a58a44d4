package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakePurger struct {
	calls     int
	retention time.Duration
	err       error
}

func (p *fakePurger) PurgeStaleCarts(retention time.Duration) (int64, error) {
	p.calls++
	p.retention = retention
	return 3, p.err
}

func TestCartCleanupScheduler_RunOnce(t *testing.T) {
	purger := &fakePurger{}
	s := NewCartCleanupScheduler(purger, "0 4 * * *", 48*time.Hour)

	s.RunOnce()

	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 48*time.Hour, purger.retention)
}

func TestCartCleanupScheduler_RunOnceSwallowsErrors(t *testing.T) {
	purger := &fakePurger{err: errors.New("db down")}
	s := NewCartCleanupScheduler(purger, "0 4 * * *", time.Hour)

	assert.NotPanics(t, s.RunOnce)
	assert.Equal(t, 1, purger.calls)
}

func TestCartCleanupScheduler_StartRejectsBadSpec(t *testing.T) {
	s := NewCartCleanupScheduler(&fakePurger{}, "not a cron spec", time.Hour)
	assert.Error(t, s.Start())
}

func TestCartCleanupScheduler_StartStop(t *testing.T) {
	s := NewCartCleanupScheduler(&fakePurger{}, "@every 1h", time.Hour)
	assert.NoError(t, s.Start())
	s.Stop()
}
