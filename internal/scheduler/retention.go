// Package scheduler runs the activity log retention sweep on a cron
// schedule. The sweep is the only background job in the process.
package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/database/activities"
)

// RetentionSweeper prunes activity rows older than the configured number
// of days. A retention of 0 disables the sweep entirely.
type RetentionSweeper struct {
	activities    *activities.Repository
	retentionDays int
	schedule      string

	cron      *cron.Cron
	mu        sync.Mutex
	isRunning bool
}

func NewRetentionSweeper(repo *activities.Repository, retentionDays int, schedule string) *RetentionSweeper {
	return &RetentionSweeper{
		activities:    repo,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start schedules the sweep. No-op when retention is disabled.
func (s *RetentionSweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if s.retentionDays <= 0 {
		log.Printf("Activity retention sweep: disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep()
	})
	if err != nil {
		return fmt.Errorf("failed to schedule retention sweep '%s': %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Activity retention sweep: started with schedule '%s', retention %d days", s.schedule, s.retentionDays)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	log.Printf("Activity retention sweep: stopped")
}

// Sweep deletes activity rows older than the retention cutoff and reports
// how many went.
func (s *RetentionSweeper) Sweep() {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.activities.DeleteOlderThan(cutoff)
	if err != nil {
		log.Printf("Activity retention sweep failed: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("Activity retention sweep removed %d entries older than %s", deleted, cutoff.Format("2006-01-02"))
	}
}
