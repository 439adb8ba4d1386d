// Package scheduler runs periodic maintenance: audit log retention and
// expired cache entry sweeping.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/tasks"
)

// CacheSweeper removes expired entries from an in-memory cache.
type CacheSweeper interface {
	Sweep() int
}

// MaintenanceScheduler manages the periodic maintenance jobs.
type MaintenanceScheduler struct {
	cfg     config.Maintenance
	audit   config.Audit
	tasks   *tasks.Client
	sweeper CacheSweeper

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

// NewMaintenanceScheduler creates a new scheduler instance.
func NewMaintenanceScheduler(cfg config.Maintenance, auditCfg config.Audit, taskClient *tasks.Client, sweeper CacheSweeper) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		cfg:     cfg,
		audit:   auditCfg,
		tasks:   taskClient,
		sweeper: sweeper,
		cron:    cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if maintenance is enabled.
func (s *MaintenanceScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Maintenance scheduler: disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.AuditSchedule, s.runAuditPurge); err != nil {
		return fmt.Errorf("failed to schedule audit purge: %w", err)
	}
	if _, err := s.cron.AddFunc(s.cfg.CacheSchedule, s.runCacheSweep); err != nil {
		return fmt.Errorf("failed to schedule cache sweep: %w", err)
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Maintenance scheduler: started (audit purge '%s', cache sweep '%s')",
		s.cfg.AuditSchedule, s.cfg.CacheSchedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs to complete.
func (s *MaintenanceScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Maintenance scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *MaintenanceScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// runAuditPurge enqueues the audit retention task. The purge itself runs on
// the task queue so it shares retry behavior with other background work.
func (s *MaintenanceScheduler) runAuditPurge() {
	if s.tasks == nil {
		return
	}

	task := tasks.CleanupAuditTask{RetentionDays: s.audit.RetentionDays}
	if _, err := s.tasks.Add(task).Save(); err != nil {
		log.Printf("Maintenance: failed to enqueue audit purge: %v", err)
		return
	}
	log.Printf("Maintenance: audit purge enqueued (retention %d days)", s.audit.RetentionDays)
}

// runCacheSweep removes expired listing cache entries in place.
func (s *MaintenanceScheduler) runCacheSweep() {
	if s.sweeper == nil {
		return
	}

	if removed := s.sweeper.Sweep(); removed > 0 {
		log.Printf("Maintenance: swept %d expired cache entries", removed)
	}
}
