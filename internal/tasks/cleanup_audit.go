package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// AuditLogCleaner provides the ability to delete old audit log entries.
type AuditLogCleaner interface {
	PurgeOlderThan(cutoff time.Time) (int64, error)
}

// CleanupAuditTask removes audit log entries older than the retention
// period. The maintenance scheduler enqueues one per day.
type CleanupAuditTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditProcessor creates a processor function for CleanupAuditTask.
func CleanupAuditProcessor(cleaner AuditLogCleaner) backlite.QueueProcessor[CleanupAuditTask] {
	return func(ctx context.Context, task CleanupAuditTask) error {
		if cleaner == nil {
			return fmt.Errorf("audit log cleaner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = 90
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)

		deleted, err := cleaner.PurgeOlderThan(cutoff)
		if err != nil {
			return fmt.Errorf("cleanup audit log: %w", err)
		}

		log.Printf("[TASK] Purged %d audit entries older than %d days", deleted, retentionDays)
		return nil
	}
}

// NewCleanupAuditQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditQueue(cleaner AuditLogCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditProcessor(cleaner))
}
