// Package audit provides database operations for the audit log.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/entities"
)

// Repository handles all audit log database operations.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Insert appends an audit entry.
func (r *Repository) Insert(entry *entities.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	return r.db.Create(entry).Error
}

// ListRecent retrieves the most recent entries, newest first.
func (r *Repository) ListRecent(limit int) ([]entities.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []entities.AuditLog
	err := r.db.Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

// PurgeOlderThan deletes entries created before the cutoff and returns how
// many were removed.
func (r *Repository) PurgeOlderThan(cutoff time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", cutoff).Delete(&entities.AuditLog{})
	return result.RowsAffected, result.Error
}
