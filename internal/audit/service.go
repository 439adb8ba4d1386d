// Package audit provides high-level audit logging around the audit log
// repository. Writes happen in the background so request handlers never
// block on audit persistence.
package audit

import (
	"encoding/json"
	"log"

	"github.com/openshelf/openshelf/internal/database/audit"
	"github.com/openshelf/openshelf/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(entry *entities.AuditLog) error {
	return s.repo.Insert(entry)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(entry *entities.AuditLog) {
	go func() {
		if err := s.repo.Insert(entry); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Record captures an action on an entity. A nil userID marks a system or
// anonymous actor. Meta values that fail to marshal are dropped rather
// than failing the action being audited.
func (s *Service) Record(userID *uint, action, entity string, entityID uint, meta map[string]any) {
	entry := &entities.AuditLog{
		UserID:   userID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}

	if len(meta) > 0 {
		if raw, err := json.Marshal(meta); err == nil {
			entry.Meta = string(raw)
		}
	}

	s.LogAsync(entry)
}
