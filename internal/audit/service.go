package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"

	"alessacloud/internal/models"
)

// Service is the audit logging service. A service constructed without a
// database is disabled and swallows writes.
type Service struct {
	db *pg.DB
}

// NewService creates a new audit logging service
func NewService(db *pg.DB) *Service {
	return &Service{
		db: db,
	}
}

// Log records an audit log entry
func (s *Service) Log(ctx context.Context, log *models.AuditLog) error {
	if s.db == nil {
		return nil
	}

	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}

	_, err := s.db.ModelContext(ctx, log).Insert()
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// LogAction is a convenience method for logging an action
func (s *Service) LogAction(ctx context.Context, tenantID, actorID uuid.UUID, action models.AuditAction, resourceType, resourceID, description, ipAddress string) error {
	log := &models.AuditLog{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		IPAddress:    ipAddress,
		Succeeded:    true,
		CreatedAt:    time.Now(),
	}

	return s.Log(ctx, log)
}

// LogChange records a change to a resource, capturing before/after state
func (s *Service) LogChange(ctx context.Context, tenantID, actorID uuid.UUID, action models.AuditAction, resourceType, resourceID, description string, oldValue, newValue interface{}, ipAddress string) error {
	log := &models.AuditLog{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		IPAddress:    ipAddress,
		Succeeded:    true,
		CreatedAt:    time.Now(),
	}

	if err := log.SetOldValue(oldValue); err != nil {
		return err
	}
	if err := log.SetNewValue(newValue); err != nil {
		return err
	}

	return s.Log(ctx, log)
}

// LogFailure records a failed action
func (s *Service) LogFailure(ctx context.Context, tenantID, actorID uuid.UUID, action models.AuditAction, resourceType, resourceID, description, reason, ipAddress string) error {
	log := &models.AuditLog{
		ID:           uuid.New(),
		TenantID:     tenantID,
		ActorID:      actorID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Description:  description,
		IPAddress:    ipAddress,
		CreatedAt:    time.Now(),
	}
	log.SetFailed(reason)

	return s.Log(ctx, log)
}

// List retrieves a tenant's audit log entries, newest first
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, page, pageSize int) ([]*models.AuditLog, int, error) {
	if s.db == nil {
		return nil, 0, nil
	}

	var logs []*models.AuditLog

	offset := (page - 1) * pageSize

	q := s.db.ModelContext(ctx, &logs).
		Where("tenant_id = ?", tenantID)

	total, err := q.Clone().Count()
	if err != nil {
		return nil, 0, err
	}

	err = q.
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Select()

	if err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}
