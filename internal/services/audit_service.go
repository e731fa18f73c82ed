package services

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	apperrors "worklog/internal/errors"
	"worklog/internal/logger"
	"worklog/internal/metrics"
	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/policy"
	"worklog/internal/repository"
)

// auditService handles audit log recording.
type auditService struct {
	store repository.Store
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(store repository.Store) AuditServicer {
	return &auditService{store: store}
}

// Record writes the entry on the caller's store. Unlike request logging, a
// failed audit write is returned so the surrounding transaction rolls back.
func (s *auditService) Record(ctx context.Context, store repository.Store, e AuditEntry) error {
	if e.Changes.Fields == nil {
		e.Changes.Fields = map[string]models.FieldChange{}
	}
	data, err := json.Marshal(e.Changes)
	if err != nil {
		metrics.AuditFailures.Inc()
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("marshal audit changes: %w", err))
	}

	entry := &models.AuditLog{
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Operation:  e.Operation,
		ActorID:    e.Actor.ID,
		IPAddress:  e.Actor.IP,
		Changes:    datatypes.JSON(data),
	}

	if err := store.Audit().Create(ctx, entry); err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"actor_id", e.Actor.ID,
			"operation", e.Operation,
			"entity_type", e.EntityType,
			"entity_id", e.EntityID,
		)
		metrics.AuditFailures.Inc()
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	metrics.AuditRecords.WithLabelValues(e.EntityType, string(e.Operation)).Inc()
	return nil
}

// List returns audit entries newest first. Only HR admins may read the trail.
func (s *auditService) List(ctx context.Context, actor Actor, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if policy.ScopeFor(actor.Role, policy.AuditRead) != policy.ScopeAny {
		return nil, apperrors.ErrForbidden
	}
	page.Defaults()

	entries, total, err := s.store.Audit().List(ctx, repository.AuditFilter{
		EntityType: filter.EntityType,
		EntityID:   filter.EntityID,
		ActorID:    filter.ActorID,
		From:       filter.From,
		To:         filter.To,
	}, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(entries, page.Page, page.Limit, total)
	return &resp, nil
}

// fieldDiff collects changed fields into a ChangeSet.
type fieldDiff map[string]models.FieldChange

func (d fieldDiff) set(name string, oldValue, newValue any) {
	d[name] = models.FieldChange{Old: oldValue, New: newValue}
}

// setIfChanged records the field only when the two comparable values differ.
func (d fieldDiff) setIfChanged(name string, oldValue, newValue any) {
	if oldValue != newValue {
		d.set(name, oldValue, newValue)
	}
}
