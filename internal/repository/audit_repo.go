package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"worklog/internal/models"
	"worklog/internal/pagination"
)

// AuditFilter narrows audit queries. Nil fields do not filter.
type AuditFilter struct {
	EntityType *string
	EntityID   *string
	ActorID    *string
	From       *time.Time
	To         *time.Time
}

// AuditRepository appends and reads audit entries. There is no update or delete.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page pagination.PageRequest) ([]models.AuditLog, int64, error)
}

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepo creates an AuditRepository.
func NewAuditRepo(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditRepo) List(ctx context.Context, f AuditFilter, page pagination.PageRequest) ([]models.AuditLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.EntityType != nil {
		q = q.Where("entity_type = ?", *f.EntityType)
	}
	if f.EntityID != nil {
		q = q.Where("entity_id = ?", *f.EntityID)
	}
	if f.ActorID != nil {
		q = q.Where("actor_id = ?", *f.ActorID)
	}
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	err := base.
		Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
