package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditOperation is the kind of mutation recorded.
type AuditOperation string

const (
	AuditInsert AuditOperation = "INSERT"
	AuditUpdate AuditOperation = "UPDATE"
	AuditDelete AuditOperation = "DELETE"
)

// Audited entity types.
const (
	EntityDailyLog = "daily_log"
	EntityReport   = "report"
)

// AuditLog is an append-only record of a mutation. Rows are never updated.
type AuditLog struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType string         `gorm:"not null;index:idx_audit_logs_entity" json:"entity_type"`
	EntityID   string         `gorm:"type:uuid;not null;index:idx_audit_logs_entity" json:"entity_id"`
	Operation  AuditOperation `gorm:"not null" json:"operation"`
	ActorID    string         `gorm:"type:uuid;not null;index" json:"actor_id"`
	IPAddress  string         `json:"ip_address"`
	Changes    datatypes.JSON `json:"changes"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

// BeforeCreate assigns the row id.
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}

// FieldChange is the before/after value of one field.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// ChangeSet is serialised into AuditLog.Changes.
type ChangeSet struct {
	Fields   map[string]FieldChange `json:"fields"`
	Metadata map[string]any         `json:"metadata,omitempty"`
}
