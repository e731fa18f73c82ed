// Package repository holds the gorm-backed data access for daily logs,
// reports, audit entries and the read-only employee directory.
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"worklog/internal/models"
)

// Store groups the repositories bound to one database handle. A Store handed
// to an InTx callback is bound to that transaction, so everything done through
// it commits or rolls back together.
type Store interface {
	Logs() DailyLogRepository
	Reports() ReportRepository
	Audit() AuditRepository
	Directory() DirectoryRepository

	// InTx runs fn inside a transaction. The transaction rolls back when fn
	// returns an error and the error is returned unchanged.
	InTx(ctx context.Context, fn func(tx Store) error) error

	// LockEmployee takes a row lock on the employee until the transaction
	// ends. Every transaction that mutates an employee's logs or reports
	// takes it first, which serialises them per employee.
	LockEmployee(ctx context.Context, empID string) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore returns a Store backed by db.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Logs() DailyLogRepository       { return &dailyLogRepo{db: s.db} }
func (s *gormStore) Reports() ReportRepository      { return &reportRepo{db: s.db} }
func (s *gormStore) Audit() AuditRepository         { return &auditRepo{db: s.db} }
func (s *gormStore) Directory() DirectoryRepository { return &directoryRepo{db: s.db} }

func (s *gormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

// LockEmployee issues SELECT ... FOR UPDATE. SQLite has no row locks and the
// driver drops the clause; there the database-wide write lock serialises
// writers instead. Returns gorm.ErrRecordNotFound for unknown employees.
func (s *gormStore) LockEmployee(ctx context.Context, empID string) error {
	var emp models.Employee
	return s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", empID).
		Take(&emp).Error
}
