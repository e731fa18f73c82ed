package services

import (
	"bytes"
	"context"
	"time"

	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/repository"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role models.Role
	IP   string
}

// UpsertLogInput carries a daily log write. An empty EmpID means the actor.
type UpsertLogInput struct {
	EmpID     string
	ProjectID string
	LogDate   models.Date
	Hours     models.Hours
	Notes     string
}

// UpsertLogResult is the stored row and whether it was newly created.
type UpsertLogResult struct {
	Log     *models.DailyLog
	Created bool
}

// LogFilter holds optional filter parameters for listing daily logs.
type LogFilter struct {
	EmpID     *string
	ProjectID *string
	StartDate *models.Date
	EndDate   *models.Date
	Locked    *bool
}

// DailyLogServicer defines the contract for daily log business logic.
type DailyLogServicer interface {
	Upsert(ctx context.Context, actor Actor, in UpsertLogInput) (*UpsertLogResult, error)
	UpsertCurrentWeek(ctx context.Context, actor Actor, in UpsertLogInput) (*UpsertLogResult, error)
	Update(ctx context.Context, actor Actor, id string, hours models.Hours, notes string) (*models.DailyLog, error)
	List(ctx context.Context, actor Actor, filter LogFilter, page pagination.PageRequest) (*pagination.PageResponse[repository.DailyLogRow], error)
	CurrentWeek(ctx context.Context, actor Actor, empID string) ([]repository.DailyLogRow, error)
	// LockRange runs on the caller's transaction.
	LockRange(ctx context.Context, store repository.Store, empID string, start, end models.Date) (int64, error)
}

// AggregateResult is the per-project total for one employee and range.
type AggregateResult struct {
	EmpID       string         `json:"emp_id"`
	StartDate   models.Date    `json:"start_date"`
	EndDate     models.Date    `json:"end_date"`
	WeeklyHours models.HourMap `json:"weekly_hours"`
	TotalHours  models.Hours   `json:"total_hours"`
}

// AggregationServicer defines the contract for summing unlocked hours.
type AggregationServicer interface {
	Aggregate(ctx context.Context, actor Actor, empID string, start, end models.Date) (*AggregateResult, error)
	// Compute reads through store so it sees the caller's transaction.
	Compute(ctx context.Context, store repository.Store, empID string, start, end models.Date) (models.HourMap, error)
}

// ReportDetail is a report with its derived status and employee identity.
type ReportDetail struct {
	models.Report
	Status       models.ReportStatus `json:"status"`
	EmployeeCode string              `json:"employee_code"`
	EmployeeName string              `json:"employee_name"`
}

// CreateReportInput carries a draft creation. An empty EmpID means the actor.
// For DAILY reports a missing period means today.
type CreateReportInput struct {
	EmpID         string
	ReportType    models.ReportType
	WeekStartDate *models.Date
	WeekEndDate   *models.Date
	Content       string
}

// UpdateReportInput edits a report. Submit turns a draft into a submission.
type UpdateReportInput struct {
	ID      string
	Content *string
	Submit  bool
}

// ReportFilter holds optional filter parameters for listing reports.
type ReportFilter struct {
	EmpID         *string
	ReportType    *models.ReportType
	WeekStartDate *models.Date
	WeekEndDate   *models.Date
	Status        *models.ReportStatus
}

// ReportServicer defines the contract for the report lifecycle.
type ReportServicer interface {
	CreateDraft(ctx context.Context, actor Actor, in CreateReportInput) (*ReportDetail, error)
	Submit(ctx context.Context, actor Actor, id string, content *string) (*ReportDetail, error)
	SubmitWeekly(ctx context.Context, actor Actor, content string) (*ReportDetail, error)
	Update(ctx context.Context, actor Actor, in UpdateReportInput) (*ReportDetail, error)
	Get(ctx context.Context, actor Actor, id string) (*ReportDetail, error)
	List(ctx context.Context, actor Actor, filter ReportFilter, page pagination.PageRequest) (*pagination.PageResponse[ReportDetail], error)
	Export(ctx context.Context, actor Actor, filter ReportFilter) (*bytes.Buffer, string, error)
}

// AuditEntry describes one mutation to record.
type AuditEntry struct {
	EntityType string
	EntityID   string
	Operation  models.AuditOperation
	Actor      Actor
	Changes    models.ChangeSet
}

// AuditFilter holds optional filter parameters for listing audit entries.
type AuditFilter struct {
	EntityType *string
	EntityID   *string
	ActorID    *string
	From       *time.Time
	To         *time.Time
}

// AuditServicer defines the contract for the audit trail.
type AuditServicer interface {
	// Record writes through store; a failure must abort the caller's transaction.
	Record(ctx context.Context, store repository.Store, entry AuditEntry) error
	List(ctx context.Context, actor Actor, filter AuditFilter, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
