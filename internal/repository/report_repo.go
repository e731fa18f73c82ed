package repository

import (
	"context"

	"gorm.io/gorm"

	"worklog/internal/models"
	"worklog/internal/pagination"
)

// ReportFilter narrows report queries. Nil fields do not filter.
type ReportFilter struct {
	// Scoped restricts rows to OwnerIDs; an empty OwnerIDs then matches nothing.
	Scoped        bool
	OwnerIDs      []string
	EmpID         *string
	ReportType    *models.ReportType
	WeekStartDate *models.Date
	WeekEndDate   *models.Date
	Status        *models.ReportStatus
}

// ReportRepository is the data access contract for reports.
type ReportRepository interface {
	GetByID(ctx context.Context, id string) (*models.Report, error)
	GetByKey(ctx context.Context, empID string, start, end models.Date, reportType models.ReportType) (*models.Report, error)
	Create(ctx context.Context, report *models.Report) error
	// MarkSubmitted moves a draft to SUBMITTED. It matches only while
	// report_date is still null and reports whether the row changed.
	MarkSubmitted(ctx context.Context, id string, reportDate models.Date, content string, hours models.HourMap) (bool, error)
	UpdateContent(ctx context.Context, id, content string) error
	// SubmittedCovering reports whether empID has a SUBMITTED report whose
	// period contains date.
	SubmittedCovering(ctx context.Context, empID string, date models.Date) (bool, error)
	List(ctx context.Context, filter ReportFilter, page pagination.PageRequest) ([]models.Report, int64, error)
	Find(ctx context.Context, filter ReportFilter) ([]models.Report, error)
}

type reportRepo struct {
	db *gorm.DB
}

// NewReportRepo creates a ReportRepository.
func NewReportRepo(db *gorm.DB) ReportRepository {
	return &reportRepo{db: db}
}

func (r *reportRepo) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&report).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) GetByKey(ctx context.Context, empID string, start, end models.Date, reportType models.ReportType) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Where("emp_id = ? AND week_start_date = ? AND week_end_date = ? AND report_type = ?", empID, start, end, reportType).
		Take(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepo) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *reportRepo) MarkSubmitted(ctx context.Context, id string, reportDate models.Date, content string, hours models.HourMap) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND report_date IS NULL", id).
		Updates(map[string]any{
			"report_date":  reportDate,
			"content":      content,
			"weekly_hours": hours,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *reportRepo) UpdateContent(ctx context.Context, id, content string) error {
	return r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Update("content", content).Error
}

func (r *reportRepo) SubmittedCovering(ctx context.Context, empID string, date models.Date) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("emp_id = ? AND report_date IS NOT NULL AND week_start_date <= ? AND week_end_date >= ?", empID, date, date).
		Count(&count).Error
	return count > 0, err
}

func (r *reportRepo) List(ctx context.Context, filter ReportFilter, page pagination.PageRequest) ([]models.Report, int64, error) {
	base := r.filtered(ctx, filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	err := base.
		Order("week_start_date DESC, created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&reports).Error
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepo) Find(ctx context.Context, filter ReportFilter) ([]models.Report, error) {
	var reports []models.Report
	err := r.filtered(ctx, filter).
		Order("week_start_date ASC, emp_id ASC").
		Find(&reports).Error
	return reports, err
}

func (r *reportRepo) filtered(ctx context.Context, f ReportFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Report{})

	if f.Scoped {
		if len(f.OwnerIDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("emp_id IN ?", f.OwnerIDs)
		}
	}
	if f.EmpID != nil {
		q = q.Where("emp_id = ?", *f.EmpID)
	}
	if f.ReportType != nil {
		q = q.Where("report_type = ?", *f.ReportType)
	}
	if f.WeekStartDate != nil {
		q = q.Where("week_start_date >= ?", *f.WeekStartDate)
	}
	if f.WeekEndDate != nil {
		q = q.Where("week_end_date <= ?", *f.WeekEndDate)
	}
	if f.Status != nil {
		if *f.Status == models.ReportStatusSubmitted {
			q = q.Where("report_date IS NOT NULL")
		} else {
			q = q.Where("report_date IS NULL")
		}
	}
	return q
}
