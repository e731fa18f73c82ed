package repository

import (
	"context"

	"gorm.io/gorm"

	"worklog/internal/models"
	"worklog/internal/pagination"
)

// LogFilter narrows daily log queries. Nil fields do not filter.
type LogFilter struct {
	// Scoped restricts rows to OwnerIDs; an empty OwnerIDs then matches nothing.
	Scoped    bool
	OwnerIDs  []string
	EmpID     *string
	ProjectID *string
	StartDate *models.Date
	EndDate   *models.Date
	Locked    *bool
}

// DailyLogRow is a daily log joined with its project.
type DailyLogRow struct {
	models.DailyLog
	ProjectCode string `json:"project_code"`
	ProjectName string `json:"project_name"`
}

// DailyLogRepository is the data access contract for daily logs.
type DailyLogRepository interface {
	GetByID(ctx context.Context, id string) (*models.DailyLog, error)
	GetByKey(ctx context.Context, empID, projectID string, date models.Date) (*models.DailyLog, error)
	Create(ctx context.Context, log *models.DailyLog) error
	// UpdateUnlocked writes hours and notes only if the row is still unlocked.
	// It reports whether a row was changed.
	UpdateUnlocked(ctx context.Context, id string, hours models.Hours, notes string) (bool, error)
	List(ctx context.Context, filter LogFilter, page pagination.PageRequest) ([]DailyLogRow, int64, error)
	Find(ctx context.Context, filter LogFilter) ([]DailyLogRow, error)
	// LockRange locks every unlocked entry of empID in [start, end] and
	// returns how many rows changed.
	LockRange(ctx context.Context, empID string, start, end models.Date) (int64, error)
}

type dailyLogRepo struct {
	db *gorm.DB
}

// NewDailyLogRepo creates a DailyLogRepository.
func NewDailyLogRepo(db *gorm.DB) DailyLogRepository {
	return &dailyLogRepo{db: db}
}

func (r *dailyLogRepo) GetByID(ctx context.Context, id string) (*models.DailyLog, error) {
	var log models.DailyLog
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&log).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *dailyLogRepo) GetByKey(ctx context.Context, empID, projectID string, date models.Date) (*models.DailyLog, error) {
	var log models.DailyLog
	err := r.db.WithContext(ctx).
		Where("emp_id = ? AND project_id = ? AND log_date = ?", empID, projectID, date).
		Take(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *dailyLogRepo) Create(ctx context.Context, log *models.DailyLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *dailyLogRepo) UpdateUnlocked(ctx context.Context, id string, hours models.Hours, notes string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.DailyLog{}).
		Where("id = ? AND locked = ?", id, false).
		Updates(map[string]any{"hours": hours, "notes": notes})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *dailyLogRepo) List(ctx context.Context, filter LogFilter, page pagination.PageRequest) ([]DailyLogRow, int64, error) {
	base := r.filtered(ctx, filter).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DailyLogRow
	err := base.
		Select("daily_logs.*, projects.project_code, projects.project_name").
		Order("daily_logs.log_date DESC, projects.project_code ASC").
		Scopes(pagination.Paginate(page)).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *dailyLogRepo) Find(ctx context.Context, filter LogFilter) ([]DailyLogRow, error) {
	var rows []DailyLogRow
	err := r.filtered(ctx, filter).
		Select("daily_logs.*, projects.project_code, projects.project_name").
		Order("daily_logs.log_date ASC, projects.project_code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *dailyLogRepo) LockRange(ctx context.Context, empID string, start, end models.Date) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.DailyLog{}).
		Where("emp_id = ? AND log_date BETWEEN ? AND ? AND locked = ?", empID, start, end, false).
		Update("locked", true)
	return res.RowsAffected, res.Error
}

func (r *dailyLogRepo) filtered(ctx context.Context, f LogFilter) *gorm.DB {
	q := r.db.WithContext(ctx).
		Table("daily_logs").
		Joins("JOIN projects ON projects.id = daily_logs.project_id")

	if f.Scoped {
		if len(f.OwnerIDs) == 0 {
			q = q.Where("1 = 0")
		} else {
			q = q.Where("daily_logs.emp_id IN ?", f.OwnerIDs)
		}
	}
	if f.EmpID != nil {
		q = q.Where("daily_logs.emp_id = ?", *f.EmpID)
	}
	if f.ProjectID != nil {
		q = q.Where("daily_logs.project_id = ?", *f.ProjectID)
	}
	if f.StartDate != nil {
		q = q.Where("daily_logs.log_date >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("daily_logs.log_date <= ?", *f.EndDate)
	}
	if f.Locked != nil {
		q = q.Where("daily_logs.locked = ?", *f.Locked)
	}
	return q
}
