package models

// DailyLog is one employee's hours on one project for one day.
// Once Locked is set it is never cleared.
type DailyLog struct {
	Base
	EmpID     string `gorm:"type:uuid;not null;uniqueIndex:uq_daily_logs_emp_project_date" json:"emp_id"`
	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:uq_daily_logs_emp_project_date" json:"project_id"`
	LogDate   Date   `gorm:"not null;uniqueIndex:uq_daily_logs_emp_project_date;index" json:"log_date"`
	Hours     Hours  `gorm:"type:numeric(4,2);not null" json:"hours"`
	Notes     string `json:"notes"`
	Locked    bool   `gorm:"not null;default:false" json:"locked"`
}
