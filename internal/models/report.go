package models

// ReportType is the reporting period granularity.
type ReportType string

const (
	ReportTypeWeekly ReportType = "WEEKLY"
	ReportTypeDaily  ReportType = "DAILY"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportTypeWeekly || t == ReportTypeDaily
}

// ReportStatus is derived from ReportDate and is not stored.
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "DRAFT"
	ReportStatusSubmitted ReportStatus = "SUBMITTED"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	return s == ReportStatusDraft || s == ReportStatusSubmitted
}

// Report summarises an employee's hours over a period. A nil ReportDate means
// the report is still a draft.
type Report struct {
	Base
	EmpID         string     `gorm:"type:uuid;not null;uniqueIndex:uq_reports_emp_period_type" json:"emp_id"`
	ReportType    ReportType `gorm:"not null;uniqueIndex:uq_reports_emp_period_type" json:"report_type"`
	ReportDate    *Date      `json:"report_date"`
	WeekStartDate Date       `gorm:"not null;uniqueIndex:uq_reports_emp_period_type" json:"week_start_date"`
	WeekEndDate   Date       `gorm:"not null;uniqueIndex:uq_reports_emp_period_type" json:"week_end_date"`
	Content       string     `json:"content"`
	WeeklyHours   HourMap    `gorm:"not null" json:"weekly_hours"`
}

// IsSubmitted reports whether the report has left the draft state.
func (r *Report) IsSubmitted() bool {
	return r.ReportDate != nil && !r.ReportDate.IsZero()
}

// Status returns DRAFT or SUBMITTED.
func (r *Report) Status() ReportStatus {
	if r.IsSubmitted() {
		return ReportStatusSubmitted
	}
	return ReportStatusDraft
}

// Covers reports whether d falls inside the report period.
func (r *Report) Covers(d Date) bool {
	return d.Between(r.WeekStartDate, r.WeekEndDate)
}
