package models

// Role is the access role carried in an employee's token.
type Role string

const (
	RoleWorker   Role = "WORKER"
	RoleTeamLead Role = "TEAM_LEAD"
	RoleHRAdmin  Role = "HR_ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleWorker, RoleTeamLead, RoleHRAdmin:
		return true
	}
	return false
}

// EmploymentType decides which report type an employee files.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentIntern   EmploymentType = "INTERN"
)

// Employee is owned by the HR directory; this service only reads it.
type Employee struct {
	Base
	EmployeeCode   string         `gorm:"uniqueIndex;not null" json:"employee_code"`
	FullName       string         `gorm:"not null" json:"full_name"`
	Role           Role           `gorm:"not null;default:WORKER" json:"role"`
	EmploymentType EmploymentType `gorm:"not null;default:FULL_TIME" json:"employment_type"`
	IsActive       bool           `gorm:"default:true" json:"is_active"`
}

// Project is a billable project; its manager leads the project team.
type Project struct {
	Base
	ProjectCode      string `gorm:"uniqueIndex;not null" json:"project_code"`
	ProjectName      string `gorm:"not null" json:"project_name"`
	ProjectManagerID string `gorm:"type:uuid;index" json:"project_manager_id"`
}

// ProjectAllocation staffs an employee on a project.
type ProjectAllocation struct {
	Base
	EmpID     string `gorm:"type:uuid;not null;uniqueIndex:uq_project_allocations_emp_project" json:"emp_id"`
	ProjectID string `gorm:"type:uuid;not null;uniqueIndex:uq_project_allocations_emp_project;index" json:"project_id"`
}
