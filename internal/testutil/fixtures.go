package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"worklog/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestEmployee creates a full-time employee with the given role.
func CreateTestEmployee(t *testing.T, db *gorm.DB, role models.Role) *models.Employee {
	t.Helper()
	return createEmployee(t, db, role, models.EmploymentFullTime)
}

// CreateTestIntern creates an intern with the WORKER role.
func CreateTestIntern(t *testing.T, db *gorm.DB) *models.Employee {
	t.Helper()
	return createEmployee(t, db, models.RoleWorker, models.EmploymentIntern)
}

func createEmployee(t *testing.T, db *gorm.DB, role models.Role, employment models.EmploymentType) *models.Employee {
	t.Helper()

	n := nextID()
	emp := &models.Employee{
		EmployeeCode:   fmt.Sprintf("EMP%04d", n),
		FullName:       fmt.Sprintf("Test Employee %d", n),
		Role:           role,
		EmploymentType: employment,
		IsActive:       true,
	}
	if err := db.Create(emp).Error; err != nil {
		t.Fatalf("failed to create test employee: %v", err)
	}
	return emp
}

// CreateTestProject creates a project managed by managerID (may be empty).
func CreateTestProject(t *testing.T, db *gorm.DB, code, managerID string) *models.Project {
	t.Helper()

	if code == "" {
		code = fmt.Sprintf("PRJ%04d", nextID())
	}
	project := &models.Project{
		ProjectCode:      code,
		ProjectName:      "Project " + code,
		ProjectManagerID: managerID,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// AllocateTestEmployee staffs empID on projectID.
func AllocateTestEmployee(t *testing.T, db *gorm.DB, empID, projectID string) {
	t.Helper()

	alloc := &models.ProjectAllocation{EmpID: empID, ProjectID: projectID}
	if err := db.Create(alloc).Error; err != nil {
		t.Fatalf("failed to create test allocation: %v", err)
	}
}

// CreateTestLog inserts an unlocked daily log directly, bypassing the service.
func CreateTestLog(t *testing.T, db *gorm.DB, empID, projectID, date, hours string) *models.DailyLog {
	t.Helper()

	h, err := models.ParseHours(hours)
	if err != nil {
		t.Fatalf("bad hours fixture %q: %v", hours, err)
	}
	log := &models.DailyLog{
		EmpID:     empID,
		ProjectID: projectID,
		LogDate:   models.MustParseDate(date),
		Hours:     h,
	}
	if err := db.Create(log).Error; err != nil {
		t.Fatalf("failed to create test daily log: %v", err)
	}
	return log
}

// CreateTestDraftReport inserts a WEEKLY draft for the given period.
func CreateTestDraftReport(t *testing.T, db *gorm.DB, empID, start, end string) *models.Report {
	t.Helper()

	report := &models.Report{
		EmpID:         empID,
		ReportType:    models.ReportTypeWeekly,
		WeekStartDate: models.MustParseDate(start),
		WeekEndDate:   models.MustParseDate(end),
		WeeklyHours:   models.HourMap{},
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("failed to create test report: %v", err)
	}
	return report
}

// ReloadLog re-reads a daily log from the database.
func ReloadLog(t *testing.T, db *gorm.DB, id string) *models.DailyLog {
	t.Helper()

	var log models.DailyLog
	if err := db.Where("id = ?", id).Take(&log).Error; err != nil {
		t.Fatalf("failed to reload daily log %s: %v", id, err)
	}
	return &log
}

// CountAuditLogs returns the number of audit entries for an entity.
func CountAuditLogs(t *testing.T, db *gorm.DB, entityType, entityID string) int64 {
	t.Helper()

	var n int64
	if err := db.Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Count(&n).Error; err != nil {
		t.Fatalf("failed to count audit logs: %v", err)
	}
	return n
}
