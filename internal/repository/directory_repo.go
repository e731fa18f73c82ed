package repository

import (
	"context"

	"gorm.io/gorm"

	"worklog/internal/models"
)

// DirectoryRepository is the read-only view of the HR directory: employees,
// projects and who is staffed where. A team lead's team is everyone allocated
// to a project the lead manages.
type DirectoryRepository interface {
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	EmployeesByID(ctx context.Context, ids []string) (map[string]models.Employee, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	IsTeamMember(ctx context.Context, empID, leadID string) (bool, error)
	TeamMemberIDs(ctx context.Context, leadID string) ([]string, error)
	HasAllocation(ctx context.Context, empID string) (bool, error)
}

type directoryRepo struct {
	db *gorm.DB
}

// NewDirectoryRepo creates a DirectoryRepository.
func NewDirectoryRepo(db *gorm.DB) DirectoryRepository {
	return &directoryRepo{db: db}
}

func (r *directoryRepo) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var emp models.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&emp).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *directoryRepo) EmployeesByID(ctx context.Context, ids []string) (map[string]models.Employee, error) {
	out := make(map[string]models.Employee, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var emps []models.Employee
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&emps).Error; err != nil {
		return nil, err
	}
	for _, e := range emps {
		out[e.ID] = e
	}
	return out, nil
}

func (r *directoryRepo) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *directoryRepo) IsTeamMember(ctx context.Context, empID, leadID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectAllocation{}).
		Joins("JOIN projects ON projects.id = project_allocations.project_id").
		Where("project_allocations.emp_id = ? AND projects.project_manager_id = ?", empID, leadID).
		Count(&count).Error
	return count > 0, err
}

func (r *directoryRepo) TeamMemberIDs(ctx context.Context, leadID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.ProjectAllocation{}).
		Joins("JOIN projects ON projects.id = project_allocations.project_id").
		Where("projects.project_manager_id = ?", leadID).
		Distinct().
		Pluck("project_allocations.emp_id", &ids).Error
	return ids, err
}

func (r *directoryRepo) HasAllocation(ctx context.Context, empID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ProjectAllocation{}).
		Where("emp_id = ?", empID).
		Count(&count).Error
	return count > 0, err
}
