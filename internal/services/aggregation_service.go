package services

import (
	"context"

	apperrors "worklog/internal/errors"
	"worklog/internal/models"
	"worklog/internal/policy"
	"worklog/internal/repository"
)

// aggregationService sums unlocked hours per project.
type aggregationService struct {
	store repository.Store
}

// NewAggregationService creates a new AggregationServicer.
func NewAggregationService(store repository.Store) AggregationServicer {
	return &aggregationService{store: store}
}

// Aggregate returns the per-project totals of empID's unlocked entries in [start, end].
func (s *aggregationService) Aggregate(ctx context.Context, actor Actor, empID string, start, end models.Date) (*AggregateResult, error) {
	if start.IsZero() || end.IsZero() {
		return nil, invalid("start_date and end_date are required")
	}
	if start.After(end) {
		return nil, invalid("start_date must not be after end_date")
	}
	if empID == "" {
		empID = actor.ID
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.LogAggregate, empID); err != nil {
		return nil, err
	}

	hours, err := s.Compute(ctx, s.store, empID, start, end)
	if err != nil {
		return nil, err
	}
	return &AggregateResult{
		EmpID:       empID,
		StartDate:   start,
		EndDate:     end,
		WeeklyHours: hours,
		TotalHours:  hours.Total(),
	}, nil
}

// Compute sums hours of unlocked entries grouped by project code. Locked
// entries already belong to a submitted report and are never counted twice.
func (s *aggregationService) Compute(ctx context.Context, store repository.Store, empID string, start, end models.Date) (models.HourMap, error) {
	unlocked := false
	rows, err := store.Logs().Find(ctx, repository.LogFilter{
		EmpID:     &empID,
		StartDate: &start,
		EndDate:   &end,
		Locked:    &unlocked,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := models.HourMap{}
	for _, row := range rows {
		totals.Add(row.ProjectCode, row.Hours)
	}
	return totals, nil
}
