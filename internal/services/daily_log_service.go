package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "worklog/internal/errors"
	"worklog/internal/logger"
	"worklog/internal/metrics"
	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/policy"
	"worklog/internal/repository"
	"worklog/internal/workweek"
)

// dailyLogService handles daily log business logic.
type dailyLogService struct {
	store repository.Store
	cal   *workweek.Calendar
	audit AuditServicer
}

// NewDailyLogService creates a new DailyLogServicer.
func NewDailyLogService(store repository.Store, cal *workweek.Calendar, audit AuditServicer) DailyLogServicer {
	return &dailyLogService{store: store, cal: cal, audit: audit}
}

// Upsert creates or updates the entry for (employee, project, date).
func (s *dailyLogService) Upsert(ctx context.Context, actor Actor, in UpsertLogInput) (*UpsertLogResult, error) {
	return s.upsert(ctx, actor, in, false)
}

// UpsertCurrentWeek is Upsert restricted to Monday..Friday of the current week.
func (s *dailyLogService) UpsertCurrentWeek(ctx context.Context, actor Actor, in UpsertLogInput) (*UpsertLogResult, error) {
	return s.upsert(ctx, actor, in, true)
}

func (s *dailyLogService) upsert(ctx context.Context, actor Actor, in UpsertLogInput, currentWeek bool) (*UpsertLogResult, error) {
	if in.EmpID == "" {
		in.EmpID = actor.ID
	}
	if err := s.validateEntry(in.LogDate, in.Hours, currentWeek); err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.LogWrite, in.EmpID); err != nil {
		return nil, err
	}
	if _, err := s.store.Directory().GetProject(ctx, in.ProjectID); err != nil {
		return nil, notFound(err, apperrors.ErrProjectNotFound)
	}

	var result UpsertLogResult
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, in.EmpID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}

		closed, err := tx.Reports().SubmittedCovering(ctx, in.EmpID, in.LogDate)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if closed {
			return apperrors.ErrLockedEntry
		}

		existing, err := tx.Logs().GetByKey(ctx, in.EmpID, in.ProjectID, in.LogDate)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			log := &models.DailyLog{
				EmpID:     in.EmpID,
				ProjectID: in.ProjectID,
				LogDate:   in.LogDate,
				Hours:     in.Hours,
				Notes:     in.Notes,
			}
			if err := tx.Logs().Create(ctx, log); err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result = UpsertLogResult{Log: log, Created: true}

			diff := fieldDiff{}
			diff.set("project_id", nil, log.ProjectID)
			diff.set("log_date", nil, log.LogDate)
			diff.set("hours", nil, log.Hours)
			diff.set("notes", nil, log.Notes)
			return s.audit.Record(ctx, tx, AuditEntry{
				EntityType: models.EntityDailyLog,
				EntityID:   log.ID,
				Operation:  models.AuditInsert,
				Actor:      actor,
				Changes:    models.ChangeSet{Fields: diff, Metadata: map[string]any{"emp_id": log.EmpID}},
			})
		case err != nil:
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		updated, err := s.updateLocked(ctx, tx, actor, existing, in.Hours, in.Notes)
		if err != nil {
			return err
		}
		result = UpsertLogResult{Log: updated}
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	op := models.AuditUpdate
	if result.Created {
		op = models.AuditInsert
	}
	metrics.LogsWritten.WithLabelValues(string(op)).Inc()
	return &result, nil
}

// Update edits hours and notes of an entry by id.
func (s *dailyLogService) Update(ctx context.Context, actor Actor, id string, hours models.Hours, notes string) (*models.DailyLog, error) {
	if err := hours.ValidateEntry(); err != nil {
		return nil, invalid(err.Error())
	}

	log, err := s.store.Logs().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrLogNotFound)
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.LogWrite, log.EmpID); err != nil {
		return nil, err
	}

	var updated *models.DailyLog
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, log.EmpID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}
		current, err := tx.Logs().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrLogNotFound)
		}
		updated, err = s.updateLocked(ctx, tx, actor, current, hours, notes)
		return err
	})
	if err != nil {
		return nil, appError(err)
	}

	metrics.LogsWritten.WithLabelValues(string(models.AuditUpdate)).Inc()
	return updated, nil
}

// updateLocked rewrites an entry inside a transaction that already holds the
// employee lock. The write only lands while the row is unlocked.
func (s *dailyLogService) updateLocked(ctx context.Context, tx repository.Store, actor Actor, current *models.DailyLog, hours models.Hours, notes string) (*models.DailyLog, error) {
	if current.Locked {
		return nil, apperrors.ErrLockedEntry
	}
	ok, err := tx.Logs().UpdateUnlocked(ctx, current.ID, hours, notes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return nil, apperrors.ErrLockedEntry
	}

	diff := fieldDiff{}
	diff.setIfChanged("hours", current.Hours, hours)
	diff.setIfChanged("notes", current.Notes, notes)
	if err := s.audit.Record(ctx, tx, AuditEntry{
		EntityType: models.EntityDailyLog,
		EntityID:   current.ID,
		Operation:  models.AuditUpdate,
		Actor:      actor,
		Changes:    models.ChangeSet{Fields: diff, Metadata: map[string]any{"emp_id": current.EmpID}},
	}); err != nil {
		return nil, err
	}

	updated := *current
	updated.Hours = hours
	updated.Notes = notes
	return &updated, nil
}

func (s *dailyLogService) validateEntry(date models.Date, hours models.Hours, currentWeek bool) error {
	if err := hours.ValidateEntry(); err != nil {
		return invalid(err.Error())
	}
	if date.IsZero() {
		return invalid("log_date is required")
	}
	if date.After(s.cal.Today()) {
		return invalid("log_date cannot be in the future")
	}
	if currentWeek && !s.cal.InCurrentWeek(date) {
		return invalid("log_date must fall within the current work week (Monday-Friday)")
	}
	return nil
}

// List returns the entries visible to actor, newest first.
func (s *dailyLogService) List(ctx context.Context, actor Actor, filter LogFilter, page pagination.PageRequest) (*pagination.PageResponse[repository.DailyLogRow], error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return nil, invalid("start_date must not be after end_date")
	}
	page.Defaults()

	repoFilter := repository.LogFilter{
		EmpID:     filter.EmpID,
		ProjectID: filter.ProjectID,
		StartDate: filter.StartDate,
		EndDate:   filter.EndDate,
		Locked:    filter.Locked,
	}
	if filter.EmpID != nil {
		if err := authorize(ctx, s.store.Directory(), actor, policy.LogRead, *filter.EmpID); err != nil {
			return nil, err
		}
	} else {
		scoped, owners, err := visibleOwners(ctx, s.store.Directory(), actor, policy.LogRead)
		if err != nil {
			return nil, err
		}
		repoFilter.Scoped, repoFilter.OwnerIDs = scoped, owners
	}

	rows, total, err := s.store.Logs().List(ctx, repoFilter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(rows, page.Page, page.Limit, total)
	return &resp, nil
}

// CurrentWeek returns the employee's entries from Monday of this week up to today.
func (s *dailyLogService) CurrentWeek(ctx context.Context, actor Actor, empID string) ([]repository.DailyLogRow, error) {
	if empID == "" {
		empID = actor.ID
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.LogRead, empID); err != nil {
		return nil, err
	}

	monday, _ := s.cal.CurrentWeek()
	today := s.cal.Today()
	rows, err := s.store.Logs().Find(ctx, repository.LogFilter{
		EmpID:     &empID,
		StartDate: &monday,
		EndDate:   &today,
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if rows == nil {
		rows = []repository.DailyLogRow{}
	}
	return rows, nil
}

// LockRange marks every entry of empID in [start, end] as locked on the
// caller's transaction. Already locked rows are left alone.
func (s *dailyLogService) LockRange(ctx context.Context, store repository.Store, empID string, start, end models.Date) (int64, error) {
	n, err := store.Logs().LockRange(ctx, empID, start, end)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	logger.Get().Debugw("locked daily logs", "emp_id", empID, "start", start, "end", end, "count", n)
	return n, nil
}
