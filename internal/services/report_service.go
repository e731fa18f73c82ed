package services

import (
	"context"
	"errors"
	"fmt"

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

var errAlreadySubmitted = apperrors.WithMessage(apperrors.ErrDuplicateReport, "Report has already been submitted")

// reportService drives the DRAFT -> SUBMITTED lifecycle.
type reportService struct {
	store       repository.Store
	cal         *workweek.Calendar
	logs        DailyLogServicer
	aggregation AggregationServicer
	audit       AuditServicer
}

// NewReportService creates a new ReportServicer.
func NewReportService(store repository.Store, cal *workweek.Calendar, logs DailyLogServicer, aggregation AggregationServicer, audit AuditServicer) ReportServicer {
	return &reportService{store: store, cal: cal, logs: logs, aggregation: aggregation, audit: audit}
}

// CreateDraft stores a DRAFT report with a preview aggregation. Nothing is locked.
func (s *reportService) CreateDraft(ctx context.Context, actor Actor, in CreateReportInput) (*ReportDetail, error) {
	if in.EmpID == "" {
		in.EmpID = actor.ID
	}
	if !in.ReportType.Valid() {
		return nil, invalid("report_type must be WEEKLY or DAILY")
	}
	start, end, err := s.resolvePeriod(in.ReportType, in.WeekStartDate, in.WeekEndDate)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.ReportCreate, in.EmpID); err != nil {
		return nil, err
	}
	emp, err := s.store.Directory().GetEmployee(ctx, in.EmpID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrEmployeeNotFound)
	}
	if err := s.checkClassification(ctx, emp, in.ReportType); err != nil {
		return nil, err
	}

	var report *models.Report
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, in.EmpID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}
		if err := ensureNoReport(ctx, tx, in.EmpID, start, end, in.ReportType); err != nil {
			return err
		}

		hours, err := s.aggregation.Compute(ctx, tx, in.EmpID, start, end)
		if err != nil {
			return err
		}
		report = &models.Report{
			EmpID:         in.EmpID,
			ReportType:    in.ReportType,
			WeekStartDate: start,
			WeekEndDate:   end,
			Content:       in.Content,
			WeeklyHours:   hours,
		}
		if err := createReport(ctx, tx, report); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			EntityType: models.EntityReport,
			EntityID:   report.ID,
			Operation:  models.AuditInsert,
			Actor:      actor,
			Changes:    models.ChangeSet{Fields: reportFields(report)},
		})
	})
	if err != nil {
		return nil, s.reject(err)
	}

	metrics.ReportsDrafted.WithLabelValues(string(report.ReportType)).Inc()
	return s.detail(ctx, report)
}

// Submit turns an existing draft into a submission: the hours are
// re-aggregated, stored, and the covered entries locked in one transaction.
func (s *reportService) Submit(ctx context.Context, actor Actor, id string, content *string) (*ReportDetail, error) {
	if !s.cal.SubmissionOpen() {
		return nil, s.reject(apperrors.ErrSubmissionWindowClosed)
	}
	report, err := s.store.Reports().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrReportNotFound)
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.ReportSubmit, report.EmpID); err != nil {
		return nil, err
	}
	if report.IsSubmitted() {
		return nil, s.reject(errAlreadySubmitted)
	}

	var submitted *models.Report
	var locked int64
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, report.EmpID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}
		current, err := tx.Reports().GetByID(ctx, id)
		if err != nil {
			return notFound(err, apperrors.ErrReportNotFound)
		}
		if current.IsSubmitted() {
			return errAlreadySubmitted
		}
		submitted, locked, err = s.submitLocked(ctx, tx, actor, current, content)
		return err
	})
	if err != nil {
		return nil, s.reject(err)
	}

	s.recordSubmission(submitted, locked)
	return s.detail(ctx, submitted)
}

// SubmitWeekly submits the actor's WEEKLY report for Monday..Friday of the
// current week. An existing draft for that week is promoted.
func (s *reportService) SubmitWeekly(ctx context.Context, actor Actor, content string) (*ReportDetail, error) {
	if !s.cal.SubmissionOpen() {
		return nil, s.reject(apperrors.ErrSubmissionWindowClosed)
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.ReportSubmit, actor.ID); err != nil {
		return nil, err
	}
	emp, err := s.store.Directory().GetEmployee(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrEmployeeNotFound)
	}
	if err := s.checkClassification(ctx, emp, models.ReportTypeWeekly); err != nil {
		return nil, err
	}
	start, end := s.cal.CurrentWeek()

	var submitted *models.Report
	var locked int64
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, emp.ID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}

		existing, err := tx.Reports().GetByKey(ctx, emp.ID, start, end, models.ReportTypeWeekly)
		switch {
		case err == nil:
			if existing.IsSubmitted() {
				return apperrors.WithMessage(apperrors.ErrDuplicateReport, "Report already submitted for this week")
			}
			var override *string
			if content != "" {
				override = &content
			}
			submitted, locked, err = s.submitLocked(ctx, tx, actor, existing, override)
			return err
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		hours, err := s.aggregation.Compute(ctx, tx, emp.ID, start, end)
		if err != nil {
			return err
		}
		today := s.cal.Today()
		submitted = &models.Report{
			EmpID:         emp.ID,
			ReportType:    models.ReportTypeWeekly,
			ReportDate:    &today,
			WeekStartDate: start,
			WeekEndDate:   end,
			Content:       content,
			WeeklyHours:   hours,
		}
		if err := createReport(ctx, tx, submitted); err != nil {
			return err
		}
		if locked, err = s.logs.LockRange(ctx, tx, emp.ID, start, end); err != nil {
			return err
		}
		return s.audit.Record(ctx, tx, AuditEntry{
			EntityType: models.EntityReport,
			EntityID:   submitted.ID,
			Operation:  models.AuditInsert,
			Actor:      actor,
			Changes: models.ChangeSet{
				Fields:   reportFields(submitted),
				Metadata: map[string]any{"action": "submit", "locked_entries": locked},
			},
		})
	})
	if err != nil {
		return nil, s.reject(err)
	}

	s.recordSubmission(submitted, locked)
	return s.detail(ctx, submitted)
}

// submitLocked performs the submission steps on a draft inside a transaction
// that holds the employee lock.
func (s *reportService) submitLocked(ctx context.Context, tx repository.Store, actor Actor, draft *models.Report, content *string) (*models.Report, int64, error) {
	hours, err := s.aggregation.Compute(ctx, tx, draft.EmpID, draft.WeekStartDate, draft.WeekEndDate)
	if err != nil {
		return nil, 0, err
	}

	newContent := draft.Content
	if content != nil {
		newContent = *content
	}
	today := s.cal.Today()

	ok, err := tx.Reports().MarkSubmitted(ctx, draft.ID, today, newContent, hours)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return nil, 0, errAlreadySubmitted
	}

	locked, err := s.logs.LockRange(ctx, tx, draft.EmpID, draft.WeekStartDate, draft.WeekEndDate)
	if err != nil {
		return nil, 0, err
	}

	diff := fieldDiff{}
	diff.set("report_date", nil, today)
	diff.set("weekly_hours", draft.WeeklyHours, hours)
	diff.setIfChanged("content", draft.Content, newContent)
	if err := s.audit.Record(ctx, tx, AuditEntry{
		EntityType: models.EntityReport,
		EntityID:   draft.ID,
		Operation:  models.AuditUpdate,
		Actor:      actor,
		Changes: models.ChangeSet{
			Fields:   diff,
			Metadata: map[string]any{"action": "submit", "locked_entries": locked},
		},
	}); err != nil {
		return nil, 0, err
	}

	submitted := *draft
	submitted.ReportDate = &today
	submitted.Content = newContent
	submitted.WeeklyHours = hours
	return &submitted, locked, nil
}

// Update edits report content. A draft with Submit set is submitted instead.
// Submitted reports are only editable by HR admins; the edit never
// re-aggregates or re-locks.
func (s *reportService) Update(ctx context.Context, actor Actor, in UpdateReportInput) (*ReportDetail, error) {
	report, err := s.store.Reports().GetByID(ctx, in.ID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrReportNotFound)
	}
	if in.Submit && !report.IsSubmitted() {
		return s.Submit(ctx, actor, in.ID, in.Content)
	}
	if err := s.authorizeEdit(ctx, actor, report); err != nil {
		return nil, err
	}
	if in.Content == nil {
		return nil, invalid("content is required")
	}

	var updated *models.Report
	err = s.store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, report.EmpID); err != nil {
			return notFound(err, apperrors.ErrEmployeeNotFound)
		}
		current, err := tx.Reports().GetByID(ctx, in.ID)
		if err != nil {
			return notFound(err, apperrors.ErrReportNotFound)
		}
		if current.IsSubmitted() != report.IsSubmitted() {
			if err := s.authorizeEdit(ctx, actor, current); err != nil {
				return err
			}
		}

		if err := tx.Reports().UpdateContent(ctx, current.ID, *in.Content); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		diff := fieldDiff{}
		diff.set("content", current.Content, *in.Content)
		if err := s.audit.Record(ctx, tx, AuditEntry{
			EntityType: models.EntityReport,
			EntityID:   current.ID,
			Operation:  models.AuditUpdate,
			Actor:      actor,
			Changes: models.ChangeSet{
				Fields:   diff,
				Metadata: map[string]any{"status": current.Status()},
			},
		}); err != nil {
			return err
		}

		updated = current
		updated.Content = *in.Content
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	if updated.IsSubmitted() {
		logger.Get().Infow("submitted report edited",
			"report_id", updated.ID,
			"emp_id", updated.EmpID,
			"actor_id", actor.ID,
		)
	}
	return s.detail(ctx, updated)
}

func (s *reportService) authorizeEdit(ctx context.Context, actor Actor, report *models.Report) error {
	if !report.IsSubmitted() {
		return authorize(ctx, s.store.Directory(), actor, policy.ReportEditDraft, report.EmpID)
	}
	err := authorize(ctx, s.store.Directory(), actor, policy.ReportEditSubmitted, report.EmpID)
	if apperrors.HasCode(err, apperrors.ErrForbidden) {
		return apperrors.WithMessage(apperrors.ErrForbidden, "Cannot edit submitted report")
	}
	return err
}

// Get returns one report if actor may read it.
func (s *reportService) Get(ctx context.Context, actor Actor, id string) (*ReportDetail, error) {
	report, err := s.store.Reports().GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrReportNotFound)
	}
	if err := authorize(ctx, s.store.Directory(), actor, policy.ReportRead, report.EmpID); err != nil {
		return nil, err
	}
	return s.detail(ctx, report)
}

// List returns the reports visible to actor.
func (s *reportService) List(ctx context.Context, actor Actor, filter ReportFilter, page pagination.PageRequest) (*pagination.PageResponse[ReportDetail], error) {
	page.Defaults()
	repoFilter, err := s.scopedFilter(ctx, actor, policy.ReportRead, filter)
	if err != nil {
		return nil, err
	}

	reports, total, err := s.store.Reports().List(ctx, repoFilter, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	details, err := s.details(ctx, reports)
	if err != nil {
		return nil, err
	}

	resp := pagination.NewPageResponse(details, page.Page, page.Limit, total)
	return &resp, nil
}

func (s *reportService) scopedFilter(ctx context.Context, actor Actor, op policy.Operation, filter ReportFilter) (repository.ReportFilter, error) {
	out := repository.ReportFilter{
		EmpID:         filter.EmpID,
		ReportType:    filter.ReportType,
		WeekStartDate: filter.WeekStartDate,
		WeekEndDate:   filter.WeekEndDate,
		Status:        filter.Status,
	}
	if filter.EmpID != nil {
		return out, authorize(ctx, s.store.Directory(), actor, op, *filter.EmpID)
	}
	scoped, owners, err := visibleOwners(ctx, s.store.Directory(), actor, op)
	if err != nil {
		return out, err
	}
	out.Scoped, out.OwnerIDs = scoped, owners
	return out, nil
}

func (s *reportService) resolvePeriod(t models.ReportType, start, end *models.Date) (models.Date, models.Date, error) {
	if t == models.ReportTypeDaily {
		switch {
		case start == nil && end == nil:
			today := s.cal.Today()
			return today, today, nil
		case start == nil:
			start = end
		case end == nil:
			end = start
		}
		if !start.Equal(*end) {
			return models.Date{}, models.Date{}, invalid("a DAILY report covers exactly one day")
		}
		return *start, *end, nil
	}

	if start == nil || end == nil || start.IsZero() || end.IsZero() {
		return models.Date{}, models.Date{}, invalid("week_start_date and week_end_date are required for WEEKLY reports")
	}
	if start.After(*end) {
		return models.Date{}, models.Date{}, invalid("week_start_date must not be after week_end_date")
	}
	if !workweek.SameWeek(*start, *end) {
		return models.Date{}, models.Date{}, invalid("a WEEKLY report period must lie within one calendar week")
	}
	return *start, *end, nil
}

// checkClassification enforces which report type an employee files: interns
// without a project allocation file DAILY reports, everyone else WEEKLY.
func (s *reportService) checkClassification(ctx context.Context, emp *models.Employee, t models.ReportType) error {
	required := models.ReportTypeWeekly
	if emp.EmploymentType == models.EmploymentIntern {
		staffed, err := s.store.Directory().HasAllocation(ctx, emp.ID)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !staffed {
			required = models.ReportTypeDaily
		}
	}
	if t != required {
		return apperrors.WithMessage(apperrors.ErrInvalidReportType,
			fmt.Sprintf("Report type %s is not allowed for this employee; expected %s", t, required))
	}
	return nil
}

func (s *reportService) recordSubmission(report *models.Report, locked int64) {
	metrics.ReportsSubmitted.WithLabelValues(string(report.ReportType)).Inc()
	metrics.LogsLocked.Add(float64(locked))
	logger.Get().Infow("report submitted",
		"report_id", report.ID,
		"emp_id", report.EmpID,
		"report_type", report.ReportType,
		"week_start_date", report.WeekStartDate,
		"week_end_date", report.WeekEndDate,
		"locked_entries", locked,
	)
}

// reject normalises err and counts lifecycle conflicts.
func (s *reportService) reject(err error) error {
	err = appError(err)
	switch {
	case apperrors.HasCode(err, apperrors.ErrDuplicateReport):
		metrics.ReportConflicts.WithLabelValues("duplicate").Inc()
	case apperrors.HasCode(err, apperrors.ErrSubmissionWindowClosed):
		metrics.ReportConflicts.WithLabelValues("window_closed").Inc()
	}
	return err
}

func (s *reportService) detail(ctx context.Context, report *models.Report) (*ReportDetail, error) {
	details, err := s.details(ctx, []models.Report{*report})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

func (s *reportService) details(ctx context.Context, reports []models.Report) ([]ReportDetail, error) {
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.EmpID)
	}
	emps, err := s.store.Directory().EmployeesByID(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make([]ReportDetail, 0, len(reports))
	for _, r := range reports {
		if r.WeeklyHours == nil {
			r.WeeklyHours = models.HourMap{}
		}
		emp := emps[r.EmpID]
		out = append(out, ReportDetail{
			Report:       r,
			Status:       r.Status(),
			EmployeeCode: emp.EmployeeCode,
			EmployeeName: emp.FullName,
		})
	}
	return out, nil
}

func ensureNoReport(ctx context.Context, tx repository.Store, empID string, start, end models.Date, t models.ReportType) error {
	_, err := tx.Reports().GetByKey(ctx, empID, start, end, t)
	switch {
	case err == nil:
		return apperrors.ErrDuplicateReport
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}

func createReport(ctx context.Context, tx repository.Store, report *models.Report) error {
	err := tx.Reports().Create(ctx, report)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateReport
	}
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func reportFields(r *models.Report) fieldDiff {
	diff := fieldDiff{}
	diff.set("report_type", nil, r.ReportType)
	diff.set("week_start_date", nil, r.WeekStartDate)
	diff.set("week_end_date", nil, r.WeekEndDate)
	diff.set("report_date", nil, r.ReportDate)
	diff.set("content", nil, r.Content)
	diff.set("weekly_hours", nil, r.WeeklyHours)
	return diff
}
