package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"worklog/internal/logger"
	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/repository"
	"worklog/internal/testutil"
	"worklog/internal/workweek"
)

// testNow is Wednesday 2026-10-14; the current week is 2026-10-12..2026-10-16.
var testNow = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func init() {
	logger.Init("test", "")
}

type testEnv struct {
	db      *gorm.DB
	store   repository.Store
	cal     *workweek.Calendar
	audit   AuditServicer
	logs    DailyLogServicer
	agg     AggregationServicer
	reports ReportServicer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvAt(t, testNow)
}

func newTestEnvAt(t *testing.T, now time.Time) *testEnv {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	store := repository.NewStore(db)
	env := &testEnv{
		db:    db,
		store: store,
		cal:   workweek.New(time.UTC).WithClock(func() time.Time { return now }),
	}
	env.wire(NewAuditService(store))
	return env
}

// wire rebuilds the services around the given audit trail.
func (e *testEnv) wire(audit AuditServicer) {
	e.audit = audit
	e.agg = NewAggregationService(e.store)
	e.logs = NewDailyLogService(e.store, e.cal, audit)
	e.reports = NewReportService(e.store, e.cal, e.logs, e.agg, audit)
}

func actorOf(emp *models.Employee) Actor {
	return Actor{ID: emp.ID, Role: emp.Role, IP: "127.0.0.1"}
}

func mustHours(t *testing.T, s string) models.Hours {
	t.Helper()
	h, err := models.ParseHours(s)
	if err != nil {
		t.Fatalf("bad hours %q: %v", s, err)
	}
	return h
}

func date(s string) models.Date {
	return models.MustParseDate(s)
}

func strPtr(s string) *string {
	return &s
}

// failingAudit rejects every write, as a broken audit table would.
type failingAudit struct{}

func (failingAudit) Record(context.Context, repository.Store, AuditEntry) error {
	return errors.New("audit_logs: disk full")
}

func (failingAudit) List(context.Context, Actor, AuditFilter, pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	return nil, errors.New("not implemented")
}

var _ AuditServicer = failingAudit{}
