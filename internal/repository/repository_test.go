package repository_test

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"worklog/internal/models"
	"worklog/internal/pagination"
	"worklog/internal/repository"
	"worklog/internal/testutil"
)

func setupStore(t *testing.T) (*gorm.DB, repository.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return db, repository.NewStore(db)
}

func TestDailyLogRepo(t *testing.T) {
	ctx := context.Background()
	db, store := setupStore(t)
	emp := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	other := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	p1 := testutil.CreateTestProject(t, db, "P1", "")
	p2 := testutil.CreateTestProject(t, db, "P2", "")

	mon := testutil.CreateTestLog(t, db, emp.ID, p1.ID, "2026-10-12", "4")
	testutil.CreateTestLog(t, db, emp.ID, p2.ID, "2026-10-13", "2.5")
	testutil.CreateTestLog(t, db, emp.ID, p1.ID, "2026-10-19", "1")
	testutil.CreateTestLog(t, db, other.ID, p1.ID, "2026-10-12", "8")

	t.Run("duplicate_key", func(t *testing.T) {
		dup := &models.DailyLog{EmpID: emp.ID, ProjectID: p1.ID, LogDate: models.MustParseDate("2026-10-12"), Hours: 100}
		err := store.Logs().Create(ctx, dup)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Errorf("expected ErrDuplicatedKey, got %v", err)
		}
	})

	t.Run("get_by_key", func(t *testing.T) {
		log, err := store.Logs().GetByKey(ctx, emp.ID, p1.ID, models.MustParseDate("2026-10-12"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if log.ID != mon.ID || log.Hours != 400 {
			t.Errorf("unexpected log %+v", log)
		}

		_, err = store.Logs().GetByKey(ctx, emp.ID, p2.ID, models.MustParseDate("2026-10-12"))
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}
	})

	t.Run("find_joins_project", func(t *testing.T) {
		start, end := models.MustParseDate("2026-10-12"), models.MustParseDate("2026-10-16")
		rows, err := store.Logs().Find(ctx, repository.LogFilter{EmpID: &emp.ID, StartDate: &start, EndDate: &end})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 2 || rows[0].ProjectCode != "P1" || rows[1].ProjectCode != "P2" {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("scoped_without_owners", func(t *testing.T) {
		rows, total, err := store.Logs().List(ctx, repository.LogFilter{Scoped: true}, pagination.PageRequest{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 0 || len(rows) != 0 {
			t.Errorf("expected no rows, got %d", total)
		}
	})

	t.Run("lock_range_and_cas", func(t *testing.T) {
		start, end := models.MustParseDate("2026-10-12"), models.MustParseDate("2026-10-16")
		n, err := store.Logs().LockRange(ctx, emp.ID, start, end)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("expected 2 rows locked, got %d", n)
		}

		ok, err := store.Logs().UpdateUnlocked(ctx, mon.ID, 900, "late")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected locked row to be left alone")
		}
		if got := testutil.ReloadLog(t, db, mon.ID); got.Hours != 400 || !got.Locked {
			t.Errorf("unexpected log after CAS %+v", got)
		}

		locked := true
		_, total, err := store.Logs().List(ctx, repository.LogFilter{Locked: &locked}, pagination.PageRequest{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if total != 2 {
			t.Errorf("expected 2 locked rows, got %d", total)
		}
	})
}

func TestReportRepo(t *testing.T) {
	ctx := context.Background()
	db, store := setupStore(t)
	emp := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	draft := testutil.CreateTestDraftReport(t, db, emp.ID, "2026-10-12", "2026-10-16")
	wed := models.MustParseDate("2026-10-14")

	t.Run("duplicate_period", func(t *testing.T) {
		dup := &models.Report{
			EmpID:         emp.ID,
			ReportType:    models.ReportTypeWeekly,
			WeekStartDate: draft.WeekStartDate,
			WeekEndDate:   draft.WeekEndDate,
			WeeklyHours:   models.HourMap{},
		}
		if err := store.Reports().Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
			t.Errorf("expected ErrDuplicatedKey, got %v", err)
		}
	})

	t.Run("drafts_do_not_cover", func(t *testing.T) {
		covered, err := store.Reports().SubmittedCovering(ctx, emp.ID, wed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if covered {
			t.Error("a draft must not lock its period")
		}
	})

	t.Run("mark_submitted_once", func(t *testing.T) {
		hours := models.HourMap{"P1": 750}
		ok, err := store.Reports().MarkSubmitted(ctx, draft.ID, wed, "final", hours)
		if err != nil || !ok {
			t.Fatalf("expected first submission to apply, got %v %v", ok, err)
		}
		ok, err = store.Reports().MarkSubmitted(ctx, draft.ID, wed, "again", hours)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected second submission to be a no-op")
		}

		got, err := store.Reports().GetByID(ctx, draft.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Status() != models.ReportStatusSubmitted || got.Content != "final" || !got.WeeklyHours.Equal(hours) {
			t.Errorf("unexpected report %+v", got)
		}

		covered, _ := store.Reports().SubmittedCovering(ctx, emp.ID, wed)
		if !covered {
			t.Error("expected submitted report to cover its period")
		}
		covered, _ = store.Reports().SubmittedCovering(ctx, emp.ID, models.MustParseDate("2026-10-19"))
		if covered {
			t.Error("next week is outside the period")
		}
	})
}

func TestStoreInTx(t *testing.T) {
	ctx := context.Background()
	db, store := setupStore(t)
	emp := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	project := testutil.CreateTestProject(t, db, "P1", "")

	rollback := errors.New("rollback")
	err := store.InTx(ctx, func(tx repository.Store) error {
		if err := tx.LockEmployee(ctx, emp.ID); err != nil {
			return err
		}
		log := &models.DailyLog{EmpID: emp.ID, ProjectID: project.ID, LogDate: models.MustParseDate("2026-10-12"), Hours: 100}
		if err := tx.Logs().Create(ctx, log); err != nil {
			return err
		}
		return rollback
	})
	if !errors.Is(err, rollback) {
		t.Fatalf("expected rollback error, got %v", err)
	}

	var count int64
	db.Model(&models.DailyLog{}).Count(&count)
	if count != 0 {
		t.Errorf("expected rollback to discard the insert, got %d rows", count)
	}

	err = store.InTx(ctx, func(tx repository.Store) error {
		return tx.LockEmployee(ctx, models.NewID())
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound for unknown employee, got %v", err)
	}
}

func TestDirectoryRepo(t *testing.T) {
	ctx := context.Background()
	db, store := setupStore(t)
	lead := testutil.CreateTestEmployee(t, db, models.RoleTeamLead)
	member := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	outsider := testutil.CreateTestEmployee(t, db, models.RoleWorker)
	p1 := testutil.CreateTestProject(t, db, "P1", lead.ID)
	p2 := testutil.CreateTestProject(t, db, "P2", lead.ID)
	testutil.AllocateTestEmployee(t, db, member.ID, p1.ID)
	testutil.AllocateTestEmployee(t, db, member.ID, p2.ID)

	dir := store.Directory()

	ok, err := dir.IsTeamMember(ctx, member.ID, lead.ID)
	if err != nil || !ok {
		t.Errorf("expected member to be on the lead's team, got %v %v", ok, err)
	}
	if ok, _ := dir.IsTeamMember(ctx, outsider.ID, lead.ID); ok {
		t.Error("outsider reported as team member")
	}

	ids, err := dir.TeamMemberIDs(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 1 || ids[0] != member.ID {
		t.Errorf("expected one distinct member, got %v", ids)
	}

	if ok, _ := dir.HasAllocation(ctx, outsider.ID); ok {
		t.Error("outsider has no allocation")
	}

	byID, err := dir.EmployeesByID(ctx, []string{lead.ID, member.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byID) != 2 || byID[member.ID].ID != member.ID {
		t.Errorf("unexpected lookup %v", byID)
	}

	if _, err := dir.GetProject(ctx, models.NewID()); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("expected ErrRecordNotFound, got %v", err)
	}
}
