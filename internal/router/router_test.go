package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"worklog/internal/logger"
	"worklog/internal/middleware"
	"worklog/internal/models"
	"worklog/internal/repository"
	"worklog/internal/services"
	"worklog/internal/testutil"
	"worklog/internal/validator"
	"worklog/internal/workweek"
)

// Wednesday 2026-10-14; the current week is 2026-10-12..2026-10-16.
var testNow = time.Date(2026, time.October, 14, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "")
	validator.Register()
}

// testApp holds the full application stack for flow tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func setupApp(t *testing.T) *testApp {
	t.Helper()
	return setupAppAt(t, testNow)
}

func setupAppAt(t *testing.T, now time.Time) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	store := repository.NewStore(db)
	cal := workweek.New(time.UTC).WithClock(func() time.Time { return now })
	audit := services.NewAuditService(store)
	aggregation := services.NewAggregationService(store)
	logs := services.NewDailyLogService(store, cal, audit)
	reports := services.NewReportService(store, cal, logs, aggregation, audit)

	r := New(Deps{
		Logs:           logs,
		Aggregation:    aggregation,
		Reports:        reports,
		Audit:          audit,
		DB:             fakePinger{},
		MetricsEnabled: true,
		MetricsAPIKey:  "scrape-key",
	})
	return &testApp{DB: db, Router: r}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// tokenFor signs an access token for emp.
func tokenFor(t *testing.T, emp *models.Employee) string {
	t.Helper()
	token, err := middleware.GenerateAccessToken(emp)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseJSON(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestWeeklySubmissionFlow(t *testing.T) {
	app := setupApp(t)
	emp := testutil.CreateTestEmployee(t, app.DB, models.RoleWorker)
	p1 := testutil.CreateTestProject(t, app.DB, "P1", "")
	p2 := testutil.CreateTestProject(t, app.DB, "P2", "")
	token := tokenFor(t, emp)

	// Step 1: log Monday on P1 and Tuesday on P2
	rec := app.request("POST", "/api/v1/logs",
		`{"project_id":"`+p1.ID+`","log_date":"2026-10-12","hours":5}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = app.request("POST", "/api/v1/logs/daily",
		`{"project_id":"`+p2.ID+`","log_date":"2026-10-13","hours":3}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 2: aggregate the week
	rec = app.request("GET", "/api/v1/logs/aggregate?start_date=2026-10-12&end_date=2026-10-16", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	hours := parseJSON(t, rec)["weekly_hours"].(map[string]interface{})
	if hours["P1"].(float64) != 5 || hours["P2"].(float64) != 3 {
		t.Errorf("unexpected aggregate %v", hours)
	}

	// Step 3: submit the week
	rec = app.request("POST", "/api/v1/reports/submit-weekly", `{"content":"done"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)["report"].(map[string]interface{})
	hours = report["weekly_hours"].(map[string]interface{})
	if hours["P1"].(float64) != 5 || hours["P2"].(float64) != 3 {
		t.Errorf("unexpected weekly_hours %v", hours)
	}
	if report["report_date"] != "2026-10-14" || report["status"] != "SUBMITTED" {
		t.Errorf("unexpected report %v", report)
	}

	// Step 4: the Monday entry is now locked
	rec = app.request("POST", "/api/v1/logs",
		`{"project_id":"`+p1.ID+`","log_date":"2026-10-12","hours":6}`, token)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "LOCKED_ENTRY" {
		t.Errorf("expected LOCKED_ENTRY, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 5: a second submission for the week is a duplicate
	rec = app.request("POST", "/api/v1/reports/submit-weekly", `{"content":"again"}`, token)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "DUPLICATE_REPORT" {
		t.Errorf("expected DUPLICATE_REPORT, got %d: %s", rec.Code, rec.Body.String())
	}

	// Step 6: aggregate no longer counts locked hours
	rec = app.request("GET", "/api/v1/logs/aggregate?start_date=2026-10-12&end_date=2026-10-16", "", token)
	if hours := parseJSON(t, rec)["weekly_hours"].(map[string]interface{}); len(hours) != 0 {
		t.Errorf("expected locked hours to be excluded, got %v", hours)
	}

	// Step 7: list shows both entries as locked
	rec = app.request("GET", "/api/v1/logs?locked=true", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total"].(float64); total != 2 {
		t.Errorf("expected 2 locked entries, got %v", total)
	}
}

func TestDraftThenSubmitFlow(t *testing.T) {
	app := setupApp(t)
	emp := testutil.CreateTestEmployee(t, app.DB, models.RoleWorker)
	hr := testutil.CreateTestEmployee(t, app.DB, models.RoleHRAdmin)
	p1 := testutil.CreateTestProject(t, app.DB, "P1", "")
	token := tokenFor(t, emp)
	hrToken := tokenFor(t, hr)

	app.request("POST", "/api/v1/logs", `{"project_id":"`+p1.ID+`","log_date":"2026-10-12","hours":4}`, token)

	rec := app.request("POST", "/api/v1/reports",
		`{"report_type":"WEEKLY","week_start_date":"2026-10-12","week_end_date":"2026-10-16","content":"draft"}`, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	draft := parseJSON(t, rec)["report"].(map[string]interface{})
	reportID := draft["id"].(string)
	if draft["report_date"] != nil {
		t.Errorf("expected a draft, got %v", draft)
	}

	// edits after the draft are picked up by the submission
	app.request("POST", "/api/v1/logs", `{"project_id":"`+p1.ID+`","log_date":"2026-10-13","hours":2.5}`, token)

	rec = app.request("PUT", "/api/v1/reports", `{"id":"`+reportID+`","report_date":"2026-10-14"}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	submitted := parseJSON(t, rec)["report"].(map[string]interface{})
	if h := submitted["weekly_hours"].(map[string]interface{}); h["P1"].(float64) != 6.5 {
		t.Errorf("expected 6.5 hours, got %v", h)
	}

	// the owner may no longer edit
	rec = app.request("PUT", "/api/v1/reports", `{"id":"`+reportID+`","content":"changed"}`, token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}

	// HR may, and the edit is audited
	rec = app.request("PUT", "/api/v1/reports", `{"id":"`+reportID+`","content":"corrected"}`, hrToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/audit-logs?entity_type=report&entity_id="+reportID, "", hrToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if total := parseJSON(t, rec)["total"].(float64); total != 3 {
		t.Errorf("expected create, submit and edit entries, got %v", total)
	}

	rec = app.request("GET", "/api/v1/audit-logs", "", token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for worker, got %d", rec.Code)
	}

	rec = app.request("GET", "/api/v1/reports/export", "", hrToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Errorf("expected an attachment, got %q", rec.Header().Get("Content-Disposition"))
	}
}

func TestWeekendSubmissionRejected(t *testing.T) {
	app := setupAppAt(t, time.Date(2026, time.October, 17, 12, 0, 0, 0, time.UTC))
	emp := testutil.CreateTestEmployee(t, app.DB, models.RoleWorker)

	rec := app.request("POST", "/api/v1/reports/submit-weekly", "", tokenFor(t, emp))
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "SUBMISSION_WINDOW_CLOSED" {
		t.Errorf("expected SUBMISSION_WINDOW_CLOSED, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestTeamLeadScope(t *testing.T) {
	app := setupApp(t)
	lead := testutil.CreateTestEmployee(t, app.DB, models.RoleTeamLead)
	member := testutil.CreateTestEmployee(t, app.DB, models.RoleWorker)
	outsider := testutil.CreateTestEmployee(t, app.DB, models.RoleWorker)
	project := testutil.CreateTestProject(t, app.DB, "TEAM", lead.ID)
	testutil.AllocateTestEmployee(t, app.DB, member.ID, project.ID)
	testutil.CreateTestLog(t, app.DB, member.ID, project.ID, "2026-10-12", "8")
	testutil.CreateTestLog(t, app.DB, outsider.ID, project.ID, "2026-10-12", "8")
	token := tokenFor(t, lead)

	rec := app.request("GET", "/api/v1/logs/aggregate?emp_id="+member.ID+"&start_date=2026-10-12&end_date=2026-10-16", "", token)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for team member, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = app.request("GET", "/api/v1/logs/aggregate?emp_id="+outsider.ID+"&start_date=2026-10-12&end_date=2026-10-16", "", token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for outsider, got %d: %s", rec.Code, rec.Body.String())
	}

	// leads never write on behalf of members
	rec = app.request("POST", "/api/v1/logs",
		`{"emp_id":"`+member.ID+`","project_id":"`+project.ID+`","log_date":"2026-10-13","hours":1}`, token)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestOperationalEndpoints(t *testing.T) {
	app := setupApp(t)

	t.Run("health", func(t *testing.T) {
		rec := app.request("GET", "/api/health", "", "")
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
	})

	t.Run("health_db_down", func(t *testing.T) {
		r := New(Deps{DB: fakePinger{err: errors.New("connection refused")}})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", http.NoBody))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("metrics_requires_key", func(t *testing.T) {
		rec := app.request("GET", "/metrics", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}

		req := httptest.NewRequest("GET", "/metrics", http.NoBody)
		req.Header.Set("X-API-Key", "scrape-key")
		rec = httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "worklog_http_requests_total") {
			t.Errorf("expected metrics exposition, got %d", rec.Code)
		}
	})

	t.Run("metrics_disabled", func(t *testing.T) {
		r := New(Deps{})
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", http.NoBody))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := app.request("GET", "/api/v1/logs", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}
