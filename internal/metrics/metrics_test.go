package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(ReportsSubmitted.WithLabelValues("WEEKLY"))
	ReportsSubmitted.WithLabelValues("WEEKLY").Inc()

	if got := testutil.ToFloat64(ReportsSubmitted.WithLabelValues("WEEKLY")); got != before+1 {
		t.Errorf("expected counter to grow by one, got %v -> %v", before, got)
	}
}

func TestHandlerExposesNamespace(t *testing.T) {
	LogsLocked.Add(0)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "worklog_logs_locked_total") {
		t.Error("expected worklog_logs_locked_total in exposition output")
	}
}
