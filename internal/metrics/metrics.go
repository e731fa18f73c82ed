// Package metrics defines the Prometheus collectors exported at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worklog"

// HTTP

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route template and status code.",
}, []string{"method", "route", "status"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method and route template.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route"})

var APIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "errors_total",
	Help:      "Error responses by application error code.",
}, []string{"code"})

// Daily logs

var LogsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "logs",
	Name:      "written_total",
	Help:      "Daily log writes by operation (INSERT or UPDATE).",
}, []string{"operation"})

var LogsLocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "logs",
	Name:      "locked_total",
	Help:      "Daily log entries locked by report submissions.",
})

// Reports

var ReportsDrafted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "drafted_total",
	Help:      "Draft reports created by report type.",
}, []string{"report_type"})

var ReportsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "submitted_total",
	Help:      "Reports submitted by report type.",
}, []string{"report_type"})

var ReportConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reports",
	Name:      "conflicts_total",
	Help:      "Rejected report operations by reason.",
}, []string{"reason"})

// Audit

var AuditRecords = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "records_total",
	Help:      "Audit entries written by entity type and operation.",
}, []string{"entity_type", "operation"})

var AuditFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "audit",
	Name:      "failures_total",
	Help:      "Audit writes that failed and aborted their operation.",
})

// Handler returns the exposition handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
