package policy

import (
	"errors"
	"testing"

	"worklog/internal/models"
)

const (
	actor = "actor"
	other = "other"
)

func TestScopeFor(t *testing.T) {
	tests := []struct {
		op               Operation
		worker, lead, hr Scope
	}{
		{LogWrite, ScopeOwn, ScopeOwn, ScopeAny},
		{LogRead, ScopeOwn, ScopeTeam, ScopeAny},
		{LogAggregate, ScopeOwn, ScopeTeam, ScopeAny},
		{ReportCreate, ScopeOwn, ScopeOwn, ScopeAny},
		{ReportRead, ScopeOwn, ScopeTeam, ScopeAny},
		{ReportEditDraft, ScopeOwn, ScopeOwn, ScopeAny},
		{ReportSubmit, ScopeOwn, ScopeOwn, ScopeAny},
		{ReportEditSubmitted, ScopeNone, ScopeNone, ScopeAny},
		{ReportExport, ScopeNone, ScopeTeam, ScopeAny},
		{AuditRead, ScopeNone, ScopeNone, ScopeAny},
	}

	for _, tt := range tests {
		t.Run(string(tt.op), func(t *testing.T) {
			if got := ScopeFor(models.RoleWorker, tt.op); got != tt.worker {
				t.Errorf("worker: got %s, want %s", got, tt.worker)
			}
			if got := ScopeFor(models.RoleTeamLead, tt.op); got != tt.lead {
				t.Errorf("team lead: got %s, want %s", got, tt.lead)
			}
			if got := ScopeFor(models.RoleHRAdmin, tt.op); got != tt.hr {
				t.Errorf("hr admin: got %s, want %s", got, tt.hr)
			}
		})
	}

	t.Run("unknown_role", func(t *testing.T) {
		if got := ScopeFor(models.Role("CEO"), LogRead); got != ScopeNone {
			t.Errorf("got %s, want none", got)
		}
	})

	t.Run("unknown_operation", func(t *testing.T) {
		if got := ScopeFor(models.RoleHRAdmin, Operation("log.delete")); got != ScopeNone {
			t.Errorf("got %s, want none", got)
		}
	})
}

func TestDecide(t *testing.T) {
	yes := func() (bool, error) { return true, nil }
	no := func() (bool, error) { return false, nil }

	tests := []struct {
		name   string
		role   models.Role
		op     Operation
		owner  string
		inTeam TeamCheck
		want   bool
	}{
		{"worker_writes_own_log", models.RoleWorker, LogWrite, actor, nil, true},
		{"worker_writes_other_log", models.RoleWorker, LogWrite, other, yes, false},
		{"worker_edits_submitted", models.RoleWorker, ReportEditSubmitted, actor, nil, false},
		{"lead_reads_team_log", models.RoleTeamLead, LogRead, other, yes, true},
		{"lead_reads_foreign_log", models.RoleTeamLead, LogRead, other, no, false},
		{"lead_reads_without_team_check", models.RoleTeamLead, LogRead, other, nil, false},
		{"lead_reads_own_log", models.RoleTeamLead, LogRead, actor, no, true},
		{"lead_writes_team_log", models.RoleTeamLead, LogWrite, other, yes, false},
		{"lead_exports_team", models.RoleTeamLead, ReportExport, other, yes, true},
		{"worker_exports_own", models.RoleWorker, ReportExport, actor, nil, false},
		{"hr_edits_submitted", models.RoleHRAdmin, ReportEditSubmitted, other, nil, true},
		{"hr_reads_audit", models.RoleHRAdmin, AuditRead, other, nil, true},
		{"unknown_role_denied", models.Role("GUEST"), LogRead, actor, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.role, actor, tt.op, tt.owner, tt.inTeam)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("team_check_not_called_for_own_scope", func(t *testing.T) {
		called := false
		check := func() (bool, error) { called = true; return true, nil }

		if _, err := Decide(models.RoleWorker, actor, LogRead, other, check); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called {
			t.Error("team check should not be evaluated for own scope")
		}
	})

	t.Run("team_check_error_propagates", func(t *testing.T) {
		boom := errors.New("directory unavailable")
		_, err := Decide(models.RoleTeamLead, actor, ReportRead, other, func() (bool, error) { return false, boom })
		if !errors.Is(err, boom) {
			t.Errorf("expected directory error, got %v", err)
		}
	})

	t.Run("empty_actor_denied", func(t *testing.T) {
		got, _ := Decide(models.RoleHRAdmin, "", LogRead, "", nil)
		if got {
			t.Error("expected deny for anonymous actor")
		}
	})
}
