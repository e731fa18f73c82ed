// Package policy decides which role may perform which operation on whose data.
// Decisions are pure: the only outside input is the lazily evaluated team check.
package policy

import "worklog/internal/models"

// Operation names a guarded action.
type Operation string

const (
	LogWrite            Operation = "log.write"
	LogRead             Operation = "log.read"
	LogAggregate        Operation = "log.aggregate"
	ReportCreate        Operation = "report.create"
	ReportRead          Operation = "report.read"
	ReportEditDraft     Operation = "report.edit_draft"
	ReportSubmit        Operation = "report.submit"
	ReportEditSubmitted Operation = "report.edit_submitted"
	ReportExport        Operation = "report.export"
	AuditRead           Operation = "audit.read"
)

// Scope is how far an operation reaches beyond the actor's own data.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeTeam
	ScopeAny
)

func (s Scope) String() string {
	switch s {
	case ScopeOwn:
		return "own"
	case ScopeTeam:
		return "team"
	case ScopeAny:
		return "any"
	default:
		return "none"
	}
}

type row struct {
	worker, lead, hr Scope
}

var table = map[Operation]row{
	LogWrite:            {ScopeOwn, ScopeOwn, ScopeAny},
	LogRead:             {ScopeOwn, ScopeTeam, ScopeAny},
	LogAggregate:        {ScopeOwn, ScopeTeam, ScopeAny},
	ReportCreate:        {ScopeOwn, ScopeOwn, ScopeAny},
	ReportRead:          {ScopeOwn, ScopeTeam, ScopeAny},
	ReportEditDraft:     {ScopeOwn, ScopeOwn, ScopeAny},
	ReportSubmit:        {ScopeOwn, ScopeOwn, ScopeAny},
	ReportEditSubmitted: {ScopeNone, ScopeNone, ScopeAny},
	ReportExport:        {ScopeNone, ScopeTeam, ScopeAny},
	AuditRead:           {ScopeNone, ScopeNone, ScopeAny},
}

// ScopeFor returns the table cell for role and op. Unknown roles and
// operations get ScopeNone.
func ScopeFor(role models.Role, op Operation) Scope {
	r, ok := table[op]
	if !ok {
		return ScopeNone
	}
	switch role {
	case models.RoleWorker:
		return r.worker
	case models.RoleTeamLead:
		return r.lead
	case models.RoleHRAdmin:
		return r.hr
	}
	return ScopeNone
}

// TeamCheck reports whether the resource owner belongs to the actor's team.
type TeamCheck func() (bool, error)

// Decide evaluates whether actorID holding role may perform op on data owned
// by ownerID. inTeam is called only when the cell is ScopeTeam and the owner
// is someone else.
func Decide(role models.Role, actorID string, op Operation, ownerID string, inTeam TeamCheck) (bool, error) {
	if actorID == "" {
		return false, nil
	}
	switch ScopeFor(role, op) {
	case ScopeAny:
		return true, nil
	case ScopeOwn:
		return ownerID == actorID, nil
	case ScopeTeam:
		if ownerID == actorID {
			return true, nil
		}
		if inTeam == nil {
			return false, nil
		}
		return inTeam()
	}
	return false, nil
}
