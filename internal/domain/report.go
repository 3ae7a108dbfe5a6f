package domain

import "time"

// ReportStatus enumerates the report review lifecycle.
type ReportStatus string

const (
	ReportStatusPending    ReportStatus = "PENDING"
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusResolved   ReportStatus = "RESOLVED"
	ReportStatusRejected   ReportStatus = "REJECTED"
)

// Report is a user-submitted complaint about another account.
type Report struct {
	ID            string
	ReporterID    string
	ReportedID    string
	HelpRequestID *string
	Reason        string
	Description   string
	Status        ReportStatus
	EvidenceKeys  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportStatusChange is one append-only history row for a report.
type ReportStatusChange struct {
	ID         string
	ReportID   string
	FromStatus ReportStatus
	ToStatus   ReportStatus
	ActorID    string
	Note       string
	CreatedAt  time.Time
}

// DisciplinaryAction is the optional side action applied when resolving
// a report against the reported account.
type DisciplinaryAction string

const (
	DisciplinarySuspend    DisciplinaryAction = "suspend"
	DisciplinaryDeactivate DisciplinaryAction = "deactivate"
)
