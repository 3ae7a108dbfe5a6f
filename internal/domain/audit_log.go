package domain

import "time"

// AuditAction captures what a moderation action did.
type AuditAction string

const (
	AuditSuspendUser       AuditAction = "SUSPEND_USER"
	AuditUnsuspendUser     AuditAction = "UNSUSPEND_USER"
	AuditDeactivateUser    AuditAction = "DEACTIVATE_USER"
	AuditReactivateUser    AuditAction = "REACTIVATE_USER"
	AuditDeleteUser        AuditAction = "DELETE_USER"
	AuditStartReportReview AuditAction = "START_REPORT_REVIEW"
	AuditResolveReport     AuditAction = "RESOLVE_REPORT"
	AuditRejectReport      AuditAction = "REJECT_REPORT"
	AuditDeleteReview      AuditAction = "DELETE_REVIEW"
	AuditBroadcast         AuditAction = "BROADCAST"
)

// SystemActor is recorded when a transition is applied automatically
// rather than by an administrator.
const SystemActor = "system"

// AuditLogEntry is an immutable moderation trail record. Entries are
// created once per action and never mutated or deleted.
type AuditLogEntry struct {
	ID        string
	ActorID   string
	Action    AuditAction
	TargetID  string
	Metadata  map[string]any
	CreatedAt time.Time
}
