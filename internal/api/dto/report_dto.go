package dto

import (
	"time"

	"github.com/carelink/care-service/internal/domain"
)

// CreateReportRequest payload for a new complaint.
type CreateReportRequest struct {
	ReportedID    string   `json:"reported_id"`
	HelpRequestID *string  `json:"help_request_id,omitempty"`
	Reason        string   `json:"reason"`
	Description   string   `json:"description"`
	EvidenceKeys  []string `json:"evidence_keys,omitempty"`
}

// ResolveReportRequest payload for POST /admin/reports/:reportId/resolve.
type ResolveReportRequest struct {
	Action   string `json:"action"`
	Duration int    `json:"duration"`
	Reason   string `json:"reason"`
	Note     string `json:"note"`
}

// ReportResponse is the public shape of a report.
type ReportResponse struct {
	ID            string              `json:"id"`
	ReporterID    string              `json:"reporter_id"`
	ReportedID    string              `json:"reported_id"`
	HelpRequestID *string             `json:"help_request_id,omitempty"`
	Reason        string              `json:"reason"`
	Description   string              `json:"description"`
	Status        domain.ReportStatus `json:"status"`
	EvidenceKeys  []string            `json:"evidence_keys"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ReportHistoryResponse is one status transition row.
type ReportHistoryResponse struct {
	ID         string              `json:"id"`
	FromStatus domain.ReportStatus `json:"from_status"`
	ToStatus   domain.ReportStatus `json:"to_status"`
	ActorID    string              `json:"actor_id"`
	Note       string              `json:"note,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}

// FromReport maps a domain report.
func FromReport(report *domain.Report) ReportResponse {
	return ReportResponse{
		ID:            report.ID,
		ReporterID:    report.ReporterID,
		ReportedID:    report.ReportedID,
		HelpRequestID: report.HelpRequestID,
		Reason:        report.Reason,
		Description:   report.Description,
		Status:        report.Status,
		EvidenceKeys:  report.EvidenceKeys,
		CreatedAt:     report.CreatedAt,
		UpdatedAt:     report.UpdatedAt,
	}
}

// FromReportHistory maps the transition trail.
func FromReportHistory(entries []domain.ReportStatusChange) []ReportHistoryResponse {
	result := make([]ReportHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, ReportHistoryResponse{
			ID:         entry.ID,
			FromStatus: entry.FromStatus,
			ToStatus:   entry.ToStatus,
			ActorID:    entry.ActorID,
			Note:       entry.Note,
			CreatedAt:  entry.CreatedAt,
		})
	}
	return result
}
