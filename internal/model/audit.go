package model

import "time"

// AuditStatus is the lifecycle state of an accessibility audit.
// Transitions only move forward: pending -> in_progress -> complete.
type AuditStatus string

const (
	StatusPending    AuditStatus = "pending"
	StatusInProgress AuditStatus = "in_progress"
	StatusComplete   AuditStatus = "complete"
)

// FindingStatus is the outcome of one WCAG rule check.
type FindingStatus string

const (
	FindingPass        FindingStatus = "pass"
	FindingFail        FindingStatus = "fail"
	FindingNeedsReview FindingStatus = "needs_review"
)

// Severity classifies how serious a failed check is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
)

// Audit represents one document's accessibility review.
// This is a pure domain model with no database-specific dependencies or tags.
type Audit struct {
	ID             int64       `json:"id"`
	DocumentID     string      `json:"document_id"`
	Filename       string      `json:"filename"`
	FileSize       int64       `json:"file_size"`
	FileType       string      `json:"file_type"`
	Status         AuditStatus `json:"status"`
	TotalIssues    int         `json:"total_issues"`
	CriticalIssues int         `json:"critical_issues"`
	CreatedAt      time.Time   `json:"created_at"`
	CompletedAt    *time.Time  `json:"completed_at,omitempty"`
}

// Finding is one rule-level compliance result within an audit.
// Findings are keyed by (AuditID, WCAGID); a later submission with the
// same key overwrites status, severity and notes.
type Finding struct {
	ID        int64         `json:"id"`
	AuditID   int64         `json:"audit_id"`
	WCAGID    string        `json:"wcag_id"`
	Status    FindingStatus `json:"status"`
	Severity  Severity      `json:"severity"`
	Notes     string        `json:"notes"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
