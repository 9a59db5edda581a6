package repository

import (
	"context"
	"time"

	"auditapi/internal/model"
)

// AuditRepository defines data access for audits and their findings using
// SQL queries only. No business logic here — strictly persistence operations.
//
// The findings lifecycle is split into three persistence steps that the
// service layer sequences: MarkInProgress, UpsertFinding (per finding, in
// caller order), Complete. Each statement is independently atomic; no
// transaction spans the sequence, so a concurrent reader may observe an
// audit in_progress with a partial finding set.
type AuditRepository interface {
	// Create inserts a new audit row with status pending.
	// Returns the stored audit including the DB-assigned id.
	Create(ctx context.Context, a *model.Audit) (*model.Audit, error)

	// FindByID returns an audit by its numeric id.
	FindByID(ctx context.Context, id int64) (*model.Audit, error)

	// List returns a paginated list of audits (newest first) and the total row count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Audit], error)

	// FindingsByAudit returns all findings for an audit in insertion order.
	FindingsByAudit(ctx context.Context, auditID int64) ([]model.Finding, error)

	// UpsertFinding inserts a finding or, when the (audit_id, wcag_id) key
	// already exists, overwrites its status, severity and notes.
	UpsertFinding(ctx context.Context, f *model.Finding) error

	// MarkInProgress advances a pending audit to in_progress.
	// Audits already past pending are left untouched.
	MarkInProgress(ctx context.Context, id int64) error

	// Complete recomputes the aggregate issue counters from the stored
	// findings, marks the audit complete and stamps completed_at.
	// Returns the updated audit.
	Complete(ctx context.Context, id int64, completedAt time.Time) (*model.Audit, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
