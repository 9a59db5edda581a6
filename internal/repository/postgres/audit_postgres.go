package postgres

import (
	"context"
	"database/sql"
	"time"

	"auditapi/internal/model"
	"auditapi/internal/repository"
)

const auditColumns = "id, document_id, filename, file_size, file_type, status, total_issues, critical_issues, created_at, completed_at"

// AuditPostgres is a PostgreSQL implementation of repository.AuditRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type AuditPostgres struct {
	db *sql.DB
}

// NewAuditPostgres creates a new AuditPostgres repository.
func NewAuditPostgres(db *sql.DB) *AuditPostgres {
	return &AuditPostgres{db: db}
}

var _ repository.AuditRepository = (*AuditPostgres)(nil)

func scanAudit(row interface{ Scan(dest ...any) error }) (*model.Audit, error) {
	var a model.Audit
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.DocumentID,
		&a.Filename,
		&a.FileSize,
		&a.FileType,
		&a.Status,
		&a.TotalIssues,
		&a.CriticalIssues,
		&a.CreatedAt,
		&completedAt,
	); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return &a, nil
}

// Create inserts a new audit row and returns the stored record with its assigned id.
func (r *AuditPostgres) Create(ctx context.Context, a *model.Audit) (*model.Audit, error) {
	const q = `
		INSERT INTO audits (document_id, filename, file_size, file_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + auditColumns
	row := r.db.QueryRowContext(ctx, q,
		a.DocumentID,
		a.Filename,
		a.FileSize,
		a.FileType,
		a.Status,
		a.CreatedAt,
	)
	return scanAudit(row)
}

// FindByID fetches a single audit by its numeric id.
func (r *AuditPostgres) FindByID(ctx context.Context, id int64) (*model.Audit, error) {
	const q = `SELECT ` + auditColumns + ` FROM audits WHERE id = $1`
	return scanAudit(r.db.QueryRowContext(ctx, q, id))
}

// List returns audits using LIMIT/OFFSET pagination and a total count.
func (r *AuditPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Audit], error) {
	const qCount = `SELECT COUNT(*) FROM audits`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + auditColumns + `
		FROM audits
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Audit, 0)
	for rows.Next() {
		a, err := scanAudit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Audit]{
		Items: items,
		Total: total,
	}, nil
}

// FindingsByAudit returns the findings of an audit ordered by insertion (id ASC).
func (r *AuditPostgres) FindingsByAudit(ctx context.Context, auditID int64) ([]model.Finding, error) {
	const q = `
		SELECT id, audit_id, wcag_id, status, severity, notes, created_at, updated_at
		FROM audit_findings
		WHERE audit_id = $1
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, auditID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	findings := make([]model.Finding, 0)
	for rows.Next() {
		var f model.Finding
		if err := rows.Scan(
			&f.ID,
			&f.AuditID,
			&f.WCAGID,
			&f.Status,
			&f.Severity,
			&f.Notes,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return findings, nil
}

// UpsertFinding writes one finding keyed by (audit_id, wcag_id).
// An existing row keeps its id and created_at; status, severity and notes are overwritten.
func (r *AuditPostgres) UpsertFinding(ctx context.Context, f *model.Finding) error {
	const q = `
		INSERT INTO audit_findings (audit_id, wcag_id, status, severity, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (audit_id, wcag_id) DO UPDATE
		SET status = EXCLUDED.status,
		    severity = EXCLUDED.severity,
		    notes = EXCLUDED.notes,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, q,
		f.AuditID,
		f.WCAGID,
		f.Status,
		f.Severity,
		f.Notes,
		f.UpdatedAt,
	)
	return err
}

// MarkInProgress moves a pending audit forward. The status guard keeps the
// transition one-way; calling it on an in_progress or complete audit is a no-op.
func (r *AuditPostgres) MarkInProgress(ctx context.Context, id int64) error {
	const q = `UPDATE audits SET status = $2 WHERE id = $1 AND status = $3`
	_, err := r.db.ExecContext(ctx, q, id, model.StatusInProgress, model.StatusPending)
	return err
}

// Complete recomputes the issue counters from the stored findings and marks
// the audit complete in a single statement, so readers never see counters
// that disagree with the status they were computed under.
func (r *AuditPostgres) Complete(ctx context.Context, id int64, completedAt time.Time) (*model.Audit, error) {
	const q = `
		UPDATE audits SET
			status = $2,
			total_issues = (SELECT COUNT(*) FROM audit_findings WHERE audit_id = audits.id),
			critical_issues = (SELECT COUNT(*) FROM audit_findings WHERE audit_id = audits.id AND severity = $3),
			completed_at = $4
		WHERE id = $1
		RETURNING ` + auditColumns
	row := r.db.QueryRowContext(ctx, q, id, model.StatusComplete, model.SeverityCritical, completedAt)
	return scanAudit(row)
}
