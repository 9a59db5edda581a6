package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"auditapi/internal/model"
	"auditapi/internal/repository"
)

var (
	ErrDocumentIDRequired = errors.New("document_id is required")
	ErrFilenameRequired   = errors.New("filename is required")
	ErrFindingsRequired   = errors.New("findings list is empty")
	ErrWCAGIDRequired     = errors.New("wcag_id is required")
	ErrAuditNotFound      = errors.New("audit not found")
)

var timeNow = time.Now

// CreateAuditInput carries the caller-supplied fields for a new audit.
type CreateAuditInput struct {
	DocumentID string
	Filename   string
	FileSize   int64
	FileType   string
}

// FindingInput is one rule result submitted by the external auditor process.
type FindingInput struct {
	WCAGID   string
	Status   model.FindingStatus
	Severity model.Severity
	Notes    string
}

// AuditDetail bundles an audit with all of its findings.
type AuditDetail struct {
	Audit    *model.Audit    `json:"audit"`
	Findings []model.Finding `json:"findings"`
}

// AuditListResult is the service-level DTO for paginated audits.
type AuditListResult struct {
	Items []model.Audit `json:"data"`
	Total int           `json:"total"`
}

// AuditService defines the use cases around the audit lifecycle.
type AuditService interface {
	// Create registers a new audit with status pending.
	Create(ctx context.Context, in CreateAuditInput) (*model.Audit, error)

	// RecordFindings upserts the submitted findings in list order and
	// advances the audit to complete with recomputed issue counters.
	// Every submission is treated as final; the audit passes through
	// in_progress only while the upserts are being applied.
	RecordFindings(ctx context.Context, auditID int64, findings []FindingInput) (*model.Audit, error)

	// Get returns an audit together with its findings in insertion order.
	Get(ctx context.Context, id int64) (*AuditDetail, error)

	// List returns audits using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*AuditListResult, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService constructs a new AuditService.
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Create(ctx context.Context, in CreateAuditInput) (*model.Audit, error) {
	if in.DocumentID == "" {
		return nil, ErrDocumentIDRequired
	}
	if in.Filename == "" {
		return nil, ErrFilenameRequired
	}

	a := &model.Audit{
		DocumentID: in.DocumentID,
		Filename:   in.Filename,
		FileSize:   in.FileSize,
		FileType:   in.FileType,
		Status:     model.StatusPending,
		CreatedAt:  timeNow().UTC(),
	}
	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create audit: %w", err)
	}
	return stored, nil
}

func (s *auditService) RecordFindings(ctx context.Context, auditID int64, findings []FindingInput) (*model.Audit, error) {
	if len(findings) == 0 {
		return nil, ErrFindingsRequired
	}
	for _, f := range findings {
		if f.WCAGID == "" {
			return nil, ErrWCAGIDRequired
		}
	}

	if _, err := s.repo.FindByID(ctx, auditID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuditNotFound
		}
		return nil, fmt.Errorf("find audit: %w", err)
	}

	// Readers between here and Complete observe the audit in_progress.
	if err := s.repo.MarkInProgress(ctx, auditID); err != nil {
		return nil, fmt.Errorf("mark in progress: %w", err)
	}

	now := timeNow().UTC()
	for _, in := range findings {
		f := &model.Finding{
			AuditID:   auditID,
			WCAGID:    in.WCAGID,
			Status:    in.Status,
			Severity:  in.Severity,
			Notes:     in.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.UpsertFinding(ctx, f); err != nil {
			// Applied upserts are not rolled back; the audit stays
			// in_progress until a later submission succeeds.
			return nil, fmt.Errorf("upsert finding %s: %w", in.WCAGID, err)
		}
	}

	updated, err := s.repo.Complete(ctx, auditID, timeNow().UTC())
	if err != nil {
		return nil, fmt.Errorf("complete audit: %w", err)
	}
	return updated, nil
}

func (s *auditService) Get(ctx context.Context, id int64) (*AuditDetail, error) {
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAuditNotFound
		}
		return nil, fmt.Errorf("find audit: %w", err)
	}
	findings, err := s.repo.FindingsByAudit(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load findings: %w", err)
	}
	return &AuditDetail{Audit: a, Findings: findings}, nil
}

// List returns paginated audits without exposing repository types.
func (s *auditService) List(ctx context.Context, limit, offset int) (*AuditListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &AuditListResult{Items: res.Items, Total: res.Total}, nil
}
