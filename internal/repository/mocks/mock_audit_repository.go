package mocks

import (
	"context"
	"time"

	"auditapi/internal/model"
	"auditapi/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, a *model.Audit) (*model.Audit, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}

func (m *MockAuditRepository) FindByID(ctx context.Context, id int64) (*model.Audit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}

func (m *MockAuditRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Audit], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Audit]), args.Error(1)
}

func (m *MockAuditRepository) FindingsByAudit(ctx context.Context, auditID int64) ([]model.Finding, error) {
	args := m.Called(ctx, auditID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Finding), args.Error(1)
}

func (m *MockAuditRepository) UpsertFinding(ctx context.Context, f *model.Finding) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *MockAuditRepository) MarkInProgress(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAuditRepository) Complete(ctx context.Context, id int64, completedAt time.Time) (*model.Audit, error) {
	args := m.Called(ctx, id, completedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}
