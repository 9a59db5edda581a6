package mocks

import (
	"context"

	"auditapi/internal/model"
	"auditapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Create(ctx context.Context, in service.CreateAuditInput) (*model.Audit, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}

func (m *MockAuditService) RecordFindings(ctx context.Context, auditID int64, findings []service.FindingInput) (*model.Audit, error) {
	args := m.Called(ctx, auditID, findings)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Audit), args.Error(1)
}

func (m *MockAuditService) Get(ctx context.Context, id int64) (*service.AuditDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditDetail), args.Error(1)
}

func (m *MockAuditService) List(ctx context.Context, limit, offset int) (*service.AuditListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuditListResult), args.Error(1)
}
