package mocks

import (
	"context"

	"auditapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockObjectService struct {
	mock.Mock
}

func (m *MockObjectService) Upload(ctx context.Context, key string, data []byte, contentType string) (*service.ObjectPayload, error) {
	args := m.Called(ctx, key, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ObjectPayload), args.Error(1)
}

func (m *MockObjectService) Download(ctx context.Context, key string) (*service.ObjectPayload, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ObjectPayload), args.Error(1)
}

func (m *MockObjectService) PresignUpload(ctx context.Context, key string, expiresIn int) (*service.PresignedURL, error) {
	args := m.Called(ctx, key, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresignedURL), args.Error(1)
}

func (m *MockObjectService) PresignDownload(ctx context.Context, key string, expiresIn int) (*service.PresignedURL, error) {
	args := m.Called(ctx, key, expiresIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PresignedURL), args.Error(1)
}
