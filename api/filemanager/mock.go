package filemanager

import (
	"context"

	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockFileManager implements interfaces.FileManager for testing.
// The behavior is determined by how the mock is configured in tests.
type MockFileManager struct {
	mock.Mock
}

func (m *MockFileManager) Upload(ctx context.Context, req interfaces.UploadRequest) (*interfaces.UploadResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.UploadResult), args.Error(1)
}

func (m *MockFileManager) RetrieveFile(ctx context.Context, cid interfaces.CID, mode interfaces.AuthMode) (*interfaces.RetrievedFile, error) {
	args := m.Called(ctx, cid, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.RetrievedFile), args.Error(1)
}

func (m *MockFileManager) IssueAccessibleVC(ctx context.Context, req interfaces.AccessibleVCRequest) (*interfaces.AccessibleVC, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.AccessibleVC), args.Error(1)
}
