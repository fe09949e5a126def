package authservice

import (
	"context"

	"github.com/ruteri/vc-storage-client/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockExchanger implements interfaces.PresentationExchanger for testing.
type MockExchanger struct {
	mock.Mock
}

func (m *MockExchanger) ExchangePresentation(ctx context.Context, holder interfaces.DID, vc interfaces.VCToken) (interfaces.AuthorizationToken, error) {
	args := m.Called(ctx, holder, vc)
	return args.Get(0).(interfaces.AuthorizationToken), args.Error(1)
}
