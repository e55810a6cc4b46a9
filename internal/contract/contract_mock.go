package contract

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockModelClient is a mock implementation of ModelClient for testing.
type MockModelClient struct {
	mock.Mock
}

var _ ModelClient = &MockModelClient{} // Compile-time check

// Generate implements the ModelClient interface.
func (m *MockModelClient) Generate(ctx context.Context, prompt, content string) (string, error) {
	args := m.Called(ctx, prompt, content)
	return args.String(0), args.Error(1)
}

// IsAvailable implements the ModelClient interface.
func (m *MockModelClient) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// Name implements the ModelClient interface.
func (m *MockModelClient) Name() string {
	args := m.Called()
	return args.String(0)
}
