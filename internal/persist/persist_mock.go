package persist

import (
	"context"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetFileStore implements the StoreManager interface.
func (m *MockStoreManager) GetFileStore() contract.FileStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.FileStore)
	return store
}

// GetAnalysisStore implements the StoreManager interface.
func (m *MockStoreManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockFileStore is a mock implementation of FileStore for testing.
type MockFileStore struct {
	mock.Mock
}

var _ contract.FileStore = &MockFileStore{} // Compile-time check

// CreateFile implements the FileStore interface.
func (m *MockFileStore) CreateFile(ctx context.Context, file schema.SourceFile) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

// GetFile implements the FileStore interface.
func (m *MockFileStore) GetFile(ctx context.Context, id string) (schema.SourceFile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.SourceFile), args.Error(1)
}

// GetFileByFingerprint implements the FileStore interface.
func (m *MockFileStore) GetFileByFingerprint(ctx context.Context, fingerprint string) (schema.SourceFile, error) {
	args := m.Called(ctx, fingerprint)
	return args.Get(0).(schema.SourceFile), args.Error(1)
}

// UpdateStatus implements the FileStore interface.
func (m *MockFileStore) UpdateStatus(ctx context.Context, id string, from, to schema.ProcessingStatus, errMsg string, at time.Time) error {
	args := m.Called(ctx, id, from, to, errMsg, at)
	return args.Error(0)
}

// ListFiles implements the FileStore interface.
func (m *MockFileStore) ListFiles(ctx context.Context, filter schema.FileListFilter) ([]schema.SourceFile, error) {
	args := m.Called(ctx, filter)
	files, _ := args.Get(0).([]schema.SourceFile)
	return files, args.Error(1)
}

// ListStale implements the FileStore interface.
func (m *MockFileStore) ListStale(ctx context.Context, status schema.ProcessingStatus, olderThan time.Time) ([]schema.SourceFile, error) {
	args := m.Called(ctx, status, olderThan)
	files, _ := args.Get(0).([]schema.SourceFile)
	return files, args.Error(1)
}

// Close implements the FileStore interface.
func (m *MockFileStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// SaveAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) SaveAnalysis(ctx context.Context, record schema.AnalysisRecord, suggestions []schema.Suggestion) (int64, error) {
	args := m.Called(ctx, record, suggestions)
	return args.Get(0).(int64), args.Error(1)
}

// GetAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(schema.AnalysisRecord), args.Error(1)
}

// LatestForFile implements the AnalysisStore interface.
func (m *MockAnalysisStore) LatestForFile(ctx context.Context, fileID string) (schema.AnalysisRecord, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).(schema.AnalysisRecord), args.Error(1)
}

// ListForFile implements the AnalysisStore interface.
func (m *MockAnalysisStore) ListForFile(ctx context.Context, fileID string) ([]schema.AnalysisRecord, error) {
	args := m.Called(ctx, fileID)
	records, _ := args.Get(0).([]schema.AnalysisRecord)
	return records, args.Error(1)
}

// GetSuggestions implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetSuggestions(ctx context.Context, analysisID int64) ([]schema.Suggestion, error) {
	args := m.Called(ctx, analysisID)
	suggestions, _ := args.Get(0).([]schema.Suggestion)
	return suggestions, args.Error(1)
}

// AllAnalyses implements the AnalysisStore interface.
func (m *MockAnalysisStore) AllAnalyses(ctx context.Context) ([]schema.AnalysisRecord, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]schema.AnalysisRecord)
	return records, args.Error(1)
}

// AllSuggestions implements the AnalysisStore interface.
func (m *MockAnalysisStore) AllSuggestions(ctx context.Context) ([]schema.Suggestion, error) {
	args := m.Called(ctx)
	suggestions, _ := args.Get(0).([]schema.Suggestion)
	return suggestions, args.Error(1)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.StoreStatus), args.Error(1)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
