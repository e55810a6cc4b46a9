// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/huangsam/legacylens/schema"
)

// ModelClient is the generative model collaborator used by the AI path.
// Implementations must honor ctx deadlines so a slow model never pins a worker.
type ModelClient interface {
	// Generate sends the prompt together with the file content and returns the raw text answer.
	Generate(ctx context.Context, prompt, content string) (string, error)

	// IsAvailable is a cheap liveness probe.
	IsAvailable(ctx context.Context) bool

	// Name identifies the provider and model for provenance details.
	Name() string
}

// ContentStore is a content-addressable blob store for raw file bytes.
type ContentStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// StoreManager hands out the persistence stores.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetFileStore() FileStore
	GetAnalysisStore() AnalysisStore
}

// FileStore persists SourceFile rows. Fingerprints are unique; a second insert
// with the same fingerprint returns an error wrapping ErrDuplicate.
type FileStore interface {
	CreateFile(ctx context.Context, file schema.SourceFile) error
	GetFile(ctx context.Context, id string) (schema.SourceFile, error)
	GetFileByFingerprint(ctx context.Context, fingerprint string) (schema.SourceFile, error)

	// UpdateStatus moves a file from one status to another in a single
	// conditional write. It returns ErrInvalidTransition when the file is no
	// longer in the from status.
	UpdateStatus(ctx context.Context, id string, from, to schema.ProcessingStatus, errMsg string, at time.Time) error

	ListFiles(ctx context.Context, filter schema.FileListFilter) ([]schema.SourceFile, error)
	ListStale(ctx context.Context, status schema.ProcessingStatus, olderThan time.Time) ([]schema.SourceFile, error)
	Close() error
}

// AnalysisStore persists append-only analysis records and their suggestions.
type AnalysisStore interface {
	// SaveAnalysis stores the record and its suggestions in one transaction and
	// returns the new analysis ID.
	SaveAnalysis(ctx context.Context, record schema.AnalysisRecord, suggestions []schema.Suggestion) (int64, error)

	GetAnalysis(ctx context.Context, id int64) (schema.AnalysisRecord, error)
	LatestForFile(ctx context.Context, fileID string) (schema.AnalysisRecord, error)
	ListForFile(ctx context.Context, fileID string) ([]schema.AnalysisRecord, error)
	GetSuggestions(ctx context.Context, analysisID int64) ([]schema.Suggestion, error)

	// AllAnalyses and AllSuggestions back exports.
	AllAnalyses(ctx context.Context) ([]schema.AnalysisRecord, error)
	AllSuggestions(ctx context.Context) ([]schema.Suggestion, error)

	GetStatus(ctx context.Context) (schema.StoreStatus, error)
	Close() error
}
