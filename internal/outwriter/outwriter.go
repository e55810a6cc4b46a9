// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the commands.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteIngest prints ingestion outcomes using the configured output format.
func (ow *OutWriter) WriteIngest(results []schema.IngestResult, cfg *contract.Config, duration time.Duration) error {
	return WriteIngestResults(results, cfg, duration)
}

// WriteAnalysis prints one analysis and its suggestions using the configured output format.
func (ow *OutWriter) WriteAnalysis(record schema.AnalysisRecord, suggestions []schema.Suggestion, cfg *contract.Config, duration time.Duration) error {
	return WriteAnalysisResult(record, suggestions, cfg, duration)
}

// WriteSuggestions prints suggestions using the configured output format.
func (ow *OutWriter) WriteSuggestions(suggestions []schema.Suggestion, cfg *contract.Config) error {
	return WriteSuggestionResults(suggestions, cfg)
}

// WriteStatus prints processing states using the configured output format.
func (ow *OutWriter) WriteStatus(states []schema.ProcessingState, cfg *contract.Config) error {
	return WriteStatusResults(states, cfg)
}

// WriteFiles prints ingested files using the configured output format.
func (ow *OutWriter) WriteFiles(files []schema.SourceFile, cfg *contract.Config) error {
	return WriteFileResults(files, cfg)
}

// WriteHistory prints analysis records using the configured output format.
func (ow *OutWriter) WriteHistory(records []schema.AnalysisRecord, cfg *contract.Config) error {
	return WriteHistoryResults(records, cfg)
}

// WriteStoreStatus prints the persistence layer status using the configured output format.
func (ow *OutWriter) WriteStoreStatus(status schema.StoreStatus, cfg *contract.Config) error {
	return WriteStoreStatusResult(status, cfg)
}
