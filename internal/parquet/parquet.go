// Package parquet provides data structures and functions for exporting legacylens
// analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/legacylens/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRow is one analysis record flattened for columnar storage.
// This struct maps to the legacylens_analyses database table.
type AnalysisRow struct {
	// ID is the unique identifier of the analysis
	ID int64 `parquet:"id,snappy"`

	// FileID references the analyzed source file
	FileID string `parquet:"file_id,snappy,dict"`

	// Technology is the legacy technology of the file
	Technology string `parquet:"technology,snappy,dict"`

	TotalLines           int32 `parquet:"total_lines,snappy"`
	CodeLines            int32 `parquet:"code_lines,snappy"`
	CommentLines         int32 `parquet:"comment_lines,snappy"`
	BlankLines           int32 `parquet:"blank_lines,snappy"`
	CyclomaticComplexity int32 `parquet:"cyclomatic_complexity,snappy"`
	NestingDepth         int32 `parquet:"nesting_depth,snappy"`
	FunctionCount        int32 `parquet:"function_count,snappy"`
	ClassCount           int32 `parquet:"class_count,snappy"`
	LoopCount            int32 `parquet:"loop_count,snappy"`
	ConditionalCount     int32 `parquet:"conditional_count,snappy"`
	SQLJoinCount         int32 `parquet:"sql_join_count,snappy"`
	DependencyCount      int32 `parquet:"dependency_count,snappy"`

	MaintainabilityIndex float64 `parquet:"maintainability_index,snappy"`
	RiskScore            float64 `parquet:"risk_score,snappy"`
	ComplexityLevel      string  `parquet:"complexity_level,snappy,dict"`
	RiskLevel            string  `parquet:"risk_level,snappy,dict"`
	DebtPoints           float64 `parquet:"debt_points,snappy"`
	DebtHours            float64 `parquet:"debt_hours,snappy"`
	DebtCategory         string  `parquet:"debt_category,snappy,dict"`
	QualityScore         float64 `parquet:"quality_score,snappy"`

	// Provenance is "ai" or "heuristic"
	Provenance      string `parquet:"provenance,snappy,dict"`
	AnalyzerVersion string `parquet:"analyzer_version,snappy,dict"`

	// IssueCount is the number of sub-scan findings
	IssueCount int32 `parquet:"issue_count,snappy"`

	// Details contains the JSON-encoded provenance details (nullable)
	Details *string `parquet:"details,optional,snappy"`

	// DurationMs is how long the analysis took
	DurationMs int64 `parquet:"duration_ms,snappy"`

	// CreatedAt is stored as TIMESTAMP with nanosecond precision
	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// SuggestionRow is one suggestion flattened for columnar storage.
// This struct maps to the legacylens_suggestions database table.
type SuggestionRow struct {
	ID          int64   `parquet:"id,snappy"`
	AnalysisID  int64   `parquet:"analysis_id,snappy"`
	Type        string  `parquet:"type,snappy,dict"`
	Severity    string  `parquet:"severity,snappy,dict"`
	Category    string  `parquet:"category,snappy,dict"`
	Title       string  `parquet:"title,snappy"`
	Description string  `parquet:"description,snappy"`
	Fix         *string `parquet:"fix,optional,snappy"`
	StartLine   int32   `parquet:"start_line,snappy"`
	EndLine     int32   `parquet:"end_line,snappy"`
	Impact      float64 `parquet:"impact,snappy"`
	Effort      string  `parquet:"effort,snappy,dict"`
	Confidence  float64 `parquet:"confidence,snappy"`

	CreatedAt time.Time `parquet:"created_at,snappy"`
}

// WriteAnalysesParquet writes a slice of AnalysisRow structs to a Parquet file.
func WriteAnalysesParquet(data []AnalysisRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSuggestionsParquet writes a slice of SuggestionRow structs to a Parquet file.
func WriteSuggestionsParquet(data []SuggestionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertAnalysisRecords converts schema.AnalysisRecord to AnalysisRow for Parquet export.
func ConvertAnalysisRecords(records []schema.AnalysisRecord) []AnalysisRow {
	result := make([]AnalysisRow, len(records))
	for i, r := range records {
		m := r.Metrics
		result[i] = AnalysisRow{
			ID:                   r.ID,
			FileID:               r.FileID,
			Technology:           string(r.Technology),
			TotalLines:           int32(m.TotalLines),
			CodeLines:            int32(m.CodeLines),
			CommentLines:         int32(m.CommentLines),
			BlankLines:           int32(m.BlankLines),
			CyclomaticComplexity: int32(m.CyclomaticComplexity),
			NestingDepth:         int32(m.NestingDepth),
			FunctionCount:        int32(m.FunctionCount),
			ClassCount:           int32(m.ClassCount),
			LoopCount:            int32(m.LoopCount),
			ConditionalCount:     int32(m.ConditionalCount),
			SQLJoinCount:         int32(m.SQLJoinCount),
			DependencyCount:      int32(m.DependencyCount),
			MaintainabilityIndex: r.MaintainabilityIndex,
			RiskScore:            r.RiskScore,
			ComplexityLevel:      string(r.ComplexityLevel),
			RiskLevel:            string(r.RiskLevel),
			DebtPoints:           r.TechnicalDebt.Points,
			DebtHours:            r.TechnicalDebt.Hours,
			DebtCategory:         string(r.TechnicalDebt.Category),
			QualityScore:         r.QualityScore,
			Provenance:           string(r.Provenance),
			AnalyzerVersion:      r.AnalyzerVersion,
			IssueCount:           int32(len(r.Issues)),
			Details:              detailsJSON(r.Details),
			DurationMs:           r.Duration.Milliseconds(),
			CreatedAt:            r.CreatedAt,
		}
	}
	return result
}

// ConvertSuggestions converts schema.Suggestion to SuggestionRow for Parquet export.
func ConvertSuggestions(suggestions []schema.Suggestion) []SuggestionRow {
	result := make([]SuggestionRow, len(suggestions))
	for i, s := range suggestions {
		var fix *string
		if s.Fix != "" {
			fix = &s.Fix
		}
		result[i] = SuggestionRow{
			ID:          s.ID,
			AnalysisID:  s.AnalysisID,
			Type:        string(s.Type),
			Severity:    string(s.Severity),
			Category:    s.Category,
			Title:       s.Title,
			Description: s.Description,
			Fix:         fix,
			StartLine:   int32(s.StartLine),
			EndLine:     int32(s.EndLine),
			Impact:      s.Impact,
			Effort:      string(s.Effort),
			Confidence:  s.Confidence,
			CreatedAt:   s.CreatedAt,
		}
	}
	return result
}

func detailsJSON(details map[string]any) *string {
	if len(details) == 0 {
		return nil
	}
	b, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}
