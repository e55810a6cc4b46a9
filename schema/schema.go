// Package schema has the records, enums and constants shared across legacylens.
package schema

import "time"

// RawMetrics are the structural measurements of a single source file.
// Every field is always populated; zero is the default for absent constructs.
type RawMetrics struct {
	TotalLines           int `json:"total_lines" yaml:"total_lines"`
	CodeLines            int `json:"code_lines" yaml:"code_lines"`
	CommentLines         int `json:"comment_lines" yaml:"comment_lines"`
	BlankLines           int `json:"blank_lines" yaml:"blank_lines"`
	CyclomaticComplexity int `json:"cyclomatic_complexity" yaml:"cyclomatic_complexity"`
	NestingDepth         int `json:"nesting_depth" yaml:"nesting_depth"`
	FunctionCount        int `json:"function_count" yaml:"function_count"`
	ClassCount           int `json:"class_count" yaml:"class_count"`
	LoopCount            int `json:"loop_count" yaml:"loop_count"`
	ConditionalCount     int `json:"conditional_count" yaml:"conditional_count"`
	SQLJoinCount         int `json:"sql_join_count" yaml:"sql_join_count"`
	DependencyCount      int `json:"dependency_count" yaml:"dependency_count"`
}

// TechnicalDebt is the additive remediation estimate for a file.
type TechnicalDebt struct {
	Points   float64      `json:"points" yaml:"points"`
	Hours    float64      `json:"hours" yaml:"hours"`
	Category DebtCategory `json:"category" yaml:"category"`
}

// Issue is a single line-level finding from a model sub-scan.
type Issue struct {
	Line     int       `json:"line" yaml:"line"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Message  string    `json:"message" yaml:"message"`
	Rule     IssueRule `json:"rule" yaml:"rule"`
}

// AnalysisRecord is one immutable analysis run over a source file.
type AnalysisRecord struct {
	ID                   int64           `json:"id" yaml:"id"`
	FileID               string          `json:"file_id" yaml:"file_id"`
	Technology           Technology      `json:"technology" yaml:"technology"`
	Metrics              RawMetrics      `json:"metrics" yaml:"metrics"`
	MaintainabilityIndex float64         `json:"maintainability_index" yaml:"maintainability_index"`
	RiskScore            float64         `json:"risk_score" yaml:"risk_score"`
	ComplexityLevel      ComplexityLevel `json:"complexity_level" yaml:"complexity_level"`
	RiskLevel            RiskLevel       `json:"risk_level" yaml:"risk_level"`
	TechnicalDebt        TechnicalDebt   `json:"technical_debt" yaml:"technical_debt"`
	QualityScore         float64         `json:"quality_score" yaml:"quality_score"`
	Provenance           Provenance      `json:"provenance" yaml:"provenance"`
	AnalyzerVersion      string          `json:"analyzer_version" yaml:"analyzer_version"`
	Details              map[string]any  `json:"details,omitempty" yaml:"details,omitempty"`
	Issues               []Issue         `json:"issues" yaml:"issues"`
	Duration             time.Duration   `json:"duration_ns" yaml:"duration_ns"`
	CreatedAt            time.Time       `json:"created_at" yaml:"created_at"`
}

// Suggestion is a categorized improvement derived from exactly one analysis.
type Suggestion struct {
	ID          int64          `json:"id" yaml:"id"`
	AnalysisID  int64          `json:"analysis_id" yaml:"analysis_id"`
	Type        SuggestionType `json:"type" yaml:"type"`
	Severity    Severity       `json:"severity" yaml:"severity"`
	Category    string         `json:"category" yaml:"category"`
	Title       string         `json:"title" yaml:"title"`
	Description string         `json:"description" yaml:"description"`
	Fix         string         `json:"fix,omitempty" yaml:"fix,omitempty"`
	StartLine   int            `json:"start_line,omitempty" yaml:"start_line,omitempty"`
	EndLine     int            `json:"end_line,omitempty" yaml:"end_line,omitempty"`
	Impact      float64        `json:"impact" yaml:"impact"`
	Effort      Effort         `json:"effort" yaml:"effort"`
	Confidence  float64        `json:"confidence" yaml:"confidence"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
}

// SourceFile is an ingested legacy file. Content is immutable once stored.
type SourceFile struct {
	ID           string           `json:"id" yaml:"id"`
	Filename     string           `json:"filename" yaml:"filename"`
	Technology   Technology       `json:"technology" yaml:"technology"`
	ContentPath  string           `json:"content_path" yaml:"content_path"`
	Size         int64            `json:"size" yaml:"size"`
	Fingerprint  string           `json:"fingerprint" yaml:"fingerprint"`
	Status       ProcessingStatus `json:"status" yaml:"status"`
	ErrorMessage string           `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" yaml:"updated_at"`
	FailedAt     *time.Time       `json:"failed_at,omitempty" yaml:"failed_at,omitempty"`
}

// ProcessingState is the externally visible state of a file.
type ProcessingState struct {
	FileID           string           `json:"file_id" yaml:"file_id"`
	Filename         string           `json:"filename" yaml:"filename"`
	Status           ProcessingStatus `json:"status" yaml:"status"`
	ErrorMessage     string           `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	LatestAnalysisID int64            `json:"latest_analysis_id" yaml:"latest_analysis_id"`
	UpdatedAt        time.Time        `json:"updated_at" yaml:"updated_at"`
	FailedAt         *time.Time       `json:"failed_at,omitempty" yaml:"failed_at,omitempty"`
}

// IngestResult is returned by ingestion.
type IngestResult struct {
	FileID      string        `json:"file_id" yaml:"file_id"`
	Filename    string        `json:"filename" yaml:"filename"`
	Outcome     IngestOutcome `json:"outcome" yaml:"outcome"`
	Fingerprint string        `json:"fingerprint" yaml:"fingerprint"`
	Technology  Technology    `json:"technology" yaml:"technology"`
}
