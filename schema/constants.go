package schema

// Custom string types for type safety.
type (
	// Technology represents the legacy technology a source file is written in.
	Technology string

	// ProcessingStatus represents where a source file is in its processing lifecycle.
	ProcessingStatus string

	// ComplexityLevel is the banding of cyclomatic complexity.
	ComplexityLevel string

	// RiskLevel is the banding of the risk score. It is only used for display.
	RiskLevel string

	// DebtCategory is the banding of technical debt points.
	DebtCategory string

	// SuggestionType represents the kind of improvement a suggestion proposes.
	SuggestionType string

	// Severity represents how urgent a suggestion or issue is.
	Severity string

	// Effort represents the estimated remediation effort for a suggestion.
	Effort string

	// Provenance tags whether metrics came from the model or from heuristics.
	Provenance string

	// IngestOutcome represents the result of ingesting a file.
	IngestOutcome string

	// IssueRule names the sub-scan that produced an issue.
	IssueRule string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for persistence.
	DatabaseBackend string

	// ModelProvider represents the generative model backend.
	ModelProvider string

	// FingerprintAlgo represents the content hash used for deduplication.
	FingerprintAlgo string
)

// All technologies supported.
const (
	PerlTech    Technology = "perl"
	TibcoTech   Technology = "tibco"
	PentahoTech Technology = "pentaho"
	OtherTech   Technology = "other"
)

// All processing states. StatusDuplicate is an ingest outcome and never stored on a file.
const (
	StatusUploaded   ProcessingStatus = "UPLOADED"
	StatusProcessing ProcessingStatus = "PROCESSING"
	StatusAnalyzed   ProcessingStatus = "ANALYZED"
	StatusFailed     ProcessingStatus = "FAILED"
	StatusDuplicate  ProcessingStatus = "DUPLICATE"
)

// Complexity levels.
const (
	LowComplexity      ComplexityLevel = "low"
	MediumComplexity   ComplexityLevel = "medium"
	HighComplexity     ComplexityLevel = "high"
	CriticalComplexity ComplexityLevel = "critical"
)

// Risk levels.
const (
	LowRisk      RiskLevel = "low"
	MediumRisk   RiskLevel = "medium"
	HighRisk     RiskLevel = "high"
	CriticalRisk RiskLevel = "critical"
)

// Debt categories.
const (
	LowDebt      DebtCategory = "low"
	MediumDebt   DebtCategory = "medium"
	HighDebt     DebtCategory = "high"
	CriticalDebt DebtCategory = "critical"
)

// Suggestion types.
const (
	RefactorSuggestion      SuggestionType = "refactor"
	SecuritySuggestion      SuggestionType = "security"
	PerformanceSuggestion   SuggestionType = "performance"
	ModernizationSuggestion SuggestionType = "modernization"
	StyleSuggestion         SuggestionType = "style"
)

// Severities.
const (
	LowSeverity      Severity = "low"
	MediumSeverity   Severity = "medium"
	HighSeverity     Severity = "high"
	CriticalSeverity Severity = "critical"
)

// Efforts.
const (
	LowEffort    Effort = "low"
	MediumEffort Effort = "medium"
	HighEffort   Effort = "high"
)

// Provenance values.
const (
	AIProvenance        Provenance = "ai"
	HeuristicProvenance Provenance = "heuristic"
)

// Ingest outcomes.
const (
	UploadedOutcome  IngestOutcome = "uploaded"
	DuplicateOutcome IngestOutcome = "duplicate"
)

// Issue rules.
const (
	SecurityRule    IssueRule = "security"
	RefactoringRule IssueRule = "refactoring"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// All model providers supported.
const (
	OllamaProvider ModelProvider = "ollama"
	OpenAIProvider ModelProvider = "openai"
	NoneProvider   ModelProvider = "none"
)

// All fingerprint algorithms supported.
const (
	SHA256Algo FingerprintAlgo = "sha256" // default
	BLAKE3Algo FingerprintAlgo = "blake3"
)

// AllTechnologies lists the technologies in a stable order.
var AllTechnologies = []Technology{PerlTech, TibcoTech, PentahoTech, OtherTech}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	JSONOut:    {},
	CSVOut:     {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidBackends lists all valid database backends.
var ValidBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidProviders lists all valid model providers.
var ValidProviders = map[ModelProvider]struct{}{
	OllamaProvider: {},
	OpenAIProvider: {},
	NoneProvider:   {},
}

// Weight orders severities for sorting. Higher is more urgent.
func (s Severity) Weight() int {
	switch s {
	case CriticalSeverity:
		return 4
	case HighSeverity:
		return 3
	case MediumSeverity:
		return 2
	case LowSeverity:
		return 1
	default:
		return 0
	}
}

// IsTerminal reports whether the status only changes on re-submission.
func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusAnalyzed || s == StatusFailed || s == StatusDuplicate
}
