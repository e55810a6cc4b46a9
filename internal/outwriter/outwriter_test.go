package outwriter

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/internal/parquet"
	"github.com/huangsam/legacylens/schema"
	pq "github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleRecord() schema.AnalysisRecord {
	return schema.AnalysisRecord{
		ID:                   7,
		FileID:               "file-1",
		Technology:           schema.PerlTech,
		Metrics:              schema.RawMetrics{TotalLines: 50, CodeLines: 50, CyclomaticComplexity: 4, NestingDepth: 1, LoopCount: 1, ConditionalCount: 2},
		MaintainabilityIndex: 71.25,
		RiskScore:            12.5,
		ComplexityLevel:      schema.LowComplexity,
		RiskLevel:            schema.LowRisk,
		TechnicalDebt:        schema.TechnicalDebt{Points: 4, Hours: 2, Category: schema.LowDebt},
		QualityScore:         88,
		Provenance:           schema.HeuristicProvenance,
		AnalyzerVersion:      contract.AnalyzerVersion,
		Issues:               []schema.Issue{{Line: 3, Severity: schema.HighSeverity, Message: "eval of input", Rule: schema.SecurityRule}},
		CreatedAt:            fixedTime,
	}
}

func sampleSuggestions() []schema.Suggestion {
	return []schema.Suggestion{
		{ID: 1, AnalysisID: 7, Type: schema.SecuritySuggestion, Severity: schema.CriticalSeverity, Category: "credentials", Title: "Remove hardcoded credentials", StartLine: 10, EndLine: 10, Impact: 0.9, Effort: schema.LowEffort, Confidence: 0.8, CreatedAt: fixedTime},
		{ID: 2, AnalysisID: 7, Type: schema.ModernizationSuggestion, Severity: schema.LowSeverity, Category: "migration", Title: "Plan Perl modernization", Impact: 0.5, Effort: schema.HighEffort, Confidence: 0.6, CreatedAt: fixedTime},
	}
}

func TestAnalysisPairs(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	pairs := analysisPairs(sampleRecord(), fmtFloat, intFmt)

	lookup := map[string]string{}
	for _, p := range pairs {
		lookup[p[0]] = p[1]
	}
	assert.Equal(t, "7", lookup["analysis_id"])
	assert.Equal(t, "4", lookup["cyclomatic_complexity"])
	assert.Equal(t, "71.2", lookup["maintainability_index"])
	assert.Equal(t, "low", lookup["complexity_level"])
	assert.Equal(t, "1", lookup["issues"])
	assert.Equal(t, fixedTime.Format(contract.DateTimeFormat), lookup["created_at"])
}

func TestWriteAnalysisTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	cfg := &contract.Config{Width: 120, DBBackend: schema.SQLiteBackend}

	var buf bytes.Buffer
	require.NoError(t, writeAnalysisTable(sampleRecord(), sampleSuggestions(), cfg, fmtFloat, intFmt, time.Second, &buf))

	out := buf.String()
	assert.Contains(t, out, "cyclomatic_complexity")
	assert.Contains(t, out, "eval of input")
	assert.Contains(t, out, "Remove hardcoded credentials")
	assert.Contains(t, out, "Showing 2 suggestions")
	assert.Contains(t, out, "Analysis 7 (heuristic)")
}

func TestWriteAnalysisResultJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.json")
	cfg := &contract.Config{Output: schema.JSONOut, OutputFile: path, Precision: 1}
	require.NoError(t, WriteAnalysisResult(sampleRecord(), nil, cfg, time.Second))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "analysis")
	assert.Equal(t, []any{}, decoded["suggestions"])
}

func TestWriteSuggestionResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.csv")
	cfg := &contract.Config{Output: schema.CSVOut, OutputFile: path, Precision: 2}
	require.NoError(t, WriteSuggestionResults(sampleSuggestions(), cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "rank,analysis_id,type,severity"))
	assert.Contains(t, lines[1], "credentials")
	assert.Contains(t, lines[1], "0.90")
}

func TestWriteSuggestionResultsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suggestions.parquet")
	cfg := &contract.Config{Output: schema.ParquetOut, OutputFile: path, Precision: 1}
	require.NoError(t, WriteSuggestionResults(sampleSuggestions(), cfg))

	rows, err := pq.ReadFile[parquet.SuggestionRow](path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "credentials", rows[0].Category)
}

func TestWriteHistoryTable(t *testing.T) {
	fmtFloat, intFmt := createFormatters(1)
	older := sampleRecord()
	older.ID = 3
	cfg := &contract.Config{Width: 120}

	var buf bytes.Buffer
	require.NoError(t, writeHistoryTable([]schema.AnalysisRecord{sampleRecord(), older}, cfg, fmtFloat, intFmt, &buf))
	assert.Contains(t, buf.String(), "Showing 2 analyses")
}

func TestWriteIngestTable(t *testing.T) {
	results := []schema.IngestResult{
		{FileID: "a", Filename: "job.pl", Outcome: schema.UploadedOutcome, Technology: schema.PerlTech, Fingerprint: strings.Repeat("ab", 32)},
		{FileID: "a", Filename: "copy.pl", Outcome: schema.DuplicateOutcome, Technology: schema.PerlTech, Fingerprint: strings.Repeat("ab", 32)},
	}
	var buf bytes.Buffer
	require.NoError(t, writeIngestTable(results, &contract.Config{Width: 120}, time.Second, &buf))

	out := buf.String()
	assert.Contains(t, out, "abababababab")
	assert.NotContains(t, out, strings.Repeat("ab", 32))
	assert.Contains(t, out, "Ingested 2 files (1 new, 1 duplicate)")
}

func TestWriteFileAndStatusTables(t *testing.T) {
	failedAt := fixedTime
	files := []schema.SourceFile{
		{ID: "a", Filename: "job.pl", Technology: schema.PerlTech, Status: schema.StatusAnalyzed, Size: 120, UpdatedAt: fixedTime},
		{ID: "b", Filename: "flow.process", Technology: schema.TibcoTech, Status: schema.StatusFailed, ErrorMessage: "blob missing", UpdatedAt: fixedTime, FailedAt: &failedAt},
	}
	cfg := &contract.Config{Width: 160}

	var buf bytes.Buffer
	require.NoError(t, writeFileTable(files, cfg, &buf))
	assert.Contains(t, buf.String(), "flow.process")
	assert.Contains(t, buf.String(), "Showing 2 files")

	states := []schema.ProcessingState{
		{FileID: "a", Filename: "job.pl", Status: schema.StatusAnalyzed, LatestAnalysisID: 7, UpdatedAt: fixedTime},
		{FileID: "b", Filename: "flow.process", Status: schema.StatusFailed, ErrorMessage: "blob missing", UpdatedAt: fixedTime, FailedAt: &failedAt},
	}
	buf.Reset()
	require.NoError(t, writeStatusTable(states, cfg, &buf))
	assert.Contains(t, buf.String(), "blob missing")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "FAILED", statusLabel(schema.StatusFailed, false))
	assert.Contains(t, statusLabel(schema.StatusFailed, true), "FAILED")
}

func TestStoreStatusRows(t *testing.T) {
	status := schema.StoreStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalFiles:    3,
		FilesByStatus: map[schema.ProcessingStatus]int64{schema.StatusAnalyzed: 2, schema.StatusFailed: 1},
		TotalAnalyses: 4,
		TableSizes:    map[string]int64{"legacylens_suggestions": 9, "legacylens_analyses": 4},
	}
	rows := storeStatusRows(status)

	assert.Equal(t, []string{"store", "backend", "sqlite"}, rows[0])
	assert.Contains(t, rows, []string{"files", "ANALYZED", "2"})
	assert.Contains(t, rows, []string{"files", "UPLOADED", "0"})
	n := len(rows)
	assert.Equal(t, []string{"tables", "legacylens_analyses", "4"}, rows[n-2])
	assert.Equal(t, []string{"tables", "legacylens_suggestions", "9"}, rows[n-1])
}

func TestLineLabelAndTruncate(t *testing.T) {
	assert.Equal(t, "-", lineLabel(0, 0))
	assert.Equal(t, "10", lineLabel(10, 10))
	assert.Equal(t, "3-8", lineLabel(3, 8))

	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abcdefg...", truncateText("abcdefghijklmnop", 10))
}
