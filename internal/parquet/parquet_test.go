package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/legacylens/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []schema.AnalysisRecord {
	now := time.Now()
	return []schema.AnalysisRecord{
		{
			ID:                   1,
			FileID:               "f-1",
			Technology:           schema.PerlTech,
			Metrics:              schema.RawMetrics{TotalLines: 50, CodeLines: 40, CyclomaticComplexity: 4, NestingDepth: 1},
			MaintainabilityIndex: 71.2,
			RiskScore:            18.5,
			ComplexityLevel:      schema.LowComplexity,
			RiskLevel:            schema.LowRisk,
			TechnicalDebt:        schema.TechnicalDebt{Points: 4, Hours: 2, Category: schema.LowDebt},
			QualityScore:         88,
			Provenance:           schema.HeuristicProvenance,
			AnalyzerVersion:      "legacylens-1",
			Details:              map[string]any{"source": "heuristic"},
			Issues:               []schema.Issue{},
			Duration:             1500 * time.Millisecond,
			CreatedAt:            now,
		},
		{
			ID:              2,
			FileID:          "f-2",
			Technology:      schema.TibcoTech,
			Metrics:         schema.RawMetrics{TotalLines: 300, CyclomaticComplexity: 25},
			ComplexityLevel: schema.CriticalComplexity,
			Provenance:      schema.AIProvenance,
			Issues:          []schema.Issue{{Line: 3, Severity: schema.HighSeverity, Message: "eval", Rule: schema.SecurityRule}},
			CreatedAt:       now.Add(-time.Hour),
		},
	}
}

func TestAnalysisRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(AnalysisRow))
	require.NotNil(t, s)

	for _, colName := range []string{
		"id", "file_id", "technology", "total_lines", "cyclomatic_complexity", "nesting_depth",
		"maintainability_index", "risk_score", "complexity_level", "debt_hours", "quality_score",
		"provenance", "issue_count", "details", "duration_ms", "created_at",
	} {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col, "Column %s should not be nil", colName)
	}
}

func TestSuggestionRowStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(SuggestionRow))
	require.NotNil(t, s)

	for _, colName := range []string{
		"id", "analysis_id", "type", "severity", "category", "title", "description",
		"fix", "start_line", "end_line", "impact", "effort", "confidence", "created_at",
	} {
		_, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteAnalysesParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "analyses.parquet")
	data := ConvertAnalysisRecords(sampleRecords())

	require.NoError(t, WriteAnalysesParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[AnalysisRow](file)
	defer reader.Close()

	readData := make([]AnalysisRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, int64(1), readData[0].ID)
	assert.Equal(t, "perl", readData[0].Technology)
	assert.Equal(t, int32(4), readData[0].CyclomaticComplexity)
	assert.Equal(t, int64(1500), readData[0].DurationMs)
	require.NotNil(t, readData[0].Details)
	assert.JSONEq(t, `{"source":"heuristic"}`, *readData[0].Details)
	assert.WithinDuration(t, data[0].CreatedAt, readData[0].CreatedAt, time.Nanosecond)

	assert.Equal(t, int32(1), readData[1].IssueCount)
	assert.Nil(t, readData[1].Details)
}

func TestWriteSuggestionsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "suggestions.parquet")
	data := ConvertSuggestions([]schema.Suggestion{
		{ID: 1, AnalysisID: 1, Type: schema.SecuritySuggestion, Severity: schema.CriticalSeverity, Title: "Code injection", Fix: "remove eval", StartLine: 3, EndLine: 3, Impact: 1.0, Effort: schema.LowEffort, Confidence: 0.95},
		{ID: 2, AnalysisID: 1, Type: schema.ModernizationSuggestion, Severity: schema.LowSeverity, Title: "Modernize", Impact: 0.5, Effort: schema.HighEffort, Confidence: 0.8},
	})

	require.NoError(t, WriteSuggestionsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[SuggestionRow](file)
	defer reader.Close()

	readData := make([]SuggestionRow, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)
	require.NotNil(t, readData[0].Fix)
	assert.Equal(t, "remove eval", *readData[0].Fix)
	assert.Nil(t, readData[1].Fix)
	assert.Equal(t, "critical", readData[0].Severity)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteAnalysesParquet([]AnalysisRow{}, filepath.Join(dir, "a.parquet")))
	require.NoError(t, WriteSuggestionsParquet([]SuggestionRow{}, filepath.Join(dir, "s.parquet")))
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteAnalysesParquet(nil, "/nonexistent/directory/a.parquet")
	assert.Error(t, err)
	err = WriteSuggestionsParquet(nil, "/nonexistent/directory/s.parquet")
	assert.Error(t, err)
}
