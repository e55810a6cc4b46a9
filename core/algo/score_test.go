package algo

import (
	"math"
	"testing"

	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
)

// TestMaintainabilityIndex tests the maintainability index formula and clamping.
func TestMaintainabilityIndex(t *testing.T) {
	tests := []struct {
		name     string
		metrics  schema.RawMetrics
		expected float64
		delta    float64
	}{
		{
			name:     "typical file",
			metrics:  schema.RawMetrics{TotalLines: 100, CodeLines: 80, FunctionCount: 4, CyclomaticComplexity: 5},
			expected: 171 - 5.2*math.Log(20) - 0.23*5 - 16.2*math.Log(100),
			delta:    0.001,
		},
		{
			name:     "empty metrics clamp to 100",
			metrics:  schema.RawMetrics{},
			expected: 100,
			delta:    0.001,
		},
		{
			name:     "huge file clamps to 0",
			metrics:  schema.RawMetrics{TotalLines: 1_000_000, CodeLines: 1_000_000, CyclomaticComplexity: 5000},
			expected: 0,
			delta:    0.001,
		},
		{
			name:     "no functions uses whole file as one function",
			metrics:  schema.RawMetrics{TotalLines: 10, CodeLines: 10, CyclomaticComplexity: 1},
			expected: 171 - 5.2*math.Log(10) - 0.23 - 16.2*math.Log(10),
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, clamp(tt.expected, 0, 100), MaintainabilityIndex(tt.metrics), tt.delta)
		})
	}
}

// TestComplexityLevelFor tests the cyclomatic complexity banding edges.
func TestComplexityLevelFor(t *testing.T) {
	tests := []struct {
		cc       int
		expected schema.ComplexityLevel
	}{
		{1, schema.LowComplexity},
		{10, schema.LowComplexity},
		{11, schema.MediumComplexity},
		{20, schema.MediumComplexity},
		{21, schema.HighComplexity},
		{50, schema.HighComplexity},
		{51, schema.CriticalComplexity},
		{1000, schema.CriticalComplexity},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ComplexityLevelFor(tt.cc), "cc=%d", tt.cc)
	}
}

// TestComplexityLevelMonotonic checks that the banding never decreases as cc grows.
func TestComplexityLevelMonotonic(t *testing.T) {
	rank := map[schema.ComplexityLevel]int{
		schema.LowComplexity:      0,
		schema.MediumComplexity:   1,
		schema.HighComplexity:     2,
		schema.CriticalComplexity: 3,
	}
	prev := rank[ComplexityLevelFor(1)]
	for cc := 2; cc <= 500; cc++ {
		cur := rank[ComplexityLevelFor(cc)]
		assert.GreaterOrEqual(t, cur, prev, "cc=%d", cc)
		prev = cur
	}
}

func TestRiskLevelFor(t *testing.T) {
	assert.Equal(t, schema.LowRisk, RiskLevelFor(0))
	assert.Equal(t, schema.LowRisk, RiskLevelFor(24.99))
	assert.Equal(t, schema.MediumRisk, RiskLevelFor(25))
	assert.Equal(t, schema.HighRisk, RiskLevelFor(50))
	assert.Equal(t, schema.CriticalRisk, RiskLevelFor(75))
	assert.Equal(t, schema.CriticalRisk, RiskLevelFor(100))
}

// TestRiskScore tests the weighted risk formula.
func TestRiskScore(t *testing.T) {
	tests := []struct {
		name     string
		metrics  schema.RawMetrics
		expected float64
	}{
		{
			name:     "zero lines defaults sparsity to 10",
			metrics:  schema.RawMetrics{},
			expected: 10,
		},
		{
			name:     "zero lines with complexity",
			metrics:  schema.RawMetrics{CyclomaticComplexity: 5, NestingDepth: 1},
			expected: 0.4*5 + 2 + 10,
		},
		{
			name:     "typical file",
			metrics:  schema.RawMetrics{TotalLines: 50, CommentLines: 5, CyclomaticComplexity: 4, NestingDepth: 2},
			expected: 0.4*4 + 2*2 + 5*math.Log(50) + 10*(1-5.0/50),
		},
		{
			name:     "clamped at 100",
			metrics:  schema.RawMetrics{TotalLines: 10000, CyclomaticComplexity: 300, NestingDepth: 20},
			expected: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, RiskScore(tt.metrics), 0.001)
		})
	}
}

// TestTechnicalDebt tests the additive point system.
func TestTechnicalDebt(t *testing.T) {
	tests := []struct {
		name     string
		metrics  schema.RawMetrics
		points   float64
		hours    float64
		category schema.DebtCategory
	}{
		{
			name:     "clean file",
			metrics:  schema.RawMetrics{TotalLines: 40, FunctionCount: 2, CyclomaticComplexity: 3, NestingDepth: 2},
			points:   0,
			hours:    0,
			category: schema.LowDebt,
		},
		{
			name:     "monolith penalty",
			metrics:  schema.RawMetrics{TotalLines: 60, CyclomaticComplexity: 1},
			points:   5,
			hours:    2,
			category: schema.LowDebt,
		},
		{
			name:     "every threshold exceeded",
			metrics:  schema.RawMetrics{TotalLines: 750, FunctionCount: 3, CyclomaticComplexity: 25, NestingDepth: 6},
			points:   30 + 2 + 6,
			hours:    7.5 + 0.5 + 2,
			category: schema.CriticalDebt,
		},
		{
			name:     "partial hundred over size threshold",
			metrics:  schema.RawMetrics{TotalLines: 550, FunctionCount: 5, CyclomaticComplexity: 5},
			points:   0,
			hours:    0,
			category: schema.LowDebt,
		},
		{
			name:     "full hundred over size threshold",
			metrics:  schema.RawMetrics{TotalLines: 600, FunctionCount: 5, CyclomaticComplexity: 5},
			points:   1,
			hours:    0.25,
			category: schema.LowDebt,
		},
		{
			name:     "complexity only",
			metrics:  schema.RawMetrics{TotalLines: 100, FunctionCount: 5, CyclomaticComplexity: 15},
			points:   10,
			hours:    2.5,
			category: schema.MediumDebt,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debt := TechnicalDebt(tt.metrics)
			assert.InDelta(t, tt.points, debt.Points, 0.001)
			assert.InDelta(t, tt.hours, debt.Hours, 0.001)
			assert.Equal(t, tt.category, debt.Category)
		})
	}
}

func TestDebtCategoryFor(t *testing.T) {
	assert.Equal(t, schema.LowDebt, DebtCategoryFor(5))
	assert.Equal(t, schema.MediumDebt, DebtCategoryFor(5.5))
	assert.Equal(t, schema.MediumDebt, DebtCategoryFor(15))
	assert.Equal(t, schema.HighDebt, DebtCategoryFor(30))
	assert.Equal(t, schema.CriticalDebt, DebtCategoryFor(31))
}

// TestQualityScore tests the weighted blend on a degenerate and a typical input.
func TestQualityScore(t *testing.T) {
	// MI=100, inverted complexity=100, documentation=0, duplication=100
	assert.InDelta(t, 65.0, QualityScore(schema.RawMetrics{}), 0.001)

	m := schema.RawMetrics{TotalLines: 100, CodeLines: 70, CommentLines: 20, FunctionCount: 5, CyclomaticComplexity: 10}
	score := QualityScore(m)
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	expected := 0.3*MaintainabilityIndex(m) + 0.25*80 + 0.15*40 + 0.1*75
	assert.InDelta(t, expected, score, 0.001)
}
