// Package algo has the pure scoring formulas that turn raw metrics into scores.
package algo

import (
	"math"

	"github.com/huangsam/legacylens/schema"
)

// Thresholds used by the technical debt point system.
const (
	debtComplexityThreshold = 10
	debtSizeThreshold       = 500
	debtNestingThreshold    = 4
	debtMonolithThreshold   = 50
)

// Quality score weights. Test coverage is not measured and always contributes zero.
const (
	qualityMaintainabilityWeight = 0.30
	qualityComplexityWeight      = 0.25
	qualityCoverageWeight        = 0.20
	qualityDocumentationWeight   = 0.15
	qualityDuplicationWeight     = 0.10
)

// clamp bounds v to [lo, hi] and maps NaN to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

// floorOne keeps logarithm inputs away from zero.
func floorOne(v float64) float64 {
	return math.Max(v, 1)
}

// MaintainabilityIndex computes 171 - 5.2*ln(avg) - 0.23*cc - 16.2*ln(total),
// where avg is code lines per function. The result is clamped to [0, 100].
func MaintainabilityIndex(m schema.RawMetrics) float64 {
	functions := max(m.FunctionCount, 1)
	avgLinesPerFunction := float64(m.CodeLines) / float64(functions)
	mi := 171 -
		5.2*math.Log(floorOne(avgLinesPerFunction)) -
		0.23*float64(m.CyclomaticComplexity) -
		16.2*math.Log(floorOne(float64(m.TotalLines)))
	return clamp(mi, 0, 100)
}

// ComplexityLevelFor bands cyclomatic complexity. It is monotonic in cc.
func ComplexityLevelFor(cc int) schema.ComplexityLevel {
	switch {
	case cc <= 10:
		return schema.LowComplexity
	case cc <= 20:
		return schema.MediumComplexity
	case cc <= 50:
		return schema.HighComplexity
	default:
		return schema.CriticalComplexity
	}
}

// RiskLevelFor bands a risk score. This axis is separate from ComplexityLevelFor
// and only backs the displayed risk label.
func RiskLevelFor(score float64) schema.RiskLevel {
	switch {
	case score < 25:
		return schema.LowRisk
	case score < 50:
		return schema.MediumRisk
	case score < 75:
		return schema.HighRisk
	default:
		return schema.CriticalRisk
	}
}

// RiskScore computes 0.4*cc + 2*nesting + 5*ln(loc) + 10*(1 - comments/loc),
// clamped to [0, 100]. With no lines the size term is 0 and the sparsity term is 10.
func RiskScore(m schema.RawMetrics) float64 {
	loc := float64(m.TotalLines)
	complexity := 0.4 * float64(m.CyclomaticComplexity)
	nesting := 2 * float64(m.NestingDepth)

	size := 0.0
	sparsity := 10.0
	if loc > 0 {
		size = 5 * math.Log(loc)
		sparsity = 10 * (1 - float64(m.CommentLines)/loc)
	}
	return clamp(complexity+nesting+size+sparsity, 0, 100)
}

// TechnicalDebt sums remediation points and hours over exceeded thresholds.
func TechnicalDebt(m schema.RawMetrics) schema.TechnicalDebt {
	var points, hours float64

	if excess := m.CyclomaticComplexity - debtComplexityThreshold; excess > 0 {
		points += 2 * float64(excess)
		hours += 0.5 * float64(excess)
	}
	if excess := m.TotalLines - debtSizeThreshold; excess > 0 {
		hundreds := float64(excess / 100)
		points += hundreds
		hours += 0.25 * hundreds
	}
	if excess := m.NestingDepth - debtNestingThreshold; excess > 0 {
		points += 3 * float64(excess)
		hours += float64(excess)
	}
	if m.FunctionCount == 0 && m.TotalLines > debtMonolithThreshold {
		points += 5
		hours += 2
	}

	return schema.TechnicalDebt{
		Points:   points,
		Hours:    hours,
		Category: DebtCategoryFor(points),
	}
}

// DebtCategoryFor bands technical debt points.
func DebtCategoryFor(points float64) schema.DebtCategory {
	switch {
	case points <= 5:
		return schema.LowDebt
	case points <= 15:
		return schema.MediumDebt
	case points <= 30:
		return schema.HighDebt
	default:
		return schema.CriticalDebt
	}
}

// QualityScore blends maintainability, inverted complexity, coverage,
// documentation and duplication estimates into [0, 100].
func QualityScore(m schema.RawMetrics) float64 {
	maintainability := MaintainabilityIndex(m)
	invComplexity := 100 - math.Min(float64(m.CyclomaticComplexity)*2, 100)
	coverage := 0.0

	documentation := 0.0
	duplication := 100.0
	if m.TotalLines > 0 {
		commentRatio := float64(m.CommentLines) / float64(m.TotalLines)
		documentation = math.Min(commentRatio*200, 100)
		functionsPer100 := float64(m.FunctionCount) / float64(m.TotalLines) * 100
		duplication = 100 - math.Min(functionsPer100*5, 100)
	}

	score := qualityMaintainabilityWeight*maintainability +
		qualityComplexityWeight*invComplexity +
		qualityCoverageWeight*coverage +
		qualityDocumentationWeight*documentation +
		qualityDuplicationWeight*duplication
	return clamp(score, 0, 100)
}
