package repair

import (
	"testing"

	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertComplete(t *testing.T, res Result, keys []string) {
	t.Helper()
	for _, key := range keys {
		assert.Contains(t, res.Values, key, "missing key %s", key)
		assert.NotNil(t, res.Values[key], "null key %s", key)
	}
}

func TestRecoverStrategies(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		strategy Strategy
		check    func(t *testing.T, values map[string]any)
	}{
		{
			name:     "valid json",
			raw:      `{"total_lines": 40, "cyclomatic_complexity": 7, "complexity_level": "low"}`,
			strategy: TrailingObject,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 40, Int(v, KeyTotalLines))
				assert.Equal(t, 7, Int(v, KeyCyclomaticComplexity))
			},
		},
		{
			name:     "object after prose",
			raw:      "Sure, here are the metrics:\n{\"total_lines\": 12, \"nesting_depth\": 3}",
			strategy: TrailingObject,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 3, Int(v, KeyNestingDepth))
			},
		},
		{
			name:     "object followed by prose",
			raw:      "{\"total_lines\": 12, \"loop_count\": {\"for\": 1}}\nLet me know if you need more.",
			strategy: FirstObject,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 12, Int(v, KeyTotalLines))
			},
		},
		{
			name:     "two objects with prose between",
			raw:      `first {"total_lines": 5} and then {"broken": } done`,
			strategy: SmallestObject,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 5, Int(v, KeyTotalLines))
			},
		},
		{
			name:     "bare keys values and trailing comma",
			raw:      "metrics: {total_lines: 10, complexity_level: high, function_count: 2,}",
			strategy: TextualRepair,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 10, Int(v, KeyTotalLines))
				assert.Equal(t, 2, Int(v, KeyFunctionCount))
				assert.Equal(t, "high", String(v, KeyComplexityLevel))
			},
		},
		{
			name:     "unclosed object with backslash",
			raw:      `{"total_lines": 8, "path": "C:\temp\x"`,
			strategy: TextualRepair,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 8, Int(v, KeyTotalLines))
			},
		},
		{
			name:     "positional quoted values",
			raw:      `"29,""25,""3,"`,
			strategy: Positional,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 29, Int(v, KeyTotalLines))
				assert.Equal(t, 25, Int(v, KeyCodeLines))
				assert.Equal(t, 3, Int(v, KeyCommentLines))
			},
		},
		{
			name:     "integers only",
			raw:      "total 30 code 20 comments 6 blank 4 complexity 9",
			strategy: NumericExtraction,
			check: func(t *testing.T, v map[string]any) {
				assert.Equal(t, 30, Int(v, KeyTotalLines))
				assert.Equal(t, 20, Int(v, KeyCodeLines))
				assert.Equal(t, 9, Int(v, KeyCyclomaticComplexity))
				assert.Equal(t, "medium", String(v, KeyComplexityLevel))
				risk, ok := Float(v, KeyRiskScore)
				require.True(t, ok)
				assert.Equal(t, NeutralRiskScore, risk)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Recover(tt.raw, DefaultKeys, "")
			assert.Equal(t, tt.strategy, res.Strategy)
			assert.False(t, res.Fallback)
			assertComplete(t, res, DefaultKeys)
			tt.check(t, res.Values)
		})
	}
}

func TestRecoverScenarioD(t *testing.T) {
	res := Recover(`"29,""25,""3,"`, DefaultKeys, "")

	assert.Contains(t, []Strategy{Positional, NumericExtraction}, res.Strategy)
	assertComplete(t, res, DefaultKeys)
	assert.Contains(t, res.Backfilled, KeyMaintainabilityIndex)

	m := ToRawMetrics(res.Values)
	assert.Equal(t, 29, m.TotalLines)

	mi, ok := Float(res.Values, KeyMaintainabilityIndex)
	require.True(t, ok)
	assert.GreaterOrEqual(t, mi, 0.0)
	assert.LessOrEqual(t, mi, 100.0)
	assert.Equal(t, string(schema.LowComplexity), String(res.Values, KeyComplexityLevel))
}

func TestRecoverFallback(t *testing.T) {
	content := "line\nline\nline\nline\nline\nline\nline\nline\nline\nline\n"
	for _, raw := range []string{"", "no structure at all", "!!! ??? ..."} {
		t.Run(raw, func(t *testing.T) {
			res := Recover(raw, DefaultKeys, content)
			assert.True(t, res.Fallback)
			assert.Equal(t, ContentFallback, res.Strategy)
			assertComplete(t, res, DefaultKeys)

			m := ToRawMetrics(res.Values)
			assert.Equal(t, 10, m.TotalLines)
			assert.Equal(t, 7, m.CodeLines)
			assert.Equal(t, 2, m.CommentLines)
			assert.Equal(t, 1, m.BlankLines)
			assert.Equal(t, NeutralComplexity, m.CyclomaticComplexity)
			assert.Equal(t, NeutralNesting, m.NestingDepth)
			assert.Equal(t, "medium", String(res.Values, KeyComplexityLevel))
		})
	}
}

func TestRecoverDefaultsKeys(t *testing.T) {
	res := Recover(`{"total_lines": 3}`, nil, "")
	assertComplete(t, res, DefaultKeys)
	assert.Len(t, res.Backfilled, len(DefaultKeys)-1)
}

func TestRecoverNullValues(t *testing.T) {
	raw := `{"total_lines": null, "code_lines": 40, "cyclomatic_complexity": null, "risk_score": null, "complexity_level": null}`
	res := Recover(raw, DefaultKeys, "")
	assert.False(t, res.Fallback)
	assertComplete(t, res, DefaultKeys)
	assert.Contains(t, res.Backfilled, KeyTotalLines)
	assert.Contains(t, res.Backfilled, KeyRiskScore)
	assert.Equal(t, float64(0), res.Values[KeyTotalLines])
	assert.Equal(t, float64(40), res.Values[KeyCodeLines])
	assert.Equal(t, string(schema.LowComplexity), String(res.Values, KeyComplexityLevel))

	m := ToRawMetrics(res.Values)
	assert.Zero(t, m.CyclomaticComplexity)
}

func TestRecoverCustomKeys(t *testing.T) {
	keys := []string{"alpha", KeyComplexityLevel}
	res := Recover(`"7""Critical"`, keys, "")
	assert.Equal(t, Positional, res.Strategy)
	assert.Equal(t, float64(7), res.Values["alpha"])
	assert.Equal(t, "critical", String(res.Values, KeyComplexityLevel))
}

func TestRepairText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{a: 1,}`, `{"a": 1}`},
		{`{"a": low}`, `{"a": "low"}`},
		{`{"a": true, "b": null}`, `{"a": true, "b": null}`},
		{"{\"a\":\x01 1}", `{"a": 1}`},
		{`{"p": "c:\x"}`, `{"p": "c:\\x"}`},
		{`{'a': 'b'}`, `{"a": "b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RepairText(tt.in))
		})
	}
}

func TestToRawMetricsCoercion(t *testing.T) {
	values := map[string]any{
		KeyTotalLines:           "42",
		KeyCodeLines:            30.6,
		KeyCommentLines:         -4.0,
		KeyBlankLines:           "many",
		KeyCyclomaticComplexity: 1e12,
		KeyNestingDepth:         true,
	}
	m := ToRawMetrics(values)
	assert.Equal(t, 42, m.TotalLines)
	assert.Equal(t, 31, m.CodeLines)
	assert.Equal(t, 0, m.CommentLines)
	assert.Equal(t, 0, m.BlankLines)
	assert.Equal(t, 2147483647, m.CyclomaticComplexity)
	assert.Equal(t, 0, m.NestingDepth)
}

func TestFallbackMetricsEmptyContent(t *testing.T) {
	values := FallbackMetrics("")
	m := ToRawMetrics(values)
	assert.Equal(t, 0, m.TotalLines)
	assert.Equal(t, NeutralComplexity, m.CyclomaticComplexity)
	mi, ok := Float(values, KeyMaintainabilityIndex)
	require.True(t, ok)
	assert.LessOrEqual(t, mi, 100.0)
}
