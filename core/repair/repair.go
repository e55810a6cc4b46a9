// Package repair recovers a metrics object from free-text model output.
//
// Model responses are expected to carry a JSON object of named metrics but
// are often truncated, wrapped in prose or stripped of keys. Recover tries a
// fixed sequence of strategies and accepts the first that yields a JSON
// object; when none does it synthesizes neutral metrics from the content
// itself. Recover never fails and always returns every expected key.
package repair

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/huangsam/legacylens/core/algo"
	"github.com/huangsam/legacylens/schema"
)

// Metric keys understood by ToRawMetrics.
const (
	KeyTotalLines           = "total_lines"
	KeyCodeLines            = "code_lines"
	KeyCommentLines         = "comment_lines"
	KeyBlankLines           = "blank_lines"
	KeyCyclomaticComplexity = "cyclomatic_complexity"
	KeyNestingDepth         = "nesting_depth"
	KeyFunctionCount        = "function_count"
	KeyClassCount           = "class_count"
	KeyLoopCount            = "loop_count"
	KeyConditionalCount     = "conditional_count"
	KeySQLJoinCount         = "sql_join_count"
	KeyDependencyCount      = "dependency_count"
	KeyMaintainabilityIndex = "maintainability_index"
	KeyRiskScore            = "risk_score"
	KeyComplexityLevel      = "complexity_level"
)

// DefaultKeys is the canonical key order used for positional reconstruction.
var DefaultKeys = []string{
	KeyTotalLines, KeyCodeLines, KeyCommentLines, KeyBlankLines,
	KeyCyclomaticComplexity, KeyNestingDepth,
	KeyFunctionCount, KeyClassCount, KeyLoopCount, KeyConditionalCount,
	KeySQLJoinCount, KeyDependencyCount,
	KeyMaintainabilityIndex, KeyRiskScore, KeyComplexityLevel,
}

// Strategy names the recovery step that produced a Result.
type Strategy string

// Recovery strategies in the order they are attempted.
const (
	TrailingObject    Strategy = "trailing-object"
	FirstObject       Strategy = "first-object"
	SmallestObject    Strategy = "smallest-object"
	TextualRepair     Strategy = "textual-repair"
	Positional        Strategy = "positional"
	NumericExtraction Strategy = "numeric-extraction"
	ContentFallback   Strategy = "fallback"
)

// Neutral defaults for values that cannot be recovered.
const (
	NeutralRiskScore  = 50.0
	NeutralComplexity = 5
	NeutralNesting    = 2

	// Fallback line split in tenths: 70% code, 20% comment, rest blank.
	fallbackCodeTenths    = 7
	fallbackCommentTenths = 2
)

// Result is the outcome of Recover.
type Result struct {
	Values     map[string]any
	Strategy   Strategy
	Fallback   bool
	Backfilled []string // expected keys absent from the response
}

var (
	trailingObjectRe = regexp.MustCompile(`(?s)(\{(?:[^{}]|\{[^{}]*\})*\})\s*$`)
	firstObjectRe    = regexp.MustCompile(`(?s)\{.*\}`)
	flatObjectRe     = regexp.MustCompile(`\{[^{}]*\}`)

	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][\w\-]*)(\s*:)`)
	singleQuotedRe  = regexp.MustCompile(`'([^'"\n]*)'`)
	bareValueRe     = regexp.MustCompile(`(:\s*)([A-Za-z_][\w.\-]*)(\s*[,}\]])`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	quotedKeyRe   = regexp.MustCompile(`"[^"]*"\s*:`)
	quotedValueRe = regexp.MustCompile(`"([^"]*)"`)
	integerRe     = regexp.MustCompile(`\d+`)
)

// Recover extracts a metrics object from raw. Strategies run in order and the
// first that yields a JSON object wins. Missing keys are backfilled from the
// recovered metrics; content is only used when every strategy fails.
func Recover(raw string, expectedKeys []string, content string) Result {
	if len(expectedKeys) == 0 {
		expectedKeys = DefaultKeys
	}

	attempts := []struct {
		name Strategy
		fn   func(string, []string) (map[string]any, bool)
	}{
		{TrailingObject, tryTrailingObject},
		{FirstObject, tryFirstObject},
		{SmallestObject, trySmallestObject},
		{TextualRepair, tryTextualRepair},
		{Positional, tryPositional},
		{NumericExtraction, tryNumericExtraction},
	}
	for _, a := range attempts {
		if values, ok := a.fn(raw, expectedKeys); ok {
			res := Result{Values: values, Strategy: a.name}
			res.Backfilled = backfill(res.Values, expectedKeys)
			return res
		}
	}

	res := Result{Values: FallbackMetrics(content), Strategy: ContentFallback, Fallback: true}
	res.Backfilled = backfill(res.Values, expectedKeys)
	return res
}

// decodeObject accepts only a JSON object.
func decodeObject(s string) (map[string]any, bool) {
	var out map[string]any
	if err := json.Unmarshal([]byte(s), &out); err != nil || out == nil {
		return nil, false
	}
	return out, true
}

func tryTrailingObject(raw string, _ []string) (map[string]any, bool) {
	m := trailingObjectRe.FindStringSubmatch(raw)
	if m == nil {
		return nil, false
	}
	return decodeObject(m[1])
}

func tryFirstObject(raw string, _ []string) (map[string]any, bool) {
	m := firstObjectRe.FindString(raw)
	if m == "" {
		return nil, false
	}
	return decodeObject(m)
}

func trySmallestObject(raw string, _ []string) (map[string]any, bool) {
	candidates := flatObjectRe.FindAllString(raw, -1)
	var best map[string]any
	bestLen := math.MaxInt
	for _, c := range candidates {
		if len(c) >= bestLen {
			continue
		}
		if obj, ok := decodeObject(c); ok {
			best, bestLen = obj, len(c)
		}
	}
	return best, best != nil
}

func tryTextualRepair(raw string, _ []string) (map[string]any, bool) {
	candidate := raw
	if start := strings.IndexByte(raw, '{'); start >= 0 {
		candidate = raw[start:]
		if end := strings.LastIndexByte(candidate, '}'); end >= 0 {
			candidate = candidate[:end+1]
		}
	} else if strings.Contains(raw, ":") {
		candidate = "{" + raw + "}"
	} else {
		return nil, false
	}

	fixed := RepairText(candidate)
	if opens, closes := strings.Count(fixed, "{"), strings.Count(fixed, "}"); opens > closes {
		fixed += strings.Repeat("}", opens-closes)
	}
	return decodeObject(fixed)
}

// RepairText applies the textual fixes used by the repair strategy: control
// characters are stripped, lone backslashes escaped, bare keys and values
// quoted and trailing commas dropped.
func RepairText(s string) string {
	s = stripControl(s)
	s = escapeBackslashes(s)
	s = singleQuotedRe.ReplaceAllString(s, `"$1"`)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2"$3`)
	s = bareValueRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := bareValueRe.FindStringSubmatch(match)
		switch parts[2] {
		case "true", "false", "null":
			return match
		}
		return parts[1] + strconv.Quote(parts[2]) + parts[3]
	})
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			return ' '
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
}

// escapeBackslashes doubles every backslash that does not start a valid JSON escape.
func escapeBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 < len(s) && strings.IndexByte(`"\/bfnrtu`, s[i+1]) >= 0 {
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		b.WriteString(`\\`)
	}
	return b.String()
}

// tryPositional zips quoted bare values against the expected keys when the
// text carries no key:value structure at all.
func tryPositional(raw string, keys []string) (map[string]any, bool) {
	if quotedKeyRe.MatchString(raw) {
		return nil, false
	}
	var values []string
	for _, m := range quotedValueRe.FindAllStringSubmatch(raw, -1) {
		if v := strings.Trim(m[1], " \t,;:"); v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return nil, false
	}

	out := make(map[string]any, len(keys))
	for i, key := range keys {
		if i >= len(values) {
			break
		}
		if key == KeyComplexityLevel {
			out[key] = strings.ToLower(values[i])
			continue
		}
		if n, err := strconv.ParseFloat(values[i], 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			out[key] = n
		} else {
			out[key] = values[i]
		}
	}
	return out, true
}

// tryNumericExtraction assigns every integer in the text, in order, to the
// numeric keys. Categorical fields and the risk score get neutral values.
func tryNumericExtraction(raw string, keys []string) (map[string]any, bool) {
	ints := integerRe.FindAllString(raw, -1)
	if len(ints) == 0 {
		return nil, false
	}

	out := make(map[string]any, len(keys))
	next := 0
	for _, key := range keys {
		switch key {
		case KeyComplexityLevel:
			out[key] = string(schema.MediumComplexity)
		case KeyRiskScore:
			out[key] = NeutralRiskScore
		default:
			if next >= len(ints) {
				continue
			}
			n, err := strconv.ParseFloat(ints[next], 64)
			next++
			if err != nil || math.IsInf(n, 0) {
				continue
			}
			out[key] = n
		}
	}
	return out, true
}

// FallbackMetrics synthesizes metrics from content alone with fixed line
// ratios and neutral complexity values.
func FallbackMetrics(content string) map[string]any {
	total := 0
	if content != "" {
		total = strings.Count(strings.TrimSuffix(content, "\n"), "\n") + 1
	}
	code := total * fallbackCodeTenths / 10
	comment := total * fallbackCommentTenths / 10

	m := schema.RawMetrics{
		TotalLines:           total,
		CodeLines:            code,
		CommentLines:         comment,
		BlankLines:           total - code - comment,
		CyclomaticComplexity: NeutralComplexity,
		NestingDepth:         NeutralNesting,
	}
	values := FromRawMetrics(m)
	values[KeyMaintainabilityIndex] = algo.MaintainabilityIndex(m)
	values[KeyRiskScore] = NeutralRiskScore
	values[KeyComplexityLevel] = string(schema.MediumComplexity)
	return values
}

// backfill fills every missing or null expected key and returns the names it
// filled. Derived scores are computed from the recovered counts; counts default to 0.
func backfill(values map[string]any, keys []string) []string {
	var missing []string
	for _, key := range keys {
		if v, ok := values[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	m := ToRawMetrics(values)
	for _, key := range missing {
		switch key {
		case KeyMaintainabilityIndex:
			values[key] = algo.MaintainabilityIndex(m)
		case KeyRiskScore:
			values[key] = algo.RiskScore(m)
		case KeyComplexityLevel:
			values[key] = string(algo.ComplexityLevelFor(max(m.CyclomaticComplexity, 1)))
		default:
			values[key] = float64(0)
		}
	}
	return missing
}

// FromRawMetrics renders metrics as a key map.
func FromRawMetrics(m schema.RawMetrics) map[string]any {
	return map[string]any{
		KeyTotalLines:           float64(m.TotalLines),
		KeyCodeLines:            float64(m.CodeLines),
		KeyCommentLines:         float64(m.CommentLines),
		KeyBlankLines:           float64(m.BlankLines),
		KeyCyclomaticComplexity: float64(m.CyclomaticComplexity),
		KeyNestingDepth:         float64(m.NestingDepth),
		KeyFunctionCount:        float64(m.FunctionCount),
		KeyClassCount:           float64(m.ClassCount),
		KeyLoopCount:            float64(m.LoopCount),
		KeyConditionalCount:     float64(m.ConditionalCount),
		KeySQLJoinCount:         float64(m.SQLJoinCount),
		KeyDependencyCount:      float64(m.DependencyCount),
	}
}

// ToRawMetrics converts recovered values to metrics. Unparseable or negative
// values become 0.
func ToRawMetrics(values map[string]any) schema.RawMetrics {
	return schema.RawMetrics{
		TotalLines:           Int(values, KeyTotalLines),
		CodeLines:            Int(values, KeyCodeLines),
		CommentLines:         Int(values, KeyCommentLines),
		BlankLines:           Int(values, KeyBlankLines),
		CyclomaticComplexity: Int(values, KeyCyclomaticComplexity),
		NestingDepth:         Int(values, KeyNestingDepth),
		FunctionCount:        Int(values, KeyFunctionCount),
		ClassCount:           Int(values, KeyClassCount),
		LoopCount:            Int(values, KeyLoopCount),
		ConditionalCount:     Int(values, KeyConditionalCount),
		SQLJoinCount:         Int(values, KeySQLJoinCount),
		DependencyCount:      Int(values, KeyDependencyCount),
	}
}

// Float reads a numeric value. ok is false when the key is absent or not numeric.
func Float(values map[string]any, key string) (float64, bool) {
	var f float64
	switch v := values[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Int reads a non-negative integer value, rounding and saturating as needed.
func Int(values map[string]any, key string) int {
	f, ok := Float(values, key)
	if !ok || f <= 0 {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

// String reads a string value, or "" when absent.
func String(values map[string]any, key string) string {
	if s, ok := values[key].(string); ok {
		return s
	}
	return ""
}
