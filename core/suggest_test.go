package core

import (
	"strings"
	"testing"

	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func byCategory(suggestions []schema.Suggestion, category string) []schema.Suggestion {
	var out []schema.Suggestion
	for _, s := range suggestions {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}

func numberedLines(n int, overrides map[int]string) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "my $x" + strings.Repeat("x", i%3) + " = 1;"
		if s, ok := overrides[i+1]; ok {
			lines[i] = s
		}
	}
	return strings.Join(lines, "\n")
}

func TestCredentialSuggestionCarriesLine(t *testing.T) {
	content := numberedLines(12, map[int]string{10: `my $password = "abc123";`})
	out := GenerateSuggestions(content, schema.RawMetrics{TotalLines: 12, CyclomaticComplexity: 1}, schema.PerlTech)

	creds := byCategory(out, "credentials")
	require.Len(t, creds, 1)
	assert.Equal(t, schema.SecuritySuggestion, creds[0].Type)
	assert.Equal(t, schema.CriticalSeverity, creds[0].Severity)
	assert.Equal(t, 10, creds[0].StartLine)
	assert.Equal(t, 10, creds[0].EndLine)
	assert.Equal(t, "credentials", out[0].Category, "critical findings come first")
	assert.NotContains(t, creds[0].Description, "abc123")
}

func TestCredentialSuggestionPerLine(t *testing.T) {
	content := numberedLines(6, map[int]string{2: `PASSWORD='x'`, 5: `$db_password = "y"`})
	out := GenerateSuggestions(content, schema.RawMetrics{TotalLines: 6, CyclomaticComplexity: 1}, schema.PerlTech)

	creds := byCategory(out, "credentials")
	require.Len(t, creds, 2)
	assert.Equal(t, 2, creds[0].StartLine)
	assert.Equal(t, 5, creds[1].StartLine)
}

func TestComplexitySuggestion(t *testing.T) {
	tests := []struct {
		cc       int
		want     bool
		severity schema.Severity
		effort   schema.Effort
	}{
		{10, false, "", ""},
		{11, true, schema.MediumSeverity, schema.MediumEffort},
		{20, true, schema.MediumSeverity, schema.MediumEffort},
		{21, true, schema.HighSeverity, schema.HighEffort},
	}
	for _, tt := range tests {
		out := GenerateSuggestions("", schema.RawMetrics{CyclomaticComplexity: tt.cc}, schema.PerlTech)
		found := byCategory(out, "complexity")
		if !tt.want {
			assert.Empty(t, found, "cc=%d", tt.cc)
			continue
		}
		require.Len(t, found, 1, "cc=%d", tt.cc)
		assert.Equal(t, schema.RefactorSuggestion, found[0].Type)
		assert.Equal(t, tt.severity, found[0].Severity)
		assert.Equal(t, tt.effort, found[0].Effort)
		assert.InDelta(t, complexityImpact, found[0].Impact, 1e-9)
		assert.InDelta(t, complexityConfidence, found[0].Confidence, 1e-9)
	}
}

func TestInjectionSuggestion(t *testing.T) {
	content := "use strict;\nmy $in = <STDIN>;\neval ($in);\nexec('ls');\n"
	out := GenerateSuggestions(content, schema.RawMetrics{TotalLines: 4, CyclomaticComplexity: 1}, schema.PerlTech)

	found := byCategory(out, "code-injection")
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].StartLine)
	assert.Equal(t, schema.HighSeverity, found[0].Severity)

	// Identifiers that merely contain the word do not match
	out = GenerateSuggestions("my $evaluate = medieval(1);", schema.RawMetrics{CyclomaticComplexity: 1}, schema.PerlTech)
	assert.Empty(t, byCategory(out, "code-injection"))
}

func TestPerformanceSuggestion(t *testing.T) {
	nested := numberedLines(210, map[int]string{
		5: "for my $i (@rows) {",
		6: "    foreach my $j (@cols) {",
		7: "    }",
		8: "}",
	})
	sequential := numberedLines(210, map[int]string{
		5: "for my $i (@rows) {",
		6: "}",
		7: "while (my $line = <FH>) {",
		8: "}",
	})
	allman := numberedLines(210, map[int]string{
		5:  "foreach my $row (@rows)",
		6:  "{",
		7:  "    foreach my $col (@cols)",
		8:  "    {",
		9:  "    }",
		10: "}",
	})
	oneLine := numberedLines(210, map[int]string{
		5: "foreach my $r (@rows) { foreach my $c (@cols) { print $c; } }",
	})
	loopWords := numberedLines(210, map[int]string{
		5:  "foreach my $item (@items) {",
		6:  `    print "Thanks for ordering\n";`,
		7:  "    print $fh $item; # wait for the while",
		8:  "}",
		9:  `print "$_\n" for @rows;`,
		10: "while (my $line = <FH>) {",
		11: "}",
	})
	tibco := numberedLines(210, map[int]string{
		3: `<pd:group name="outer">`,
		4: `  <xsl:for-each select="$rows/row">`,
		5: `  </xsl:for-each>`,
		6: `</pd:group>`,
	})

	tests := []struct {
		name    string
		content string
		lines   int
		tech    schema.Technology
		line    int
	}{
		{"nested perl loops", nested, 210, schema.PerlTech, 6},
		{"sequential loops", sequential, 210, schema.PerlTech, 0},
		{"short file", nested, 200, schema.PerlTech, 0},
		{"allman braces", allman, 210, schema.PerlTech, 7},
		{"loops on one line", oneLine, 210, schema.PerlTech, 5},
		{"loop words in strings and comments", loopWords, 210, schema.PerlTech, 0},
		{"nested xml loops", tibco, 210, schema.TibcoTech, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := GenerateSuggestions(tt.content, schema.RawMetrics{TotalLines: tt.lines, CyclomaticComplexity: 1}, tt.tech)
			found := byCategory(out, "algorithms")
			if tt.line == 0 {
				assert.Empty(t, found)
				return
			}
			require.Len(t, found, 1)
			assert.Equal(t, tt.line, found[0].StartLine)
			assert.Equal(t, schema.PerformanceSuggestion, found[0].Type)
		})
	}
}

func TestStripLiterals(t *testing.T) {
	tests := []struct {
		line string
		tech schema.Technology
		want string
	}{
		{`print "for you";`, schema.PerlTech, `print "       ";`},
		{`my $s = 'a\'b'; # for later`, schema.PerlTech, `my $s = '    '; `},
		{`$#rows`, schema.PerlTech, `$#rows`},
		{`x++; // while`, schema.OtherTech, `x++; `},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, stripLiterals(tt.line, tt.tech))
		})
	}
}

func TestModernizationAlwaysPresent(t *testing.T) {
	tests := []struct {
		tech  schema.Technology
		title string
	}{
		{schema.PerlTech, "Plan Perl modernization"},
		{schema.TibcoTech, "Plan TIBCO modernization"},
		{schema.PentahoTech, "Plan Pentaho modernization"},
		{schema.OtherTech, "Plan legacy modernization"},
		{schema.Technology("cobol"), "Plan legacy modernization"},
	}
	for _, tt := range tests {
		out := GenerateSuggestions("", schema.RawMetrics{CyclomaticComplexity: 1}, tt.tech)
		require.Len(t, out, 1)
		assert.Equal(t, schema.ModernizationSuggestion, out[0].Type)
		assert.Equal(t, tt.title, out[0].Title)
		assert.Equal(t, schema.LowSeverity, out[0].Severity)
		assert.NotEmpty(t, out[0].Description)
	}
}

func TestSuggestionsOrderedBySeverity(t *testing.T) {
	content := "eval($x);\n$password = 'p';\n"
	out := GenerateSuggestions(content, schema.RawMetrics{TotalLines: 2, CyclomaticComplexity: 15}, schema.PerlTech)
	require.Len(t, out, 4)
	for i := 1; i < len(out); i++ {
		prev, cur := out[i-1], out[i]
		assert.GreaterOrEqual(t, prev.Severity.Weight(), cur.Severity.Weight())
		if prev.Severity == cur.Severity {
			assert.GreaterOrEqual(t, prev.Impact, cur.Impact)
		}
	}
	assert.Equal(t, "credentials", out[0].Category)
	assert.Equal(t, "code-injection", out[1].Category)
	assert.Equal(t, "complexity", out[2].Category)
	assert.Equal(t, "migration", out[3].Category)
}
