package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/huangsam/legacylens/core/algo"
	"github.com/huangsam/legacylens/schema"
)

// Suggestion policy. Impact, effort and confidence are fixed per rule.
const (
	complexityThreshold     = 10
	highComplexityThreshold = 20
	performanceMinLines     = 200

	complexityImpact        = 0.8
	injectionImpact         = 0.9
	credentialImpact        = 1.0
	performanceImpact       = 0.6
	modernizationImpact     = 0.5
	complexityConfidence    = 0.9
	injectionConfidence     = 0.85
	credentialConfidence    = 0.95
	performanceConfidence   = 0.7
	modernizationConfidence = 0.8
)

var (
	injectionRe  = regexp.MustCompile(`\b(?:eval|exec)\s*\(`)
	credentialRe = regexp.MustCompile(`(?i)password\s*=\s*["'][^"']*["']`)

	textLoopRe  = regexp.MustCompile(`\b(?:for|foreach|while|until)\b`)
	xmlLoopOpen = regexp.MustCompile(`<xsl:for-each\b[^>]*[^/]>|<pd:group\b[^>]*[^/]>`)
	xmlLoopEnd  = regexp.MustCompile(`</xsl:for-each>|</pd:group>`)
)

var modernizationNotes = map[schema.Technology]string{
	schema.PerlTech: "Perl code benefits from migration to a typed, well-supported language. " +
		"Start by isolating modules behind tests and replacing global state and string eval.",
	schema.TibcoTech: "TIBCO BusinessWorks processes can move to containerized integration services. " +
		"Extract mappings and transitions into versioned, testable service code.",
	schema.PentahoTech: "Pentaho jobs and transformations can move to a modern orchestration and ELT stack. " +
		"Replace chained steps with declarative SQL models and scheduled workflows.",
	schema.OtherTech: "Review this file for migration to a supported runtime with automated tests and CI.",
}

var techTitles = map[schema.Technology]string{
	schema.PerlTech:    "Perl",
	schema.TibcoTech:   "TIBCO",
	schema.PentahoTech: "Pentaho",
	schema.OtherTech:   "legacy",
}

// GenerateSuggestions evaluates every rule independently and returns the
// combined suggestions ordered by severity.
func GenerateSuggestions(content string, m schema.RawMetrics, tech schema.Technology) []schema.Suggestion {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	var out []schema.Suggestion

	if m.CyclomaticComplexity > complexityThreshold {
		sev, effort := schema.MediumSeverity, schema.MediumEffort
		if m.CyclomaticComplexity > highComplexityThreshold {
			sev, effort = schema.HighSeverity, schema.HighEffort
		}
		out = append(out, schema.Suggestion{
			Type:     schema.RefactorSuggestion,
			Severity: sev,
			Category: "complexity",
			Title:    "Reduce cyclomatic complexity",
			Description: fmt.Sprintf("Cyclomatic complexity is %d, above the threshold of %d. "+
				"Split branching logic into smaller units.", m.CyclomaticComplexity, complexityThreshold),
			Fix:        "Extract nested conditionals into named functions and replace flag-driven branches with lookup tables.",
			Impact:     complexityImpact,
			Effort:     effort,
			Confidence: complexityConfidence,
		})
	}

	if line := firstMatchLine(lines, injectionRe); line > 0 {
		out = append(out, schema.Suggestion{
			Type:        schema.SecuritySuggestion,
			Severity:    schema.HighSeverity,
			Category:    "code-injection",
			Title:       "Avoid dynamic code evaluation",
			Description: "Dynamic evaluation with eval or exec can run attacker-controlled input.",
			Fix:         "Replace dynamic evaluation with explicit dispatch or a safe parser.",
			StartLine:   line,
			EndLine:     line,
			Impact:      injectionImpact,
			Effort:      schema.MediumEffort,
			Confidence:  injectionConfidence,
		})
	}

	for i, line := range lines {
		if !credentialRe.MatchString(line) {
			continue
		}
		out = append(out, schema.Suggestion{
			Type:        schema.SecuritySuggestion,
			Severity:    schema.CriticalSeverity,
			Category:    "credentials",
			Title:       "Remove hardcoded credential",
			Description: fmt.Sprintf("A password literal is assigned on line %d.", i+1),
			Fix:         "Load the secret from the environment or a secret manager and rotate the exposed value.",
			StartLine:   i + 1,
			EndLine:     i + 1,
			Impact:      credentialImpact,
			Effort:      schema.LowEffort,
			Confidence:  credentialConfidence,
		})
	}

	if m.TotalLines > performanceMinLines {
		if line := nestedLoopLine(lines, tech); line > 0 {
			out = append(out, schema.Suggestion{
				Type:        schema.PerformanceSuggestion,
				Severity:    schema.MediumSeverity,
				Category:    "algorithms",
				Title:       "Review nested loops",
				Description: fmt.Sprintf("A loop nested inside another loop starts on line %d; cost grows quadratically with input size.", line),
				Fix:         "Index the inner collection in a hash or push the join into the database.",
				StartLine:   line,
				EndLine:     line,
				Impact:      performanceImpact,
				Effort:      schema.MediumEffort,
				Confidence:  performanceConfidence,
			})
		}
	}

	note, ok := modernizationNotes[tech]
	if !ok {
		tech, note = schema.OtherTech, modernizationNotes[schema.OtherTech]
	}
	out = append(out, schema.Suggestion{
		Type:        schema.ModernizationSuggestion,
		Severity:    schema.LowSeverity,
		Category:    "migration",
		Title:       fmt.Sprintf("Plan %s modernization", techTitles[tech]),
		Description: note,
		Impact:      modernizationImpact,
		Effort:      schema.HighEffort,
		Confidence:  modernizationConfidence,
	})

	return algo.RankSuggestions(out, 0)
}

// firstMatchLine returns the 1-based line of the first match, or 0.
func firstMatchLine(lines []string, re *regexp.Regexp) int {
	for i, line := range lines {
		if re.MatchString(line) {
			return i + 1
		}
	}
	return 0
}

// nestedLoopLine returns the 1-based line where a loop opens inside another
// loop's scope, or 0. Text languages track loop scopes through braces; XML
// technologies track loop elements.
func nestedLoopLine(lines []string, tech schema.Technology) int {
	if tech == schema.TibcoTech || tech == schema.PentahoTech {
		depth := 0
		for i, line := range lines {
			for range xmlLoopOpen.FindAllString(line, -1) {
				if depth > 0 {
					return i + 1
				}
				depth++
			}
			depth = max(depth-len(xmlLoopEnd.FindAllString(line, -1)), 0)
		}
		return 0
	}

	type loopScope struct {
		outer  int // brace depth outside the loop
		opened bool
	}
	braces, parens := 0, 0
	var scopes []loopScope
	for i, line := range lines {
		code := stripLiterals(line, tech)
		loops := textLoopRe.FindAllStringIndex(code, -1)
		for pos := 0; pos < len(code); pos++ {
			if len(loops) > 0 && loops[0][0] == pos {
				if len(scopes) > 0 {
					return i + 1
				}
				scopes = append(scopes, loopScope{outer: braces})
				loops = loops[1:]
				continue
			}
			switch code[pos] {
			case '(':
				parens++
			case ')':
				parens = max(parens-1, 0)
			case '{':
				braces++
				if n := len(scopes); n > 0 && !scopes[n-1].opened {
					scopes[n-1].opened = true
				}
			case '}':
				braces = max(braces-1, 0)
				for len(scopes) > 0 && scopes[len(scopes)-1].opened && braces <= scopes[len(scopes)-1].outer {
					scopes = scopes[:len(scopes)-1]
				}
			case ';':
				// A statement ended before the loop body opened: a postfix
				// modifier or a do-while tail.
				if n := len(scopes); n > 0 && !scopes[n-1].opened && parens == 0 {
					scopes = scopes[:n-1]
				}
			}
		}
	}
	return 0
}

// stripLiterals blanks quoted strings and drops trailing comments so loop
// keywords in text are not mistaken for code. Offsets are preserved.
func stripLiterals(line string, tech schema.Technology) string {
	out := []byte(line)
	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]
		if quote != 0 {
			if c == '\\' && i+1 < len(out) {
				out[i], out[i+1] = ' ', ' '
				i++
				continue
			}
			if c == quote {
				quote = 0
			} else {
				out[i] = ' '
			}
			continue
		}
		switch {
		case c == '"' || c == '\'':
			quote = c
		case c == '#' && tech != schema.OtherTech && (i == 0 || out[i-1] == ' ' || out[i-1] == '\t' || out[i-1] == ';'):
			return string(out[:i])
		case c == '/' && i+1 < len(out) && out[i+1] == '/' && tech == schema.OtherTech:
			return string(out[:i])
		}
	}
	return string(out)
}
