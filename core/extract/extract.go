// Package extract derives structural metrics from legacy source with regex heuristics.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/sirupsen/logrus"
)

// compiledRule holds the expressions of a Rule that compiled successfully.
type compiledRule []*regexp.Regexp

// count sums match counts of every expression over text.
func (r compiledRule) count(text string) int {
	total := 0
	for _, re := range r {
		total += len(re.FindAllStringIndex(text, -1))
	}
	return total
}

type compiledSet struct {
	linePrefixes []string
	blockStart   *regexp.Regexp
	blockEnd     *regexp.Regexp
	decisions    compiledRule
	loops        compiledRule
	functions    compiledRule
	classes      compiledRule
	dependencies compiledRule
	sqlJoins     compiledRule
	openers      compiledRule
	closers      compiledRule
}

// Extractor computes RawMetrics from content using per-technology pattern tables.
// It is safe for concurrent use once constructed.
type Extractor struct {
	sets map[schema.Technology]compiledSet
	log  logrus.FieldLogger
}

var defaultExtractor = New(contract.Logger)

// Extract computes metrics with the default pattern tables.
func Extract(content string, tech schema.Technology) schema.RawMetrics {
	return defaultExtractor.Extract(content, tech)
}

// New builds an Extractor over the default tables.
func New(log logrus.FieldLogger) *Extractor {
	return NewWithTables(log, DefaultTables())
}

// NewWithTables builds an Extractor over custom tables. Expressions that fail
// to compile are skipped and logged; they never abort construction.
func NewWithTables(log logrus.FieldLogger, tables map[schema.Technology]PatternSet) *Extractor {
	e := &Extractor{sets: make(map[schema.Technology]compiledSet, len(tables)), log: log}
	for tech, set := range tables {
		e.sets[tech] = e.compileSet(tech, set)
	}
	return e
}

func (e *Extractor) compileSet(tech schema.Technology, set PatternSet) compiledSet {
	c := compiledSet{
		linePrefixes: set.Comments.LinePrefixes,
		decisions:    e.compileRule(tech, "decisions", set.Decisions),
		loops:        e.compileRule(tech, "loops", set.Loops),
		functions:    e.compileRule(tech, "functions", set.Functions),
		classes:      e.compileRule(tech, "classes", set.Classes),
		dependencies: e.compileRule(tech, "dependencies", set.Dependencies),
		sqlJoins:     e.compileRule(tech, "sql_joins", set.SQLJoins),
		openers:      e.compileRule(tech, "openers", set.Openers),
		closers:      e.compileRule(tech, "closers", set.Closers),
	}
	if set.Comments.BlockStart != "" && set.Comments.BlockEnd != "" {
		start := e.compileOne(tech, "block_start", set.Comments.BlockStart)
		end := e.compileOne(tech, "block_end", set.Comments.BlockEnd)
		if start != nil && end != nil {
			c.blockStart, c.blockEnd = start, end
		}
	}
	return c
}

func (e *Extractor) compileRule(tech schema.Technology, name string, rule Rule) compiledRule {
	var out compiledRule
	for _, kw := range rule.Keywords {
		if re := e.compileOne(tech, name, `\b`+regexp.QuoteMeta(kw)+`\b`); re != nil {
			out = append(out, re)
		}
	}
	for _, lit := range rule.Literals {
		if re := e.compileOne(tech, name, regexp.QuoteMeta(lit)); re != nil {
			out = append(out, re)
		}
	}
	for _, pat := range rule.Patterns {
		if re := e.compileOne(tech, name, pat); re != nil {
			out = append(out, re)
		}
	}
	return out
}

func (e *Extractor) compileOne(tech schema.Technology, name, expr string) *regexp.Regexp {
	re, err := regexp.Compile(expr)
	if err != nil {
		e.log.WithFields(logrus.Fields{
			"technology": tech,
			"rule":       name,
			"pattern":    expr,
		}).WithError(err).Warn("Skipping pattern that failed to compile")
		return nil
	}
	return re
}

// lineCounts is the result of line classification.
type lineCounts struct {
	total, code, comment, blank int
	codeText                    string
}

// Extract computes metrics for content. Unknown technologies use the "other" table.
// The result is always fully populated.
func (e *Extractor) Extract(content string, tech schema.Technology) schema.RawMetrics {
	set, ok := e.sets[tech]
	if !ok {
		set = e.sets[schema.OtherTech]
	}

	lc := classifyLines(content, set)
	m := schema.RawMetrics{
		TotalLines:       lc.total,
		CodeLines:        lc.code,
		CommentLines:     lc.comment,
		BlankLines:       lc.blank,
		NestingDepth:     nestingDepth(lc.codeText, set.openers, set.closers),
		FunctionCount:    set.functions.count(lc.codeText),
		ClassCount:       set.classes.count(lc.codeText),
		LoopCount:        set.loops.count(lc.codeText),
		ConditionalCount: set.decisions.count(lc.codeText),
		SQLJoinCount:     set.sqlJoins.count(lc.codeText),
		DependencyCount:  set.dependencies.count(lc.codeText),
	}
	m.CyclomaticComplexity = m.ConditionalCount + m.LoopCount + 1
	return m
}

// classifyLines splits content into blank, comment and code lines, tracking
// block comments with a toggled flag. Code lines are joined into codeText.
func classifyLines(content string, set compiledSet) lineCounts {
	var lc lineCounts
	if content == "" {
		return lc
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
	var code strings.Builder
	inBlock := false

	for _, line := range lines {
		lc.total++
		trimmed := strings.TrimSpace(line)

		if inBlock {
			lc.comment++
			if set.blockEnd.MatchString(trimmed) {
				inBlock = false
			}
			continue
		}

		if trimmed == "" {
			lc.blank++
			continue
		}

		if set.blockStart != nil {
			if loc := set.blockStart.FindStringIndex(trimmed); loc != nil {
				closed := set.blockEnd.MatchString(trimmed[loc[1]:]) ||
					// Perl POD ends on its own =cut line, so a stray =cut never opens a block.
					(loc[0] == 0 && set.blockEnd.MatchString(trimmed))
				if loc[0] == 0 {
					lc.comment++
					inBlock = !closed
					continue
				}
				// Block comment opened after code on the same line.
				inBlock = !closed
			}
		}

		if hasAnyPrefix(trimmed, set.linePrefixes) {
			lc.comment++
			continue
		}

		lc.code++
		code.WriteString(line)
		code.WriteByte('\n')
	}

	lc.codeText = code.String()
	return lc
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// nestingDepth sweeps opener and closer matches in text order. Depth is clamped
// at zero so unmatched closers never drive it negative; the maximum is returned.
func nestingDepth(text string, openers, closers compiledRule) int {
	type event struct {
		pos   int
		delta int
	}
	var events []event
	for _, re := range openers {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			events = append(events, event{loc[0], 1})
		}
	}
	for _, re := range closers {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			events = append(events, event{loc[0], -1})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].pos < events[j].pos })

	depth, maxDepth := 0, 0
	for _, ev := range events {
		depth = max(depth+ev.delta, 0)
		maxDepth = max(maxDepth, depth)
	}
	return maxDepth
}
