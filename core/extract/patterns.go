package extract

import "github.com/huangsam/legacylens/schema"

// Rule is one counted construct. Keywords are escaped and word-bounded,
// literals are escaped and matched anywhere, and patterns are raw expressions
// that are skipped with a warning when they do not compile.
type Rule struct {
	Keywords []string
	Literals []string
	Patterns []string
}

// CommentStyle describes how a technology marks comments. BlockStart and
// BlockEnd are expressions; an empty BlockStart disables block tracking.
type CommentStyle struct {
	LinePrefixes []string
	BlockStart   string
	BlockEnd     string
}

// PatternSet is the full table of heuristics for one technology.
type PatternSet struct {
	Comments     CommentStyle
	Decisions    Rule
	Loops        Rule
	Functions    Rule
	Classes      Rule
	Dependencies Rule
	SQLJoins     Rule
	Openers      Rule
	Closers      Rule
}

// sqlJoinPattern matches qualified joins, or a bare JOIN followed by a table and ON/USING.
// The bare form needs the ON clause so Perl's join builtin does not count.
const sqlJoinPattern = `(?i)\b(?:(?:inner|left|right|full|cross|natural)(?:\s+outer)?\s+join\b|join\s+[\w.]+(?:\s+(?:as\s+)?\w+)?\s+(?:on|using)\b)`

var (
	braceOpeners = Rule{Literals: []string{"{", "(", "["}}
	braceClosers = Rule{Literals: []string{"}", ")", "]"}}

	// xmlOpeners matches an opening tag that is not self-closing.
	xmlOpeners = Rule{Patterns: []string{`<[A-Za-z_][\w:.\-]*(?:\s[^<>]*[^/<>])?\s*>`}}
	xmlClosers = Rule{Patterns: []string{`</[A-Za-z_][\w:.\-]*\s*>`}}

	xmlComments = CommentStyle{BlockStart: `<!--`, BlockEnd: `-->`}
)

var perlPatterns = PatternSet{
	Comments: CommentStyle{
		LinePrefixes: []string{"#"},
		BlockStart:   `^=[a-zA-Z]`,
		BlockEnd:     `^=cut\b`,
	},
	Decisions: Rule{Keywords: []string{"if", "elsif", "unless", "switch", "case", "given", "when"}},
	Loops:     Rule{Keywords: []string{"for", "foreach", "while", "until"}},
	Functions: Rule{Patterns: []string{`(?m)^\s*sub\s+\w+`}},
	Classes:   Rule{Patterns: []string{`(?m)^\s*package\s+[\w:]+`}},
	Dependencies: Rule{Patterns: []string{
		`(?m)^\s*use\s+(?:(?:base|parent)\s+)?(?:qw\(|['"])?[A-Z][\w:]*`,
		`(?m)^\s*require\s+[\w:'"./]+`,
		`(?m)^\s*do\s+['"][^'"]+\.p[lm]['"]`,
	}},
	SQLJoins: Rule{Patterns: []string{sqlJoinPattern}},
	Openers:  braceOpeners,
	Closers:  braceClosers,
}

var tibcoPatterns = PatternSet{
	Comments: xmlComments,
	Decisions: Rule{
		Literals: []string{
			"<xsl:if",
			"<xsl:when",
			"<pd:conditionType>xpath</pd:conditionType>",
			`conditionType="xpath"`,
			"com.tibco.pe.core.ChooseActivity",
		},
	},
	Loops: Rule{
		Literals: []string{
			"<pd:groupType>inputLoop</pd:groupType>",
			"<pd:groupType>repeat</pd:groupType>",
			"<pd:groupType>while</pd:groupType>",
			"<pd:groupType>errorLoop</pd:groupType>",
			"<xsl:for-each",
		},
	},
	Functions: Rule{Literals: []string{"<pd:activity ", "<pd:starter ", "<pd:group "}},
	Classes:   Rule{Literals: []string{"<pd:ProcessDefinition"}},
	Dependencies: Rule{
		Literals: []string{"com.tibco.pe.core.CallProcessActivity", "<pd:import"},
		Patterns: []string{`<(?:xsd|xs):(?:import|include)\b`},
	},
	SQLJoins: Rule{Patterns: []string{sqlJoinPattern}},
	Openers:  xmlOpeners,
	Closers:  xmlClosers,
}

var pentahoPatterns = PatternSet{
	Comments: xmlComments,
	Decisions: Rule{
		Literals: []string{
			"<type>FilterRows</type>",
			"<type>SwitchCase</type>",
			"<type>JavaFilter</type>",
			"<type>SIMPLE_EVAL</type>",
			"<type>EVAL</type>",
			"<type>FILE_EXISTS</type>",
			"<unconditional>N</unconditional>",
		},
	},
	Loops: Rule{
		Literals: []string{
			"<type>JobExecutor</type>",
			"<type>TransExecutor</type>",
			"<execute_each_row>Y</execute_each_row>",
			"<type>LoopNodes</type>",
		},
	},
	Functions: Rule{Literals: []string{"<step>", "<entry>"}},
	Classes:   Rule{Patterns: []string{`<(?:transformation|job)>`}},
	Dependencies: Rule{
		Literals: []string{"<type>TRANS</type>", "<type>JOB</type>", "<type>Mapping</type>"},
		Patterns: []string{`<connection>\s*<name>`},
	},
	SQLJoins: Rule{
		Literals: []string{"<type>MergeJoin</type>", "<type>JoinRows</type>", "<type>DBJoin</type>"},
		Patterns: []string{sqlJoinPattern},
	},
	Openers: xmlOpeners,
	Closers: xmlClosers,
}

var otherPatterns = PatternSet{
	Comments: CommentStyle{
		LinePrefixes: []string{"//", "#", "--", ";"},
		BlockStart:   `/\*`,
		BlockEnd:     `\*/`,
	},
	Decisions: Rule{Keywords: []string{"if", "elif", "elsif", "unless", "switch", "case", "when"}},
	Loops:     Rule{Keywords: []string{"for", "foreach", "while", "until", "loop"}},
	Functions: Rule{Patterns: []string{`\b(?:function|def|sub|func|procedure)\s+\w+`}},
	Classes:   Rule{Patterns: []string{`\b(?:class|interface|struct|module)\s+\w+`, `(?m)^\s*package\s+[\w.:]+`}},
	Dependencies: Rule{Patterns: []string{`(?m)^\s*(?:import|use|require|include|from)\b`}},
	SQLJoins: Rule{Patterns: []string{sqlJoinPattern}},
	Openers:  braceOpeners,
	Closers:  braceClosers,
}

// DefaultTables maps each technology to its pattern set.
func DefaultTables() map[schema.Technology]PatternSet {
	return map[schema.Technology]PatternSet{
		schema.PerlTech:    perlPatterns,
		schema.TibcoTech:   tibcoPatterns,
		schema.PentahoTech: pentahoPatterns,
		schema.OtherTech:   otherPatterns,
	}
}
