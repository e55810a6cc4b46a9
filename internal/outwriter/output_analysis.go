package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/internal/parquet"
	"github.com/huangsam/legacylens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// analysisOutput is the structured form of one analysis.
type analysisOutput struct {
	Analysis    schema.AnalysisRecord `json:"analysis" yaml:"analysis"`
	Suggestions []schema.Suggestion   `json:"suggestions" yaml:"suggestions"`
}

// WriteAnalysisResult outputs one analysis with its suggestions.
func WriteAnalysisResult(record schema.AnalysisRecord, suggestions []schema.Suggestion, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	if suggestions == nil {
		suggestions = []schema.Suggestion{}
	}
	return render(cfg, renderer{
		data:      analysisOutput{Analysis: record, Suggestions: suggestions},
		csvHeader: []string{"metric", "value"},
		csvRows: func(w *csv.Writer) error {
			return w.WriteAll(analysisPairs(record, fmtFloat, intFmt))
		},
		table: func(w io.Writer) error {
			return writeAnalysisTable(record, suggestions, cfg, fmtFloat, intFmt, duration, w)
		},
		parquet: func(path string) error {
			return parquet.WriteAnalysesParquet(parquet.ConvertAnalysisRecords([]schema.AnalysisRecord{record}), path)
		},
	})
}

// analysisPairs flattens a record into metric/value rows shared by the table and CSV forms.
func analysisPairs(r schema.AnalysisRecord, fmtFloat func(float64) string, intFmt string) [][]string {
	m := r.Metrics
	return [][]string{
		{"analysis_id", strconv.FormatInt(r.ID, 10)},
		{"file_id", r.FileID},
		{"technology", string(r.Technology)},
		{"provenance", string(r.Provenance)},
		{"total_lines", fmt.Sprintf(intFmt, m.TotalLines)},
		{"code_lines", fmt.Sprintf(intFmt, m.CodeLines)},
		{"comment_lines", fmt.Sprintf(intFmt, m.CommentLines)},
		{"blank_lines", fmt.Sprintf(intFmt, m.BlankLines)},
		{"cyclomatic_complexity", fmt.Sprintf(intFmt, m.CyclomaticComplexity)},
		{"nesting_depth", fmt.Sprintf(intFmt, m.NestingDepth)},
		{"function_count", fmt.Sprintf(intFmt, m.FunctionCount)},
		{"class_count", fmt.Sprintf(intFmt, m.ClassCount)},
		{"loop_count", fmt.Sprintf(intFmt, m.LoopCount)},
		{"conditional_count", fmt.Sprintf(intFmt, m.ConditionalCount)},
		{"sql_join_count", fmt.Sprintf(intFmt, m.SQLJoinCount)},
		{"dependency_count", fmt.Sprintf(intFmt, m.DependencyCount)},
		{"maintainability_index", fmtFloat(r.MaintainabilityIndex)},
		{"risk_score", fmtFloat(r.RiskScore)},
		{"complexity_level", string(r.ComplexityLevel)},
		{"risk_level", string(r.RiskLevel)},
		{"debt_points", fmtFloat(r.TechnicalDebt.Points)},
		{"debt_hours", fmtFloat(r.TechnicalDebt.Hours)},
		{"debt_category", string(r.TechnicalDebt.Category)},
		{"quality_score", fmtFloat(r.QualityScore)},
		{"issues", strconv.Itoa(len(r.Issues))},
		{"analyzer_version", r.AnalyzerVersion},
		{"created_at", r.CreatedAt.Format(contract.DateTimeFormat)},
	}
}

// colorPairs returns the label cells of a pair list with band colors applied.
func colorPairs(pairs [][]string) [][]string {
	out := make([][]string, len(pairs))
	for i, p := range pairs {
		switch p[0] {
		case "complexity_level", "risk_level", "debt_category":
			out[i] = []string{p[0], contract.ColorLabel(p[1])}
		default:
			out[i] = p
		}
	}
	return out
}

// writeAnalysisTable writes the metrics table, the issues table and the suggestions table.
func writeAnalysisTable(record schema.AnalysisRecord, suggestions []schema.Suggestion, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Metric", "Value"})
	pairs := analysisPairs(record, fmtFloat, intFmt)
	if cfg.UseColors {
		pairs = colorPairs(pairs)
	}
	if err := table.Bulk(pairs); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(record.Issues) > 0 {
		if err := writeIssueTable(record.Issues, cfg, writer); err != nil {
			return err
		}
	}
	if err := writeSuggestionTable(suggestions, cfg, fmtFloat, writer); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Analysis %d (%s) completed in %v. Store backend: %s\n", record.ID, record.Provenance, duration, cfg.DBBackend); err != nil {
		return err
	}
	return nil
}

// writeIssueTable lists model sub-scan findings.
func writeIssueTable(issues []schema.Issue, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Line", "Severity", "Rule", "Message"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})
	width := maxColumnWidth(cfg, 35)
	var data [][]string
	for _, issue := range issues {
		severity := string(issue.Severity)
		if cfg.UseColors {
			severity = contract.ColorLabel(severity)
		}
		data = append(data, []string{
			lineLabel(issue.Line, issue.Line),
			severity,
			string(issue.Rule),
			truncateText(issue.Message, width),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// WriteHistoryResults outputs analysis records in the given order, such as a
// file history or a risk ranking.
func WriteHistoryResults(records []schema.AnalysisRecord, cfg *contract.Config) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)
	if records == nil {
		records = []schema.AnalysisRecord{}
	}
	return render(cfg, renderer{
		data:      records,
		csvHeader: historyHeader,
		csvRows: func(w *csv.Writer) error {
			for _, r := range records {
				if err := w.Write(historyRow(r, fmtFloat, intFmt)); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			return writeHistoryTable(records, cfg, fmtFloat, intFmt, w)
		},
		parquet: func(path string) error {
			return parquet.WriteAnalysesParquet(parquet.ConvertAnalysisRecords(records), path)
		},
	})
}

var historyHeader = []string{
	"analysis_id", "file_id", "created_at", "provenance", "complexity", "maintainability",
	"risk", "complexity_level", "debt_hours", "quality",
}

func historyRow(r schema.AnalysisRecord, fmtFloat func(float64) string, intFmt string) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.FileID,
		r.CreatedAt.Format(contract.DateTimeFormat),
		string(r.Provenance),
		fmt.Sprintf(intFmt, r.Metrics.CyclomaticComplexity),
		fmtFloat(r.MaintainabilityIndex),
		fmtFloat(r.RiskScore),
		string(r.ComplexityLevel),
		fmtFloat(r.TechnicalDebt.Hours),
		fmtFloat(r.QualityScore),
	}
}

func writeHistoryTable(records []schema.AnalysisRecord, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"ID", "File", "Created", "Source", "CC", "MI", "Risk", "Level", "Debt (h)", "Quality"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignRight
	})
	var data [][]string
	for _, r := range records {
		row := historyRow(r, fmtFloat, intFmt)
		if cfg.UseColors {
			row[7] = contract.ColorLabel(row[7])
		}
		data = append(data, row)
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d analyses\n", len(records))
	return err
}
