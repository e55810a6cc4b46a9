package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/internal/parquet"
	"github.com/huangsam/legacylens/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSuggestionResults outputs suggestions in the order given.
func WriteSuggestionResults(suggestions []schema.Suggestion, cfg *contract.Config) error {
	fmtFloat, _ := createFormatters(cfg.Precision)
	if suggestions == nil {
		suggestions = []schema.Suggestion{}
	}
	return render(cfg, renderer{
		data:      suggestions,
		csvHeader: suggestionHeader,
		csvRows: func(w *csv.Writer) error {
			return writeCSVSuggestions(w, suggestions, fmtFloat)
		},
		table: func(w io.Writer) error {
			return writeSuggestionTable(suggestions, cfg, fmtFloat, w)
		},
		parquet: func(path string) error {
			return parquet.WriteSuggestionsParquet(parquet.ConvertSuggestions(suggestions), path)
		},
	})
}

var suggestionHeader = []string{
	"rank", "analysis_id", "type", "severity", "category", "title", "description",
	"fix", "start_line", "end_line", "impact", "effort", "confidence",
}

func writeCSVSuggestions(w *csv.Writer, suggestions []schema.Suggestion, fmtFloat func(float64) string) error {
	for i, s := range suggestions {
		rec := []string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(s.AnalysisID, 10),
			string(s.Type),
			string(s.Severity),
			s.Category,
			s.Title,
			s.Description,
			s.Fix,
			strconv.Itoa(s.StartLine),
			strconv.Itoa(s.EndLine),
			fmtFloat(s.Impact),
			string(s.Effort),
			fmtFloat(s.Confidence),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeSuggestionTable generates and writes the human-readable suggestion table.
func writeSuggestionTable(suggestions []schema.Suggestion, cfg *contract.Config, fmtFloat func(float64) string, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Rank", "Severity", "Type", "Title", "Lines", "Impact", "Effort"})
	table.Configure(func(c *tablewriter.Config) {
		c.Row.Alignment.Global = tw.AlignLeft
	})

	width := maxColumnWidth(cfg, 60)
	var data [][]string
	for i, s := range suggestions {
		severity := string(s.Severity)
		if cfg.UseColors {
			severity = contract.ColorLabel(severity)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			severity,
			string(s.Type),
			truncateText(s.Title, width),
			lineLabel(s.StartLine, s.EndLine),
			fmtFloat(s.Impact),
			string(s.Effort),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d suggestions\n", len(suggestions))
	return err
}

// lineLabel renders an optional line range. Zero means no location.
func lineLabel(start, end int) string {
	switch {
	case start <= 0:
		return "-"
	case end <= start:
		return strconv.Itoa(start)
	default:
		return fmt.Sprintf("%d-%d", start, end)
	}
}

// truncateText shortens free text to maxWidth runes with a trailing ellipsis.
func truncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth || maxWidth <= 3 {
		return s
	}
	return string(runes[:maxWidth-3]) + "..."
}
