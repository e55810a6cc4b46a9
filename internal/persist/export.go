package persist

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/internal/parquet"
)

// ExecuteExport writes every analysis and suggestion in store to Parquet files
// named after outputFile, reporting progress to w.
func ExecuteExport(ctx context.Context, store contract.AnalysisStore, outputFile string, w io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis store is not initialized")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalAnalyses == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analyses: %d\n", status.TotalAnalyses)
	_, _ = fmt.Fprintf(w, "Total suggestions: %d\n", status.TableSizes[suggestionsTable])

	analyses, err := store.AllAnalyses(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve analyses: %w", err)
	}
	suggestions, err := store.AllSuggestions(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve suggestions: %w", err)
	}

	analysesFile := outputFile + ".analyses.parquet"
	if err := parquet.WriteAnalysesParquet(parquet.ConvertAnalysisRecords(analyses), analysesFile); err != nil {
		return fmt.Errorf("failed to write analyses: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analyses to: %s\n", len(analyses), analysesFile)

	suggestionsFile := outputFile + ".suggestions.parquet"
	if err := parquet.WriteSuggestionsParquet(parquet.ConvertSuggestions(suggestions), suggestionsFile); err != nil {
		return fmt.Errorf("failed to write suggestions: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d suggestions to: %s\n", len(suggestions), suggestionsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be used with:")
	_, _ = fmt.Fprintln(w, "  - DuckDB")
	_, _ = fmt.Fprintln(w, "  - Pandas (via pyarrow)")
	_, _ = fmt.Fprintln(w, "  - Any other Parquet-compatible tool")
	return nil
}
