package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd runs the analysis of ingested files.
var analyzeCmd = &cobra.Command{
	Use:   "analyze <file-id>...",
	Short: "Analyze ingested files and suggest modernization steps",
	Long: `Compute complexity, maintainability, risk and technical debt for ingested files.

When a model provider is configured and reachable, metrics come from the model
and are cross-checked locally. Otherwise, or when the model reply cannot be
recovered, metrics come from language-aware heuristics. Every analysis also
produces rule-based modernization suggestions.

A file that is already ANALYZED returns its latest analysis unless --force is
given, in which case a new analysis is appended to its history.

Examples:
  # Analyze one file and show the scores with suggestions
  legacylens analyze 2b7c6c1e-0d5f-4f0e-9a8e-1f6f6a1d2c3b

  # Re-run the analysis with a model
  legacylens analyze <file-id> --force --model-provider ollama

  # Queue the work on the background pool and return
  legacylens analyze <file-id> --async`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		force := viper.GetBool("force")
		if viper.GetBool("async") {
			states := make([]schema.ProcessingState, 0, len(args))
			for _, fileID := range args {
				if err := engine.AnalyzeAsync(rootCtx, fileID, force); err != nil {
					contract.LogFatal(fmt.Sprintf("Failed to queue analysis of %s", fileID), err)
				}
				state, err := engine.GetStatus(rootCtx, fileID)
				if err != nil {
					contract.LogFatal("Failed to get file status", err)
				}
				states = append(states, state)
			}
			if err := writer.WriteStatus(states, cfg); err != nil {
				contract.LogFatal("Failed to write status", err)
			}
			return
		}

		for _, fileID := range args {
			start := time.Now()
			record, err := engine.Analyze(rootCtx, fileID, force)
			if err != nil {
				contract.LogFatal(fmt.Sprintf("Failed to analyze %s", fileID), err)
			}
			suggestions, err := engine.GetSuggestions(rootCtx, record.ID)
			if err != nil {
				contract.LogFatal("Failed to load suggestions", err)
			}
			if err := writer.WriteAnalysis(record, suggestions, cfg, time.Since(start)); err != nil {
				contract.LogFatal("Failed to write analysis", err)
			}
		}
	},
}

// statusCmd shows processing state.
var statusCmd = &cobra.Command{
	Use:   "status <file-id>...",
	Short: "Show the processing status of ingested files",
	Long: `Display the lifecycle state of one or more files.

States:
- UPLOADED   - stored and waiting for analysis
- PROCESSING - an analysis is running
- ANALYZED   - the latest analysis is available
- FAILED     - the last analysis failed; it can be retried

Examples:
  # Check one file
  legacylens status <file-id>

  # Check several files as JSON
  legacylens status <id-1> <id-2> --output json`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		states := make([]schema.ProcessingState, 0, len(args))
		for _, fileID := range args {
			state, err := engine.GetStatus(rootCtx, fileID)
			if err != nil {
				contract.LogFatal(fmt.Sprintf("Failed to get status of %s", fileID), err)
			}
			states = append(states, state)
		}
		if err := writer.WriteStatus(states, cfg); err != nil {
			contract.LogFatal("Failed to write status", err)
		}
	},
}

// suggestionsCmd lists the suggestions of one analysis.
var suggestionsCmd = &cobra.Command{
	Use:   "suggestions <analysis-id>",
	Short: "List the modernization suggestions of an analysis",
	Long: `Show the suggestions produced by one analysis, most severe first.

Categories include hardcoded credentials, code injection, complexity,
performance and technology migration. Each suggestion carries the line
range it applies to when one is known.

Examples:
  # Show suggestions of analysis 42
  legacylens suggestions 42

  # Export suggestions to Parquet
  legacylens suggestions 42 --output parquet --output-file suggestions.parquet`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		analysisID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			contract.LogFatal("Invalid analysis id", err)
		}
		suggestions, err := engine.GetSuggestions(rootCtx, analysisID)
		if err != nil {
			contract.LogFatal("Failed to get suggestions", err)
		}
		if len(suggestions) > cfg.ResultLimit {
			suggestions = suggestions[:cfg.ResultLimit]
		}
		if err := writer.WriteSuggestions(suggestions, cfg); err != nil {
			contract.LogFatal("Failed to write suggestions", err)
		}
	},
}

// historyCmd lists every analysis of a file.
var historyCmd = &cobra.Command{
	Use:   "history <file-id>",
	Short: "List every analysis of a file, newest first",
	Long: `Show the analysis history of a file.

Forced re-analysis appends to the history instead of replacing it, so this
shows how scores moved between model and heuristic runs or analyzer versions.

Examples:
  # Show the history of a file
  legacylens history <file-id>

  # Export history as CSV
  legacylens history <file-id> --output csv --output-file history.csv`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		records, err := engine.History(rootCtx, args[0])
		if err != nil {
			contract.LogFatal("Failed to get history", err)
		}
		if len(records) > cfg.ResultLimit {
			records = records[:cfg.ResultLimit]
		}
		if err := writer.WriteHistory(records, cfg); err != nil {
			contract.LogFatal("Failed to write history", err)
		}
	},
}

// rankCmd lists the riskiest files.
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank analyzed files by risk score",
	Long: `List the latest analysis of every file, riskiest first.

Use this to decide which legacy files to modernize first. Only the newest
analysis of each file is considered.

Examples:
  # Show the 10 riskiest files
  legacylens rank --limit 10

  # Export the ranking as CSV
  legacylens rank --output csv --output-file ranking.csv`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		records, err := engine.TopRisks(rootCtx, cfg.ResultLimit)
		if err != nil {
			contract.LogFatal("Failed to rank analyses", err)
		}
		if err := writer.WriteHistory(records, cfg); err != nil {
			contract.LogFatal("Failed to write ranking", err)
		}
	},
}
