package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// stdinPath is the argument that reads content from standard input.
const stdinPath = "-"

// collectPaths expands directories into the regular files below them.
func collectPaths(args, excludes []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if arg == stdinPath {
			paths = append(paths, arg)
			continue
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			if !contract.ShouldIgnore(arg, excludes) {
				paths = append(paths, arg)
			}
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if contract.ShouldIgnore(path, excludes) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.Type().IsRegular() {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
		}
	}
	return paths, nil
}

// readSource loads one path, reading stdin for "-".
func readSource(path, stdinName string) (string, []byte, error) {
	if path == stdinPath {
		content, err := io.ReadAll(io.LimitReader(os.Stdin, contract.MaxContentBytes+1))
		return stdinName, content, err
	}
	content, err := os.ReadFile(path)
	return filepath.Base(path), content, err
}

// runIngest ingests every path, analyzing new uploads when analyze is set.
func runIngest(paths []string, analyze bool) ([]schema.IngestResult, error) {
	stdinName := viper.GetString("name")
	results := make([]schema.IngestResult, 0, len(paths))
	var failed []error
	for _, path := range paths {
		name, content, err := readSource(path, stdinName)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		res, err := engine.Ingest(rootCtx, name, content)
		if err != nil {
			contract.Logger.WithField("path", path).WithError(err).Warn("Ingest failed")
			failed = append(failed, fmt.Errorf("%s: %w", path, err))
			continue
		}
		if analyze && res.Outcome == schema.UploadedOutcome && !cfg.AutoAnalyze {
			if _, err := engine.Analyze(rootCtx, res.FileID, false); err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", path, err))
			}
		}
		results = append(results, res)
	}

	// Queued uploads run on the pool; wait for them and pick up any the full
	// queue turned away.
	if analyze && cfg.AutoAnalyze {
		for _, res := range results {
			if res.Outcome != schema.UploadedOutcome {
				continue
			}
			if _, err := engine.Await(rootCtx, res.FileID); err != nil {
				failed = append(failed, fmt.Errorf("%s: %w", res.Filename, err))
			}
		}
	}
	return results, errors.Join(failed...)
}

// ingestCmd uploads legacy source files.
var ingestCmd = &cobra.Command{
	Use:   "ingest <path>...",
	Short: "Upload legacy source files for analysis",
	Long: `Store one or more legacy source files and register them for analysis.

Each file is fingerprinted by content. Uploading the same content twice,
under any name, returns the original file with a DUPLICATE outcome and
never triggers a second analysis.

New uploads are queued for background analysis right away, and the command
finishes queued analyses before it exits. Pass --auto-analyze=false to only
store the files; --analyze then analyzes them one at a time.

Directories are walked recursively. Use --exclude to skip paths and "-"
to read a single file from standard input.

Examples:
  # Ingest a Perl script
  legacylens ingest scripts/billing.pl

  # Ingest a TIBCO project, skipping build output
  legacylens ingest projects/orders --exclude "build/,*.bak"

  # Ingest and analyze immediately
  legacylens ingest etl/load_customers.ktr --analyze

  # Read from stdin
  cat job.kjb | legacylens ingest - --name job.kjb`,
	Args:    cobra.MinimumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		start := time.Now()
		var excludes []string
		if raw := viper.GetString("exclude"); raw != "" {
			excludes = strings.Split(raw, ",")
		}
		paths, err := collectPaths(args, excludes)
		if err != nil {
			contract.LogFatal("Failed to collect files", err)
		}

		results, ingestErr := runIngest(paths, viper.GetBool("analyze"))
		if err := writer.WriteIngest(results, cfg, time.Since(start)); err != nil {
			contract.LogFatal("Failed to write ingest results", err)
		}
		if ingestErr != nil {
			contract.LogWarn("Some files were not ingested", ingestErr)
		}
	},
}
