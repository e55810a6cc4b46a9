package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/olekukonko/tablewriter"
)

// Status colors for console output.
var (
	analyzedColor   = color.New(color.FgGreen)
	failedColor     = color.New(color.FgRed, color.Bold)
	processingColor = color.New(color.FgYellow)
	uploadedColor   = color.New(color.FgCyan)
)

// shortFingerprintLen is how much of a fingerprint the tables show.
const shortFingerprintLen = 12

// statusLabel colors a processing status for table output.
func statusLabel(status schema.ProcessingStatus, useColors bool) string {
	if !useColors {
		return string(status)
	}
	switch status {
	case schema.StatusAnalyzed:
		return analyzedColor.Sprint(status)
	case schema.StatusFailed:
		return failedColor.Sprint(status)
	case schema.StatusProcessing:
		return processingColor.Sprint(status)
	case schema.StatusUploaded:
		return uploadedColor.Sprint(status)
	default:
		return string(status)
	}
}

func shortFingerprint(fp string) string {
	if len(fp) <= shortFingerprintLen {
		return fp
	}
	return fp[:shortFingerprintLen]
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}

// WriteIngestResults outputs the outcome of every ingested file.
func WriteIngestResults(results []schema.IngestResult, cfg *contract.Config, duration time.Duration) error {
	if results == nil {
		results = []schema.IngestResult{}
	}
	return render(cfg, renderer{
		data:      results,
		csvHeader: []string{"filename", "file_id", "outcome", "technology", "fingerprint"},
		csvRows: func(w *csv.Writer) error {
			for _, r := range results {
				if err := w.Write([]string{r.Filename, r.FileID, string(r.Outcome), string(r.Technology), r.Fingerprint}); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			return writeIngestTable(results, cfg, duration, w)
		},
	})
}

func writeIngestTable(results []schema.IngestResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Filename", "File ID", "Outcome", "Technology", "Fingerprint"})

	width := maxColumnWidth(cfg, 80)
	uploaded := 0
	var data [][]string
	for _, r := range results {
		if r.Outcome == schema.UploadedOutcome {
			uploaded++
		}
		data = append(data, []string{
			contract.TruncatePath(r.Filename, width),
			r.FileID,
			string(r.Outcome),
			string(r.Technology),
			shortFingerprint(r.Fingerprint),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Ingested %d files (%d new, %d duplicate) in %v\n", len(results), uploaded, len(results)-uploaded, duration)
	return err
}

// WriteFileResults outputs ingested files.
func WriteFileResults(files []schema.SourceFile, cfg *contract.Config) error {
	if files == nil {
		files = []schema.SourceFile{}
	}
	return render(cfg, renderer{
		data:      files,
		csvHeader: []string{"file_id", "filename", "technology", "status", "size", "fingerprint", "created_at", "updated_at", "failed_at", "error"},
		csvRows: func(w *csv.Writer) error {
			for _, f := range files {
				rec := []string{
					f.ID,
					f.Filename,
					string(f.Technology),
					string(f.Status),
					strconv.FormatInt(f.Size, 10),
					f.Fingerprint,
					f.CreatedAt.Format(contract.DateTimeFormat),
					f.UpdatedAt.Format(contract.DateTimeFormat),
					formatOptionalTime(f.FailedAt),
					f.ErrorMessage,
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			return writeFileTable(files, cfg, w)
		},
	})
}

func writeFileTable(files []schema.SourceFile, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"File ID", "Filename", "Technology", "Status", "Size", "Updated"})

	width := maxColumnWidth(cfg, 90)
	var data [][]string
	for _, f := range files {
		data = append(data, []string{
			f.ID,
			contract.TruncatePath(f.Filename, width),
			string(f.Technology),
			statusLabel(f.Status, cfg.UseColors),
			strconv.FormatInt(f.Size, 10),
			f.UpdatedAt.Format(contract.DateTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Showing %d files\n", len(files))
	return err
}

// WriteStatusResults outputs processing states.
func WriteStatusResults(states []schema.ProcessingState, cfg *contract.Config) error {
	if states == nil {
		states = []schema.ProcessingState{}
	}
	return render(cfg, renderer{
		data:      states,
		csvHeader: []string{"file_id", "filename", "status", "latest_analysis_id", "updated_at", "failed_at", "error"},
		csvRows: func(w *csv.Writer) error {
			for _, s := range states {
				rec := []string{
					s.FileID,
					s.Filename,
					string(s.Status),
					strconv.FormatInt(s.LatestAnalysisID, 10),
					s.UpdatedAt.Format(contract.DateTimeFormat),
					formatOptionalTime(s.FailedAt),
					s.ErrorMessage,
				}
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			return nil
		},
		table: func(w io.Writer) error {
			return writeStatusTable(states, cfg, w)
		},
	})
}

func writeStatusTable(states []schema.ProcessingState, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"File ID", "Filename", "Status", "Analysis", "Updated", "Error"})

	width := maxColumnWidth(cfg, 100)
	var data [][]string
	for _, s := range states {
		analysis := "-"
		if s.LatestAnalysisID > 0 {
			analysis = strconv.FormatInt(s.LatestAnalysisID, 10)
		}
		data = append(data, []string{
			s.FileID,
			contract.TruncatePath(s.Filename, width),
			statusLabel(s.Status, cfg.UseColors),
			analysis,
			s.UpdatedAt.Format(contract.DateTimeFormat),
			truncateText(s.ErrorMessage, width),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
