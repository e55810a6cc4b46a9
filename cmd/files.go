package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// fileFilter builds the listing filter from flags.
func fileFilter() (schema.FileListFilter, error) {
	filter := schema.FileListFilter{Limit: cfg.ResultLimit}
	if raw := viper.GetString("status"); raw != "" {
		status := schema.ProcessingStatus(strings.ToUpper(raw))
		switch status {
		case schema.StatusUploaded, schema.StatusProcessing, schema.StatusAnalyzed, schema.StatusFailed:
			filter.Status = status
		default:
			return filter, fmt.Errorf("invalid status '%s'. must be uploaded, processing, analyzed, failed", raw)
		}
	}
	if raw := viper.GetString("technology"); raw != "" {
		tech := schema.Technology(strings.ToLower(raw))
		switch tech {
		case schema.PerlTech, schema.TibcoTech, schema.PentahoTech, schema.OtherTech:
			filter.Technology = tech
		default:
			return filter, fmt.Errorf("invalid technology '%s'. must be perl, tibco, pentaho, other", raw)
		}
	}
	return filter, nil
}

// filesCmd lists ingested files.
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List ingested files, newest first",
	Long: `List the files known to the store with their technology and status.

Filter by lifecycle status or technology to find work that is pending or
failed.

Examples:
  # Show the 25 newest files
  legacylens files

  # Show failed Pentaho files
  legacylens files --status failed --technology pentaho

  # Show everything waiting for analysis as YAML
  legacylens files --status uploaded --limit 1000 --output yaml`,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		filter, err := fileFilter()
		if err != nil {
			contract.LogFatal("Invalid filter", err)
		}
		files, err := engine.ListFiles(rootCtx, filter)
		if err != nil {
			contract.LogFatal("Failed to list files", err)
		}
		if err := writer.WriteFiles(files, cfg); err != nil {
			contract.LogFatal("Failed to write files", err)
		}
	},
}
