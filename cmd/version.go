package cmd

import (
	"runtime"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of legacylens.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash
- Build timestamp
- Analyzer version stamped on every analysis
- Go runtime version`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("legacylens CLI\n")
		cmd.Printf("  Version:  %s\n", version)
		cmd.Printf("  Commit:   %s\n", commit)
		cmd.Printf("  Built:    %s\n", date)
		cmd.Printf("  Analyzer: %s\n", contract.AnalyzerVersion)
		cmd.Printf("  Runtime:  %s\n", runtime.Version())
	},
}
