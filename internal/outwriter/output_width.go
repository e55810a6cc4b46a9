package outwriter

import (
	"os"

	"github.com/huangsam/legacylens/internal/contract"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	minTextWidth     = 15
	maxTextWidth     = 70
	tableChrome      = 20 // Borders, separators and padding
)

// terminalWidth returns the width override, the detected terminal width or a default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// maxColumnWidth calculates how wide the one free-text column of a table may be
// once reserved columns are accounted for.
func maxColumnWidth(cfg *contract.Config, reserved int) int {
	available := terminalWidth(cfg) - reserved - tableChrome
	return min(max(available, minTextWidth), maxTextWidth)
}
