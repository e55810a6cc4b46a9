package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Label constants shared by severities, complexity, risk and debt bands.
const (
	CriticalValue = "critical"
	HighValue     = "high"
	MediumValue   = "medium"
	LowValue      = "low"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // criticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // highColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // mediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // lowColor represents informational / low-priority signal.
)

// ColorLabel returns a colored label for console output (table). Any of the
// four band names is accepted; other text is returned unchanged.
func ColorLabel(label string) string {
	switch strings.ToLower(label) {
	case CriticalValue:
		return CriticalColor.Sprint(label)
	case HighValue:
		return HighColor.Sprint(label)
	case MediumValue:
		return MediumColor.Sprint(label)
	case LowValue:
		return LowColor.Sprint(label)
	default:
		return label
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// ShouldIgnore returns true if the given path matches any of the exclude patterns.
// Patterns with wildcard characters use filepath.Match against the path and its base name.
// Patterns ending with '/' are prefixes; patterns starting with '.' are suffixes.
// Anything else matches as a substring.
func ShouldIgnore(path string, excludes []string) bool {
	for _, ex := range excludes {
		ex = strings.TrimSpace(ex)
		if ex == "" {
			continue
		}

		if strings.ContainsAny(ex, "*?[") {
			pat := strings.ReplaceAll(ex, "**", "*")
			if ok, err := filepath.Match(pat, path); err == nil && ok {
				return true
			}
			if ok, err := filepath.Match(pat, filepath.Base(path)); err == nil && ok {
				return true
			}
			continue
		}

		switch {
		case strings.HasSuffix(ex, "/"):
			if strings.HasPrefix(path, ex) || strings.Contains(path, "/"+ex) {
				return true
			}
		case strings.HasPrefix(ex, "."):
			if strings.HasSuffix(path, ex) {
				return true
			}
		case strings.Contains(path, ex):
			return true
		}
	}
	return false
}

// dataDir returns ~/.legacylens, or the working directory when home is unknown.
func dataDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".legacylens"
	}
	return filepath.Join(homeDir, ".legacylens")
}

// GetDBFilePath returns the path to the SQLite DB file.
func GetDBFilePath() string {
	return filepath.Join(dataDir(), "legacylens.db")
}

// GetContentDir returns the default root of the content store.
func GetContentDir() string {
	return filepath.Join(dataDir(), "content")
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix.
// Requires maxWidth > 3 to ensure there's space for both the "..." prefix and at least one character of content.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
