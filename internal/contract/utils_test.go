package contract

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColorLabel(t *testing.T) {
	for _, label := range []string{CriticalValue, HighValue, MediumValue, LowValue} {
		t.Run(label, func(t *testing.T) {
			colored := ColorLabel(label)
			assert.Contains(t, colored, label)
		})
	}
	assert.Equal(t, "other", ColorLabel("other"))
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path returns stdout", func(t *testing.T) {
		file, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, file)
	})

	t.Run("valid path creates file", func(t *testing.T) {
		tempFile := filepath.Join(t.TempDir(), "test_output.txt")

		file, err := SelectOutputFile(tempFile)
		require.NoError(t, err)
		assert.NotNil(t, file)
		_ = file.Close()

		_, err = os.Stat(tempFile)
		assert.NoError(t, err)
	})
}

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		excludes   []string
		wantIgnore bool
	}{
		{
			name:       "empty excludes",
			path:       "lib/Billing.pm",
			excludes:   []string{},
			wantIgnore: false,
		},
		{
			name:       "prefix match",
			path:       "backup/lib/Billing.pm",
			excludes:   []string{"backup/"},
			wantIgnore: true,
		},
		{
			name:       "nested directory match",
			path:       "etl/archive/old.ktr",
			excludes:   []string{"archive/"},
			wantIgnore: true,
		},
		{
			name:       "suffix match",
			path:       "processes/Orders.process.bak",
			excludes:   []string{".bak"},
			wantIgnore: true,
		},
		{
			name:       "glob match basename",
			path:       "t/unit.t",
			excludes:   []string{"*.t"},
			wantIgnore: true,
		},
		{
			name:       "substring match",
			path:       "src/generated/Schema.pm",
			excludes:   []string{"generated"},
			wantIgnore: true,
		},
		{
			name:       "no match",
			path:       "etl/load_customers.ktr",
			excludes:   []string{"backup/", ".bak", "*.t"},
			wantIgnore: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantIgnore, ShouldIgnore(tt.path, tt.excludes))
		})
	}
}

func TestGetDBFilePath(t *testing.T) {
	path := GetDBFilePath()
	assert.NotEmpty(t, path)
	assert.True(t, strings.HasSuffix(path, "legacylens.db"))

	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, homeDir), "path %s should start with home dir %s", path, homeDir)
}

func TestGetContentDir(t *testing.T) {
	assert.True(t, strings.HasSuffix(GetContentDir(), filepath.Join(".legacylens", "content")))
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.pl", TruncatePath("short.pl", 20))
	assert.Equal(t, "...ng/path/file.pl", TruncatePath("a/very/long/path/file.pl", 18))
	assert.Equal(t, "abcdef", TruncatePath("abcdef", 3))
}

func TestParseBoolString(t *testing.T) {
	for _, s := range []string{"yes", "TRUE", "1"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.True(t, v)
	}
	for _, s := range []string{"no", "False", "0"} {
		v, err := ParseBoolString(s)
		require.NoError(t, err)
		assert.False(t, v)
	}
	_, err := ParseBoolString("maybe")
	assert.Error(t, err)
}
