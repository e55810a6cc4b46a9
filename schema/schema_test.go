package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityWeight(t *testing.T) {
	tests := []struct {
		severity Severity
		expected int
	}{
		{CriticalSeverity, 4},
		{HighSeverity, 3},
		{MediumSeverity, 2},
		{LowSeverity, 1},
		{Severity("bogus"), 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.severity), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.Weight())
		})
	}
}

func TestSeverityWeightIsOrdered(t *testing.T) {
	assert.Greater(t, CriticalSeverity.Weight(), HighSeverity.Weight())
	assert.Greater(t, HighSeverity.Weight(), MediumSeverity.Weight())
	assert.Greater(t, MediumSeverity.Weight(), LowSeverity.Weight())
}

func TestProcessingStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusUploaded.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusAnalyzed.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusDuplicate.IsTerminal())
}
