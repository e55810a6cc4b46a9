package core

import (
	"testing"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		from, to schema.ProcessingStatus
		ok       bool
	}{
		{schema.StatusUploaded, schema.StatusProcessing, true},
		{schema.StatusProcessing, schema.StatusAnalyzed, true},
		{schema.StatusProcessing, schema.StatusFailed, true},
		{schema.StatusAnalyzed, schema.StatusProcessing, true},
		{schema.StatusFailed, schema.StatusProcessing, true},
		{schema.StatusUploaded, schema.StatusAnalyzed, false},
		{schema.StatusProcessing, schema.StatusProcessing, false},
		{schema.StatusAnalyzed, schema.StatusFailed, false},
		{schema.StatusDuplicate, schema.StatusProcessing, false},
		{schema.StatusFailed, schema.StatusUploaded, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := Transition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, contract.ErrInvalidTransition)
			}
		})
	}
}
