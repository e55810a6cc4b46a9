package core

import (
	"fmt"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
)

// transitions lists the legal moves of the processing state machine.
// DUPLICATE is an ingest outcome and has no entry.
var transitions = map[schema.ProcessingStatus][]schema.ProcessingStatus{
	schema.StatusUploaded:   {schema.StatusProcessing},
	schema.StatusProcessing: {schema.StatusAnalyzed, schema.StatusFailed},
	schema.StatusAnalyzed:   {schema.StatusProcessing},
	schema.StatusFailed:     {schema.StatusProcessing},
}

// Transition validates a status change and returns ErrInvalidTransition when it is not allowed.
func Transition(from, to schema.ProcessingStatus) error {
	for _, next := range transitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", contract.ErrInvalidTransition, from, to)
}
