package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestParseFindings(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []schema.Issue
	}{
		{
			name:     "none",
			text:     "None.",
			expected: nil,
		},
		{
			name: "numbered lines",
			text: "Line 12: eval of user input\nLine 40 - shell command built from a variable",
			expected: []schema.Issue{
				{Line: 12, Severity: schema.HighSeverity, Message: "eval of user input", Rule: schema.SecurityRule},
				{Line: 40, Severity: schema.HighSeverity, Message: "shell command built from a variable", Rule: schema.SecurityRule},
			},
		},
		{
			name: "bullets and markdown",
			text: "- **Line 3: hardcoded password**\n* general concern\n\n",
			expected: []schema.Issue{
				{Line: 3, Severity: schema.HighSeverity, Message: "hardcoded password", Rule: schema.SecurityRule},
				{Line: 0, Severity: schema.HighSeverity, Message: "general concern", Rule: schema.SecurityRule},
			},
		},
		{
			name: "critical escalates",
			text: "1. Line 7: critical SQL injection",
			expected: []schema.Issue{
				{Line: 7, Severity: schema.CriticalSeverity, Message: "critical SQL injection", Rule: schema.SecurityRule},
			},
		},
		{
			name:     "empty message skipped",
			text:     "Line 9:",
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseFindings(tt.text, schema.SecurityRule, schema.HighSeverity))
		})
	}
}

func TestRunSubScans(t *testing.T) {
	client := &contract.MockModelClient{}
	client.On("Name").Return("mock")
	client.On("Generate", mock.Anything, securityPrompt(schema.PerlTech), "code").
		Return("Line 2: eval of input", nil)
	client.On("Generate", mock.Anything, refactoringPrompt(schema.PerlTech), "code").
		Return("Line 5: long routine", nil)

	o := NewOrchestrator(client, 0, 0, quietLogger())
	issues := o.runSubScans(context.Background(), "code", schema.PerlTech)

	assert.Equal(t, []schema.Issue{
		{Line: 2, Severity: schema.HighSeverity, Message: "eval of input", Rule: schema.SecurityRule},
		{Line: 5, Severity: schema.MediumSeverity, Message: "long routine", Rule: schema.RefactoringRule},
	}, issues)
	client.AssertExpectations(t)
}

func TestRunSubScansToleratesFailure(t *testing.T) {
	client := &contract.MockModelClient{}
	client.On("Name").Return("mock")
	client.On("Generate", mock.Anything, securityPrompt(schema.TibcoTech), mock.Anything).
		Return("", errors.New("timeout"))
	client.On("Generate", mock.Anything, refactoringPrompt(schema.TibcoTech), mock.Anything).
		Return("Line 1: deep nesting", nil)

	o := NewOrchestrator(client, 0, 0, quietLogger())
	issues := o.runSubScans(context.Background(), "<xml/>", schema.TibcoTech)

	assert.Len(t, issues, 1)
	assert.Equal(t, schema.RefactoringRule, issues[0].Rule)
}
