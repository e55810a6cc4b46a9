package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/legacylens/core"
	"github.com/huangsam/legacylens/internal/blob"
	"github.com/huangsam/legacylens/internal/contract"
	mcp_internal "github.com/huangsam/legacylens/internal/mcp"
	"github.com/huangsam/legacylens/internal/persist"
	"github.com/huangsam/legacylens/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const credentialScript = "use strict;\nmy $user = 'etl';\nmy $password = \"abc123\";\nprint $user;\n"

func newTestServer(t *testing.T) *server.MCPServer {
	t.Helper()
	return newServerWithConfig(t, &contract.Config{ResultLimit: 25, Workers: 1, QueueSize: 4, FingerprintAlgo: schema.SHA256Algo})
}

func newServerWithConfig(t *testing.T, cfg *contract.Config) *server.MCPServer {
	t.Helper()
	store, err := persist.NewSQLStore(schema.NoneBackend, "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine := core.NewEngine(cfg, persist.NewStoreManager(store), blob.NewMemStore(), nil)
	if cfg.AutoAnalyze {
		engine.Start(context.Background())
		t.Cleanup(engine.Close)
	}
	return mcp_internal.NewMCPServer(cfg, engine)
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerWorkflow(t *testing.T) {
	s := newTestServer(t)

	res := callTool(t, s, "ingest_file", map[string]any{
		"filename": "creds.pl",
		"content":  credentialScript,
		"analyze":  true,
	})
	require.False(t, res.IsError, resultText(t, res))

	var ingested struct {
		FileID   string `json:"file_id"`
		Outcome  string `json:"outcome"`
		Analysis struct {
			Analysis    schema.AnalysisRecord `json:"analysis"`
			Suggestions []schema.Suggestion   `json:"suggestions"`
		} `json:"analysis"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ingested))
	assert.Equal(t, "uploaded", ingested.Outcome)
	assert.Equal(t, schema.PerlTech, ingested.Analysis.Analysis.Technology)
	require.NotEmpty(t, ingested.Analysis.Suggestions)
	assert.Equal(t, "credentials", ingested.Analysis.Suggestions[0].Category)
	assert.Equal(t, 3, ingested.Analysis.Suggestions[0].StartLine)

	res = callTool(t, s, "get_status", map[string]any{"file_id": ingested.FileID})
	require.False(t, res.IsError)
	var state schema.ProcessingState
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &state))
	assert.Equal(t, schema.StatusAnalyzed, state.Status)
	assert.Equal(t, ingested.Analysis.Analysis.ID, state.LatestAnalysisID)

	res = callTool(t, s, "get_suggestions", map[string]any{
		"analysis_id": float64(state.LatestAnalysisID),
		"limit":       1.0,
	})
	require.False(t, res.IsError)
	var suggestions []schema.Suggestion
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &suggestions))
	require.Len(t, suggestions, 1)
	assert.Equal(t, schema.CriticalSeverity, suggestions[0].Severity)

	res = callTool(t, s, "analyze_file", map[string]any{"file_id": ingested.FileID, "force": true})
	require.False(t, res.IsError)

	res = callTool(t, s, "get_history", map[string]any{"file_id": ingested.FileID})
	require.False(t, res.IsError)
	var history []schema.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &history))
	assert.Len(t, history, 2)

	res = callTool(t, s, "get_top_risks", map[string]any{"limit": 5.0})
	require.False(t, res.IsError)
	var ranked []schema.AnalysisRecord
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ranked))
	require.Len(t, ranked, 1, "Only the latest analysis of each file is ranked")
	assert.Equal(t, history[0].ID, ranked[0].ID)

	res = callTool(t, s, "ingest_file", map[string]any{"filename": "again.pl", "content": credentialScript})
	require.False(t, res.IsError)
	assert.Contains(t, resultText(t, res), `"outcome": "duplicate"`)
}

func TestMCPServerIngestWithAutoAnalyze(t *testing.T) {
	s := newServerWithConfig(t, &contract.Config{
		ResultLimit: 25, Workers: 2, QueueSize: 4, AutoAnalyze: true, FingerprintAlgo: schema.SHA256Algo,
	})

	for _, name := range []string{"creds.pl", "again.pl"} {
		res := callTool(t, s, "ingest_file", map[string]any{
			"filename": name,
			"content":  credentialScript,
			"analyze":  true,
		})
		require.False(t, res.IsError, resultText(t, res))
		assert.Contains(t, resultText(t, res), `"credentials"`)
	}
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		expected string
	}{
		{"ingest missing filename", "ingest_file", map[string]any{"content": "x"}, "filename is required"},
		{"ingest missing content", "ingest_file", map[string]any{"filename": "a.pl"}, "content is required"},
		{"analyze missing id", "analyze_file", map[string]any{}, "file_id is required"},
		{"analyze unknown id", "analyze_file", map[string]any{"file_id": "nope"}, "not found"},
		{"status unknown id", "get_status", map[string]any{"file_id": "nope"}, "not found"},
		{"suggestions bad id", "get_suggestions", map[string]any{"analysis_id": 0.0}, "positive number"},
		{"suggestions unknown id", "get_suggestions", map[string]any{"analysis_id": 99.0}, "not found"},
		{"history missing id", "get_history", map[string]any{}, "file_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, s, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.expected)
		})
	}
}
