package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	engine  Engine
}

// analysisResult is what analyze_file returns.
type analysisResult struct {
	Analysis    schema.AnalysisRecord `json:"analysis"`
	Suggestions []schema.Suggestion   `json:"suggestions"`
}

// ingestResult is what ingest_file returns.
type ingestResult struct {
	schema.IngestResult
	Analysis *analysisResult `json:"analysis,omitempty"`
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// errorResult turns an engine error into a tool error. Unknown IDs are reported plainly.
func errorResult(action string, err error) *mcp.CallToolResult {
	if errors.Is(err, contract.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("%s: not found: %v", action, err))
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err))
}

func (h *toolHandler) analyze(ctx context.Context, fileID string, force bool) (*analysisResult, error) {
	record, err := h.engine.Analyze(ctx, fileID, force)
	if err != nil {
		return nil, err
	}
	return h.withSuggestions(ctx, record)
}

func (h *toolHandler) withSuggestions(ctx context.Context, record schema.AnalysisRecord) (*analysisResult, error) {
	suggestions, err := h.engine.GetSuggestions(ctx, record.ID)
	if err != nil {
		return nil, err
	}
	return &analysisResult{Analysis: record, Suggestions: suggestions}, nil
}

func (h *toolHandler) handleIngestFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename := request.GetString("filename", "")
	content := request.GetString("content", "")
	if filename == "" {
		return mcp.NewToolResultError("filename is required"), nil
	}
	if content == "" {
		return mcp.NewToolResultError("content is required"), nil
	}

	res, err := h.engine.Ingest(ctx, filename, []byte(content))
	if err != nil {
		return errorResult("ingestion", err), nil
	}
	out := ingestResult{IngestResult: res}
	if request.GetBool("analyze", false) {
		// The pool may already own the file when auto-analyze is on.
		record, err := h.engine.Await(ctx, res.FileID)
		if err != nil {
			return errorResult("analysis", err), nil
		}
		analysis, err := h.withSuggestions(ctx, record)
		if err != nil {
			return errorResult("analysis", err), nil
		}
		out.Analysis = analysis
	}
	return jsonResult(out)
}

func (h *toolHandler) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID := request.GetString("file_id", "")
	if fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}
	analysis, err := h.analyze(ctx, fileID, request.GetBool("force", false))
	if err != nil {
		return errorResult("analysis", err), nil
	}
	return jsonResult(analysis)
}

func (h *toolHandler) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID := request.GetString("file_id", "")
	if fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}
	state, err := h.engine.GetStatus(ctx, fileID)
	if err != nil {
		return errorResult("status lookup", err), nil
	}
	return jsonResult(state)
}

func (h *toolHandler) handleGetSuggestions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	analysisID := request.GetInt("analysis_id", 0)
	if analysisID <= 0 {
		return mcp.NewToolResultError("analysis_id must be a positive number"), nil
	}
	suggestions, err := h.engine.GetSuggestions(ctx, int64(analysisID))
	if err != nil {
		return errorResult("suggestion lookup", err), nil
	}

	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return jsonResult(suggestions)
}

func (h *toolHandler) handleGetHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID := request.GetString("file_id", "")
	if fileID == "" {
		return mcp.NewToolResultError("file_id is required"), nil
	}
	records, err := h.engine.History(ctx, fileID)
	if err != nil {
		return errorResult("history lookup", err), nil
	}
	return jsonResult(records)
}

func (h *toolHandler) handleGetTopRisks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := h.baseCfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}
	records, err := h.engine.TopRisks(ctx, limit)
	if err != nil {
		return errorResult("risk ranking", err), nil
	}
	return jsonResult(records)
}
