// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Engine is the part of the analysis engine exposed as MCP tools.
type Engine interface {
	Ingest(ctx context.Context, filename string, content []byte) (schema.IngestResult, error)
	Analyze(ctx context.Context, fileID string, force bool) (schema.AnalysisRecord, error)
	Await(ctx context.Context, fileID string) (schema.AnalysisRecord, error)
	GetStatus(ctx context.Context, fileID string) (schema.ProcessingState, error)
	GetSuggestions(ctx context.Context, analysisID int64) ([]schema.Suggestion, error)
	History(ctx context.Context, fileID string) ([]schema.AnalysisRecord, error)
	TopRisks(ctx context.Context, limit int) ([]schema.AnalysisRecord, error)
}

// NewMCPServer initializes and configures the LegacyLens MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, engine Engine) *server.MCPServer {
	s := server.NewMCPServer(
		"LegacyLens Analysis Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		engine:  engine,
	}

	// --- 1. Tool: ingest_file ---
	s.AddTool(mcp.NewTool("ingest_file",
		mcp.WithDescription("Store a legacy source file (Perl, TIBCO or Pentaho) for analysis. Identical content is deduplicated."),
		mcp.WithString("filename", mcp.Description("File name, used to detect the technology."), mcp.Required()),
		mcp.WithString("content", mcp.Description("Full text content of the file."), mcp.Required()),
		mcp.WithBoolean("analyze", mcp.Description("Analyze the file right after ingestion. Defaults to false.")),
	), h.handleIngestFile)

	// --- 2. Tool: analyze_file ---
	s.AddTool(mcp.NewTool("analyze_file",
		mcp.WithDescription("Analyze an ingested file and return its metrics, scores and suggestions."),
		mcp.WithString("file_id", mcp.Description("ID returned by ingest_file."), mcp.Required()),
		mcp.WithBoolean("force", mcp.Description("Re-analyze even when an analysis exists.")),
	), h.handleAnalyzeFile)

	// --- 3. Tool: get_status ---
	s.AddTool(mcp.NewTool("get_status",
		mcp.WithDescription("Get the processing status of an ingested file."),
		mcp.WithString("file_id", mcp.Description("ID returned by ingest_file."), mcp.Required()),
	), h.handleGetStatus)

	// --- 4. Tool: get_suggestions ---
	s.AddTool(mcp.NewTool("get_suggestions",
		mcp.WithDescription("Get the improvement suggestions of an analysis, most severe first."),
		mcp.WithNumber("analysis_id", mcp.Description("ID of the analysis."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of suggestions returned.")),
	), h.handleGetSuggestions)

	// --- 5. Tool: get_history ---
	s.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("List every analysis of a file, newest first."),
		mcp.WithString("file_id", mcp.Description("ID returned by ingest_file."), mcp.Required()),
	), h.handleGetHistory)

	// --- 6. Tool: get_top_risks ---
	s.AddTool(mcp.NewTool("get_top_risks",
		mcp.WithDescription("Rank analyzed files by risk score using the latest analysis of each file."),
		mcp.WithNumber("limit", mcp.Description("Limit the number of files returned.")),
	), h.handleGetTopRisks)

	return s
}

// StartMCPServer starts the LegacyLens MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, engine Engine) error {
	s := NewMCPServer(baseCfg.Clone(), engine)
	return server.ServeStdio(s)
}
