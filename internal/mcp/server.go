package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/claimsight/hcfa-ocr/internal/claim"
	"github.com/claimsight/hcfa-ocr/internal/config"
	"github.com/claimsight/hcfa-ocr/internal/descriptions"
	"github.com/claimsight/hcfa-ocr/internal/hcfa"
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	hcfaService *hcfa.Service
	mcpServer   *server.MCPServer
	logger      zerolog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, hcfaService *hcfa.Service, logger zerolog.Logger) (*Server, error) {
	if hcfaService == nil {
		return nil, fmt.Errorf("hcfaService cannot be nil")
	}

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		hcfaService: hcfaService,
		mcpServer:   mcpServer,
		logger:      logger,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register claim parse tool
	parseFileTool := mcp.NewTool(
		"hcfa_parse_file",
		mcp.WithDescription(descriptions.HCFAParseFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the claim document (PDF, PNG, JPEG, or TIFF)"),
		),
	)
	s.mcpServer.AddTool(parseFileTool, s.handleParseFile)

	// Register claim audit tool
	auditClaimTool := mcp.NewTool(
		"hcfa_audit_claim",
		mcp.WithDescription(descriptions.HCFAAuditClaimDescription),
		mcp.WithString("claim",
			mcp.Required(),
			mcp.Description("Claim JSON as produced by hcfa_parse_file"),
		),
	)
	s.mcpServer.AddTool(auditClaimTool, s.handleAuditClaim)

	// Register combined parse-and-audit tool
	parseAndAuditTool := mcp.NewTool(
		"hcfa_parse_and_audit",
		mcp.WithDescription(descriptions.HCFAParseAndAuditDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the claim document (PDF, PNG, JPEG, or TIFF)"),
		),
	)
	s.mcpServer.AddTool(parseAndAuditTool, s.handleParseAndAudit)
}

// Handler functions
func (s *Server) handleParseFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errResult := s.buildSubmitRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.hcfaService.SubmitDocument(ctx, *req)
	if err != nil {
		return s.toolError(err), nil
	}

	return s.claimResult(result.Claim, nil)
}

func (s *Server) handleAuditClaim(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	claimJSON, err := request.RequireString("claim")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var c claim.Claim
	if err := json.Unmarshal([]byte(claimJSON), &c); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid claim JSON: %v", err)), nil
	}

	result, err := s.hcfaService.EvaluateClaim(hcfa.EvaluateClaimRequest{Claim: &c})
	if err != nil {
		return s.toolError(err), nil
	}

	return s.claimResult(result.Claim, result.Issues)
}

func (s *Server) handleParseAndAudit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req, errResult := s.buildSubmitRequest(request)
	if errResult != nil {
		return errResult, nil
	}

	result, err := s.hcfaService.SubmitAndEvaluate(ctx, *req)
	if err != nil {
		return s.toolError(err), nil
	}

	return s.claimResult(result.Claim, result.Issues)
}

// buildSubmitRequest resolves the "path" argument and loads the document bytes.
func (s *Server) buildSubmitRequest(request mcp.CallToolRequest) (*hcfa.SubmitDocumentRequest, *mcp.CallToolResult) {
	path, err := request.RequireString("path")
	if err != nil {
		return nil, mcp.NewToolResultError(err.Error())
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("cannot access file: %s", path))
	}
	if info.Size() > s.config.MaxFileSize {
		return nil, mcp.NewToolResultError(
			fmt.Sprintf("file too large: %d bytes (limit %d)", info.Size(), s.config.MaxFileSize))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mcp.NewToolResultError(fmt.Sprintf("cannot read file: %s", path))
	}

	return &hcfa.SubmitDocumentRequest{
		Data:     data,
		Filename: filepath.Base(path),
	}, nil
}

// auditResponse is the JSON shape returned by the audit-capable tools.
type auditResponse struct {
	Claim  *claim.Claim `json:"claim"`
	Issues []string     `json:"issues,omitempty"`
	Clean  bool         `json:"clean"`
}

// claimResult renders a claim (and optional audit issues) as a JSON tool result.
func (s *Server) claimResult(c *claim.Claim, issues []string) (*mcp.CallToolResult, error) {
	var payload any = c
	if issues != nil {
		payload = auditResponse{Claim: c, Issues: issues, Clean: len(issues) == 0}
	}

	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("failed to encode result"), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// toolError converts a pipeline failure into a tool error result. Internal
// failures are collapsed to a generic message so document contents never
// leak into the transport.
func (s *Server) toolError(err error) *mcp.CallToolResult {
	var pipeErr *hcfa.PipelineError
	if errors.As(err, &pipeErr) {
		return mcp.NewToolResultError(pipeErr.ClientMessage())
	}
	return mcp.NewToolResultError("failed to read claim")
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	s.logger.Debug().
		Str("strategy", s.config.Strategy).
		Str("engine", s.config.OCREngine).
		Msg("starting HCFA OCR MCP server in stdio mode")

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport is stdio-first; network mode delegates for now.
	s.logger.Warn().
		Str("address", s.config.Address()).
		Msg("server mode not yet implemented, falling back to stdio mode")
	return s.runStdioMode(ctx)
}
