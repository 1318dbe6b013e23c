package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/claimsight/hcfa-ocr/internal/claim"
	"github.com/claimsight/hcfa-ocr/internal/config"
	"github.com/claimsight/hcfa-ocr/internal/document"
	"github.com/claimsight/hcfa-ocr/internal/hcfa"
)

// stubRecognizer returns canned text lines instead of running an OCR engine.
type stubRecognizer struct {
	lines []string
	err   error
	calls int
}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(_ context.Context, _ image.Image) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.lines, nil
}

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ServerName = "test-server"
	cfg.Strategy = config.StrategyWholePage
	cfg.MaxFileSize = 1024 * 1024
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, rec *stubRecognizer) *Server {
	t.Helper()

	svc, err := hcfa.NewService(hcfa.Options{
		MaxFileSize: cfg.MaxFileSize,
		Strategy:    document.Strategy(cfg.Strategy),
		Fractions:   document.DefaultFractions(),
	}, rec, zerolog.Nop())
	if err != nil {
		t.Fatalf("Failed to create HCFA service: %v", err)
	}

	server, err := NewServer(cfg, svc, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return server
}

// writeFormPNG writes a small white PNG to a temp file and returns its path.
func writeFormPNG(t *testing.T) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 100, 130))
	for y := 0; y < 130; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}

	path := filepath.Join(t.TempDir(), "form.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

func pathRequest(path string) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"path": path,
			},
		},
	}
}

func auditRequest(claimJSON string) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{
				"claim": claimJSON,
			},
		},
	}
}

func TestNewServer(t *testing.T) {
	rec := &stubRecognizer{}
	cfg := testConfig()

	server := newTestServer(t, cfg, rec)
	if server.config != cfg {
		t.Error("server config not set correctly")
	}
	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
}

func TestNewServer_NilService(t *testing.T) {
	_, err := NewServer(testConfig(), nil, zerolog.Nop())
	if err == nil {
		t.Error("expected error for nil service")
	}
}

func TestServer_HandleParseFile(t *testing.T) {
	rec := &stubRecognizer{lines: []string{
		"A00.1 J20.9",
		"99213 25 150.00",
	}}
	server := newTestServer(t, testConfig(), rec)

	result, err := server.handleParseFile(context.Background(), pathRequest(writeFormPNG(t)))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}
	if result == nil {
		t.Fatal("result should not be nil")
	}
	if rec.calls != 1 {
		t.Errorf("expected 1 recognizer call, got %d", rec.calls)
	}

	var c claim.Claim
	if err := json.Unmarshal([]byte(extractTextFromResult(result)), &c); err != nil {
		t.Fatalf("result should be claim JSON: %v", err)
	}
	if len(c.Lines) != 1 || c.Lines[0].CPT != "99213" {
		t.Errorf("expected one line with CPT 99213, got %+v", c.Lines)
	}
	if len(c.ICD10) != 2 {
		t.Errorf("expected 2 diagnosis codes, got %v", c.ICD10)
	}
}

func TestServer_HandleParseFile_MissingFile(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubRecognizer{})

	result, err := server.handleParseFile(context.Background(),
		pathRequest(filepath.Join(t.TempDir(), "nope.png")))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "cannot access file") {
		t.Errorf("expected file access error, got: %s", resultText)
	}
}

func TestServer_HandleParseFile_FileTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFileSize = 10
	server := newTestServer(t, cfg, &stubRecognizer{})

	result, err := server.handleParseFile(context.Background(), pathRequest(writeFormPNG(t)))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "file too large") {
		t.Errorf("expected size limit error, got: %s", resultText)
	}
}

func TestServer_HandleAuditClaim(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubRecognizer{})

	claimJSON := `{
		"payer": "UNKNOWN",
		"pos": "11",
		"lines": [
			{"line_number": 1, "cpt": "99213", "modifiers": [], "diagnosis_pointers": [], "units": 1, "charges": 150.00}
		],
		"icd10": {"A": "A00.1"}
	}`

	result, err := server.handleAuditClaim(context.Background(), auditRequest(claimJSON))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var resp auditResponse
	if err := json.Unmarshal([]byte(extractTextFromResult(result)), &resp); err != nil {
		t.Fatalf("result should be audit JSON: %v", err)
	}

	// Missing DOB and an unlinked diagnosis pointer
	if len(resp.Issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", resp.Issues)
	}
	if !strings.Contains(resp.Issues[0], "no diagnosis pointers linked") {
		t.Errorf("unexpected first issue: %s", resp.Issues[0])
	}
	if resp.Clean {
		t.Error("claim with issues should not be clean")
	}
}

func TestServer_HandleAuditClaim_InvalidJSON(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubRecognizer{})

	result, err := server.handleAuditClaim(context.Background(), auditRequest("{not json"))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	resultText := extractTextFromResult(result)
	if !strings.Contains(resultText, "invalid claim JSON") {
		t.Errorf("expected JSON parse error, got: %s", resultText)
	}
}

func TestServer_HandleParseAndAudit(t *testing.T) {
	rec := &stubRecognizer{lines: []string{
		"A00.1",
		"03/15/1980",
		"99213 150.00",
	}}
	server := newTestServer(t, testConfig(), rec)

	result, err := server.handleParseAndAudit(context.Background(), pathRequest(writeFormPNG(t)))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	var resp auditResponse
	if err := json.Unmarshal([]byte(extractTextFromResult(result)), &resp); err != nil {
		t.Fatalf("result should be audit JSON: %v", err)
	}
	if resp.Claim == nil || len(resp.Claim.Lines) != 1 {
		t.Fatalf("expected claim with one line, got %+v", resp.Claim)
	}
	if resp.Claim.PatientDOB != "03/15/1980" {
		t.Errorf("expected DOB 03/15/1980, got %q", resp.Claim.PatientDOB)
	}

	// Only the unlinked diagnosis pointer remains
	if len(resp.Issues) != 1 || !strings.Contains(resp.Issues[0], "no diagnosis pointers linked") {
		t.Errorf("unexpected issues: %v", resp.Issues)
	}
}

func TestServer_RecognitionFailureIsGeneric(t *testing.T) {
	rec := &stubRecognizer{err: os.ErrDeadlineExceeded}
	server := newTestServer(t, testConfig(), rec)

	result, err := server.handleParseFile(context.Background(), pathRequest(writeFormPNG(t)))
	if err != nil {
		t.Fatalf("handler failed: %v", err)
	}

	// Operator detail must never reach the transport
	resultText := extractTextFromResult(result)
	if resultText != "failed to read claim" {
		t.Errorf("expected generic failure message, got: %s", resultText)
	}
}

func TestServer_InvalidArguments(t *testing.T) {
	server := newTestServer(t, testConfig(), &stubRecognizer{})

	// Test with missing required arguments
	emptyRequest := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: map[string]interface{}{},
		},
	}

	// Test each handler that requires arguments
	handlers := []struct {
		name    string
		handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	}{
		{"ParseFile", server.handleParseFile},
		{"AuditClaim", server.handleAuditClaim},
		{"ParseAndAudit", server.handleParseAndAudit},
	}

	for _, h := range handlers {
		t.Run(h.name, func(t *testing.T) {
			result, err := h.handler(context.Background(), emptyRequest)
			if err != nil {
				t.Errorf("handler should not return error, got: %v", err)
			}
			if result == nil {
				t.Fatal("result should not be nil")
			}

			// Check if it's an error result
			resultText := extractTextFromResult(result)
			if !strings.Contains(resultText, "required") && !strings.Contains(resultText, "missing") && !strings.Contains(resultText, "error") {
				t.Errorf("expected error message for missing arguments, got: %s", resultText)
			}
		})
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	// Try to extract text content
	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
