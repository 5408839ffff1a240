package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/config"
	"github.com/mimitechai/mcp-pdf-autofill/internal/descriptions"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	logger     *zap.Logger
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
		logger:     logging.OrNop(logger),
	}
	s.registerTools()

	return s, nil
}

func pathArg() mcp.ToolOption {
	return mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Path to the PDF form; relative paths are resolved against the default directory"),
	)
}

func profileArg() mcp.ToolOption {
	return mcp.WithObject("profile",
		mcp.Required(),
		mcp.Description("User profile as a JSON object with German or English keys, e.g. {\"vorname\": \"Anna\", \"plz\": \"10115\"}"),
	)
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("pdf_form_validate",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_validate")),
		pathArg(),
	), s.handleFormValidate)

	s.mcpServer.AddTool(mcp.NewTool("pdf_form_fields",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fields")),
		pathArg(),
	), s.handleFormFields)

	s.mcpServer.AddTool(mcp.NewTool("pdf_form_map",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_map")),
		pathArg(),
		profileArg(),
	), s.handleFormMap)

	s.mcpServer.AddTool(mcp.NewTool("pdf_form_fill",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_fill")),
		pathArg(),
		profileArg(),
		mcp.WithString("output_path",
			mcp.Description("Where to write the filled form (default: <name>_filled.pdf beside the input)"),
		),
		mcp.WithBoolean("flatten",
			mcp.Description("Bake the values into the page content so the fields can no longer be edited"),
		),
		mcp.WithString("watermark_text",
			mcp.Description("Text stamped diagonally on every page, e.g. MUSTER"),
		),
		mcp.WithBoolean("suggest",
			mcp.Description("Also ask the semantic matching service about unmapped fields while filling"),
		),
	), s.handleFormFill)

	s.mcpServer.AddTool(mcp.NewTool("pdf_form_suggest",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_form_suggest")),
		pathArg(),
		profileArg(),
	), s.handleFormSuggest)

	s.mcpServer.AddTool(mcp.NewTool("pdf_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_server_info")),
	), s.handleServerInfo)
}

// Run starts the MCP server in the configured mode and returns when ctx is done
func (s *Server) Run(ctx context.Context) error {
	switch {
	case s.config.IsServerMode():
		return s.runServerMode(ctx)
	case s.config.IsStdioMode():
		return s.runStdioMode(ctx)
	default:
		return fmt.Errorf("unsupported mode: %s", s.config.Mode)
	}
}

// runStdioMode serves JSON-RPC over stdin and stdout
func (s *Server) runStdioMode(ctx context.Context) error {
	s.logger.Info("starting stdio transport", zap.String("directory", s.config.PDFDirectory))

	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves the SSE transport on the configured address
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	s.logger.Info("starting SSE transport",
		zap.String("address", addr),
		zap.String("directory", s.config.PDFDirectory))

	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sse.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down SSE server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve SSE: %w", err)
	}
	s.logger.Info("SSE transport stopped")
	return nil
}
