package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf"
)

var errProfileRequired = errors.New("profile is required and must be a JSON object")

// profileFromArgs accepts the profile as a JSON object or as a JSON/YAML string
func profileFromArgs(args map[string]any) (intelligence.Profile, error) {
	switch v := args["profile"].(type) {
	case map[string]any:
		return intelligence.Profile(v), nil
	case string:
		if v == "" {
			return nil, errProfileRequired
		}
		return intelligence.ParseProfile([]byte(v))
	default:
		return nil, errProfileRequired
	}
}

func (s *Server) handleFormValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FormValidate(pdf.FormValidateRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatValidation(result)), nil
}

func (s *Server) handleFormFields(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FormFields(pdf.FormFieldsRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFields(result)), nil
}

func (s *Server) handleFormMap(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, err := profileFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FormMap(pdf.FormMapRequest{Path: path, Profile: profile})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatMapping(result)), nil
}

func (s *Server) handleFormFill(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()
	profile, err := profileFromArgs(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.FormFillRequest{Path: path, Profile: profile}
	if out, ok := args["output_path"].(string); ok {
		req.OutputPath = out
	}
	if flatten, ok := args["flatten"].(bool); ok {
		req.Flatten = &flatten
	}
	if text, ok := args["watermark_text"].(string); ok {
		req.WatermarkText = &text
	}
	if suggest, ok := args["suggest"].(bool); ok {
		req.Suggest = suggest
	}

	result, err := s.pdfService.FormFill(ctx, req)
	if err != nil {
		s.logger.Warn("fill failed", zap.String("path", path), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatFill(result)), nil
}

func (s *Server) handleFormSuggest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	profile, err := profileFromArgs(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.FormSuggest(ctx, pdf.FormSuggestRequest{Path: path, Profile: profile})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(formatSuggestions(result)), nil
}

func (s *Server) handleServerInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(ctx, s.config.ServerName, s.config.Version)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get server info: %v", err)), nil
	}
	return mcp.NewToolResultText(formatServerInfo(result)), nil
}
