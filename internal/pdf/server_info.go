package pdf

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/descriptions"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
)

const (
	serverInfoFileLimit = 100
	serverInfoScanLimit = 3 * time.Second
)

// toolUsage holds the one-line usage hint and parameter summary per tool
var toolUsage = map[string][2]string{
	"pdf_form_validate": {
		"Use this tool to check a file is a readable PDF with a form before filling it.",
		"path (required)",
	},
	"pdf_form_fields": {
		"Use this tool to list the fields of a form and their kinds, values and options.",
		"path (required)",
	},
	"pdf_form_map": {
		"Use this tool to preview which profile values would land in which fields.",
		"path (required), profile (required)",
	},
	"pdf_form_fill": {
		"Use this tool to write profile values into a form and save the filled copy.",
		"path (required), profile (required), output_path, flatten, watermark_text",
	},
	"pdf_form_suggest": {
		"Use this tool to ask the semantic matching service about fields left unmapped.",
		"path (required), profile (required)",
	},
	"pdf_server_info": {
		"Use this tool to get server capabilities, defaults and the forms in the default directory.",
		"none",
	},
}

// ServerInfo reports the server configuration, capabilities and a bounded
// listing of the default directory
func (s *Service) ServerInfo(ctx context.Context, serverName, version string) (*ServerInfoResult, error) {
	directory := s.pathValidator.GetConfiguredDirectory()

	scanCtx, cancel := context.WithTimeout(ctx, serverInfoScanLimit)
	defer cancel()

	files, err := s.search.FindPDFs(scanCtx, directory, "", serverInfoFileLimit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// A missing or slow directory only empties the listing
		s.logger.Debug("directory scan incomplete",
			zap.String("directory", directory), zap.Error(err))
		if files == nil {
			files = []FileInfo{}
		}
	}

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  directory,
		MaxFileSize:       s.maxFileSize,
		Defaults:          s.defaults,
		BatchConcurrency:  s.concurrency,
		FallbackEnabled:   s.escalator.Enabled(),
		Purposes:          purposeInfos(),
		AvailableTools:    availableTools(),
		DirectoryContents: files,
		UsageGuidance:     s.usageGuidance(),
	}, nil
}

func purposeInfos() []PurposeInfo {
	purposes := intelligence.AllPurposes()
	infos := make([]PurposeInfo, 0, len(purposes))
	for _, p := range purposes {
		infos = append(infos, PurposeInfo{Purpose: p, Label: p.DisplayName()})
	}
	return infos
}

func availableTools() []ToolInfo {
	names := descriptions.GetAllToolNames()
	tools := make([]ToolInfo, 0, len(names))
	for _, name := range names {
		usage := toolUsage[name]
		tools = append(tools, ToolInfo{
			Name:        name,
			Description: descriptions.GetToolDescription(name),
			Usage:       usage[0],
			Parameters:  usage[1],
		})
	}
	return tools
}

func (s *Service) usageGuidance() string {
	maxFileSizeMB := s.maxFileSize / (1024 * 1024)

	fallbackNote := "not configured; pdf_form_suggest reports it as unavailable"
	if s.escalator.Enabled() {
		fallbackNote = "configured; pdf_form_suggest forwards unmapped fields to it"
	}

	return fmt.Sprintf(`PDF Form Autofill Usage Guide:

1. CHECK THE FORM:
   - Use 'pdf_form_validate' to make sure the file is a PDF with fillable fields
   - Use 'pdf_form_fields' to see every field, its kind and its options

2. PREVIEW THE MAPPING:
   - Use 'pdf_form_map' with a user profile (German or English keys, e.g. "vorname" or "first_name")
   - Mapped entries are sorted by confidence; unmapped fields are listed separately

3. FILL:
   - Use 'pdf_form_fill' to write the mapped values and save "<name>_filled.pdf"
   - Pass flatten=true to bake values into the page content
   - Pass watermark_text (e.g. "MUSTER") to stamp every page
   - Failed fields are reported per field and never abort the fill

4. SEMANTIC FALLBACK:
   - The semantic matching service is %s

IMPORTANT NOTES:
- Relative paths are resolved against the default directory
- The server can handle files up to %dMB
- Directory listings here are limited to %d files`, fallbackNote, maxFileSizeMB, serverInfoFileLimit)
}
