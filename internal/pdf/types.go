package pdf

import (
	"github.com/mimitechai/mcp-pdf-autofill/internal/fallback"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/fill"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// FormValidateRequest asks for a pre-flight check of a file
type FormValidateRequest struct {
	Path string `json:"path"`
}

// FormFieldsRequest asks for the field catalog of a file
type FormFieldsRequest struct {
	Path string `json:"path"`
}

// FormMapRequest asks for a mapping preview
type FormMapRequest struct {
	Path    string               `json:"path"`
	Profile intelligence.Profile `json:"profile"`
}

// FormFillRequest asks for a filled copy of a form. Nil Flatten and
// WatermarkText fall back to the server defaults.
type FormFillRequest struct {
	Path          string               `json:"path"`
	Profile       intelligence.Profile `json:"profile"`
	OutputPath    string               `json:"output_path,omitempty"`
	Flatten       *bool                `json:"flatten,omitempty"`
	WatermarkText *string              `json:"watermark_text,omitempty"`
	Suggest       bool                 `json:"suggest,omitempty"`
}

// FormSuggestRequest asks the matching service about unmapped fields
type FormSuggestRequest struct {
	Path    string               `json:"path"`
	Profile intelligence.Profile `json:"profile"`
}

// ServerInfoRequest represents a request to get server information and capabilities
type ServerInfoRequest struct{}

// Response Types

// ValidationResult is the outcome of the pre-flight check
type ValidationResult struct {
	Path      string `json:"path,omitempty"`
	Valid     bool   `json:"valid"`
	Error     string `json:"error,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
	HasForm   bool   `json:"has_form"`
}

// FormFieldsResult is the field catalog of one file
type FormFieldsResult struct {
	Path string `json:"path"`
	*acroform.Catalog
}

// FormMapResult is the mapping preview of one file
type FormMapResult struct {
	Path string `json:"path"`
	*intelligence.MappingResult
}

// FormFillResult describes the written output
type FormFillResult struct {
	Path        string           `json:"path"`
	OutputPath  string           `json:"output_path"`
	Download    Download         `json:"download"`
	Report      *fill.Report     `json:"report"`
	Suggestions *FillSuggestions `json:"suggestions,omitempty"`
}

// FillSuggestions are the advisory suggestions gathered while a form was
// filled. Available is false when the matching service was not configured,
// failed or did not answer in time.
type FillSuggestions struct {
	Suggestions []fallback.Suggestion `json:"suggestions"`
	Available   bool                  `json:"available"`
	Error       string                `json:"error,omitempty"`
}

// FormSuggestResult carries advisory suggestions. Available is false when the
// matching service is not configured or failed; Error then says why.
type FormSuggestResult struct {
	Path        string                       `json:"path"`
	Unmapped    []intelligence.UnmappedField `json:"unmapped"`
	Suggestions []fallback.Suggestion        `json:"suggestions"`
	Available   bool                         `json:"available"`
	Error       string                       `json:"error,omitempty"`
}

// ServerInfoResult represents server information and usage guidance
type ServerInfoResult struct {
	ServerName        string        `json:"server_name"`
	Version           string        `json:"version"`
	DefaultDirectory  string        `json:"default_directory"`
	MaxFileSize       int64         `json:"max_file_size"`
	Defaults          fill.Options  `json:"fill_defaults"`
	BatchConcurrency  int           `json:"batch_concurrency"`
	FallbackEnabled   bool          `json:"fallback_enabled"`
	Purposes          []PurposeInfo `json:"purposes"`
	AvailableTools    []ToolInfo    `json:"available_tools"`
	DirectoryContents []FileInfo    `json:"directory_contents"`
	UsageGuidance     string        `json:"usage_guidance"`
}

// PurposeInfo lists one purpose the classifier can recognize
type PurposeInfo struct {
	Purpose intelligence.Purpose `json:"purpose"`
	Label   string               `json:"label"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// Batch Types

// BatchItem is one document of a batch fill
type BatchItem struct {
	Name    string               `json:"name"`
	Data    []byte               `json:"-"`
	Profile intelligence.Profile `json:"profile"`
}

// BatchItemResult is the outcome of one batch item. Exactly one of Result and
// Err is set.
type BatchItemResult struct {
	Index  int          `json:"index"`
	Name   string       `json:"name"`
	Result *fill.Result `json:"result,omitempty"`
	Err    error        `json:"-"`
}

// BatchResult collects every item of a batch in input order
type BatchResult struct {
	ID        string            `json:"id"`
	Items     []BatchItemResult `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}
