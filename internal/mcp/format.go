package mcp

import (
	"fmt"
	"strings"

	"github.com/mimitechai/mcp-pdf-autofill/internal/fallback"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf"
)

const maxListedFiles = 10

func formatValidation(result *pdf.ValidationResult) string {
	if !result.Valid {
		return fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Error)
	}
	text := fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.PageCount)
	if result.HasForm {
		text += "Fillable form: yes\n"
	} else {
		text += "Fillable form: no (nothing to fill)\n"
	}
	return text
}

func formatFields(result *pdf.FormFieldsResult) string {
	var b strings.Builder
	meta := result.Metadata

	fmt.Fprintf(&b, "Form fields of %s\n", result.Path)
	if meta.Title != "" {
		fmt.Fprintf(&b, "Title: %s\n", meta.Title)
	}
	if meta.Author != "" {
		fmt.Fprintf(&b, "Author: %s\n", meta.Author)
	}
	fmt.Fprintf(&b, "Pages: %d\n", meta.PageCount)
	fmt.Fprintf(&b, "Total fields: %d\n", result.TotalFields)
	if result.TotalFields == 0 {
		b.WriteString("\nThe document has no fillable form.\n")
		return b.String()
	}

	b.WriteString("\nFields:\n")
	for i, f := range result.Fields {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, f.Name, f.Kind)
		if f.Page > 0 {
			fmt.Fprintf(&b, " page %d", f.Page)
		}
		if f.Required {
			b.WriteString(" required")
		}
		if f.ReadOnly {
			b.WriteString(" read-only")
		}
		b.WriteString("\n")
		if f.CurrentValue != nil {
			fmt.Fprintf(&b, "   Value: %v\n", f.CurrentValue)
		}
		if len(f.Options) > 0 {
			fmt.Fprintf(&b, "   Options: %s\n", strings.Join(f.Options, ", "))
		}
		if f.MaxLength != nil {
			fmt.Fprintf(&b, "   Max length: %d\n", *f.MaxLength)
		}
	}
	return b.String()
}

func formatMapping(result *pdf.FormMapResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Mapping for %s\n", result.Path)
	fmt.Fprintf(&b, "Mapped %d of %d fields (%d%%)\n", len(result.Mapped), result.TotalFields, result.MappingRate)

	if len(result.Mapped) > 0 {
		b.WriteString("\nMapped:\n")
		for _, e := range result.Mapped {
			fmt.Fprintf(&b, "• %s <- %q [%s, confidence %d]\n", e.FieldName, e.Value.String(), e.Label, e.Confidence)
		}
	}
	if len(result.Unmapped) > 0 {
		b.WriteString("\nUnmapped:\n")
		for _, u := range result.Unmapped {
			fmt.Fprintf(&b, "• %s (%s)", u.FieldName, u.Kind)
			if u.Purpose != intelligence.PurposeUnknown {
				fmt.Fprintf(&b, " looks like %s but the profile has no value", u.Label)
			}
			b.WriteString("\n")
		}
		b.WriteString("\nUse pdf_form_suggest to ask the semantic matching service about unmapped fields.\n")
	}
	return b.String()
}

func formatFill(result *pdf.FormFillResult) string {
	var b strings.Builder
	report := result.Report

	fmt.Fprintf(&b, "Filled %s\n", result.Path)
	fmt.Fprintf(&b, "Output: %s (%s)\n", result.OutputPath, result.Download.SizeLabel)
	fmt.Fprintf(&b, "Download: %s [%s]\n", result.Download.Filename, result.Download.ContentType)
	fmt.Fprintf(&b, "Filled %d of %d fields, %d error(s)\n", report.FilledCount, report.TotalFields, report.ErrorCount)
	if report.Flattened {
		b.WriteString("Flattened: yes\n")
	}
	if report.Watermarked {
		b.WriteString("Watermarked: yes\n")
	}

	if len(report.FilledFields) > 0 {
		b.WriteString("\nFilled:\n")
		for _, f := range report.FilledFields {
			fmt.Fprintf(&b, "• %s = %q (%s)\n", f.Field, f.Value, f.Label)
		}
	}
	if len(report.Errors) > 0 {
		b.WriteString("\nErrors:\n")
		for _, e := range report.Errors {
			fmt.Fprintf(&b, "• %s: %s\n", e.Field, e.Message)
		}
	}
	if len(report.UnmappedFields) > 0 {
		b.WriteString("\nNot filled (no matching profile value):\n")
		for _, u := range report.UnmappedFields {
			fmt.Fprintf(&b, "• %s\n", u.FieldName)
		}
	}
	if len(report.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "• %s\n", w)
		}
	}

	if sug := result.Suggestions; sug != nil {
		b.WriteString("\n")
		switch {
		case !sug.Available:
			fmt.Fprintf(&b, "Semantic matching unavailable: %s\n", sug.Error)
		case len(sug.Suggestions) == 0:
			b.WriteString("No suggestions.\n")
		default:
			b.WriteString("Suggestions (not written):\n")
			writeSuggestions(&b, sug.Suggestions)
		}
	}
	return b.String()
}

func formatSuggestions(result *pdf.FormSuggestResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Suggestions for %s\n", result.Path)
	fmt.Fprintf(&b, "Unmapped fields: %d\n", len(result.Unmapped))
	if !result.Available {
		fmt.Fprintf(&b, "Semantic matching unavailable: %s\n", result.Error)
		return b.String()
	}
	if len(result.Suggestions) == 0 {
		b.WriteString("No suggestions.\n")
		return b.String()
	}

	b.WriteString("\n")
	writeSuggestions(&b, result.Suggestions)
	return b.String()
}

func writeSuggestions(b *strings.Builder, suggestions []fallback.Suggestion) {
	for _, sug := range suggestions {
		fmt.Fprintf(b, "• %s <- %q (confidence %d)\n", sug.FieldName, sug.SuggestedValue, sug.Confidence)
		if sug.Reasoning != "" {
			fmt.Fprintf(b, "  %s\n", sug.Reasoning)
		}
	}
}

func formatServerInfo(result *pdf.ServerInfoResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	fmt.Fprintf(&b, "📁 Default Directory: %s\n", result.DefaultDirectory)
	fmt.Fprintf(&b, "📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	fmt.Fprintf(&b, "⚙️  Defaults: flatten=%t watermark=%q batch concurrency=%d\n",
		result.Defaults.Flatten, result.Defaults.WatermarkText, result.BatchConcurrency)
	fmt.Fprintf(&b, "🔎 Semantic fallback: %t\n\n", result.FallbackEnabled)

	if len(result.DirectoryContents) > 0 {
		fmt.Fprintf(&b, "📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= maxListedFiles {
				fmt.Fprintf(&b, "   ... and %d more files\n", len(result.DirectoryContents)-maxListedFiles)
				break
			}
			fmt.Fprintf(&b, "   %d. %s (%s)\n", i+1, file.Name, pdf.FormatSize(file.Size))
		}
		b.WriteString("\n")
	} else {
		b.WriteString("📂 Directory Contents: No PDF files found in default directory\n\n")
	}

	b.WriteString("🏷️  Recognized purposes:\n")
	for _, p := range result.Purposes {
		fmt.Fprintf(&b, "  • %s (%s)\n", p.Purpose, p.Label)
	}

	b.WriteString("\n🛠️  Available Tools:\n")
	for _, tool := range result.AvailableTools {
		fmt.Fprintf(&b, "\n• %s\n", tool.Name)
		fmt.Fprintf(&b, "  Usage: %s\n", tool.Usage)
		fmt.Fprintf(&b, "  Parameters: %s\n", tool.Parameters)
	}

	b.WriteString("\n" + result.UsageGuidance)
	return b.String()
}
