// Package fill writes mapped profile values into a form and produces the output
// document together with a per-field report.
package fill

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

// Options selects the optional post-write stages
type Options struct {
	Flatten       bool   `json:"flatten"`
	WatermarkText string `json:"watermark_text,omitempty"`
}

// truthy lists the string forms that check a checkbox
var truthy = map[string]bool{
	"true": true,
	"1":    true,
	"yes":  true,
	"ja":   true,
	"on":   true,
	"x":    true,
}

// Writer applies a mapping to a document
type Writer struct {
	logger *zap.Logger
}

// NewWriter creates a writer
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logging.OrNop(logger)}
}

// Fill writes every mapped entry into doc and serializes it. Field failures are
// recorded in the report and never stop the run. doc is consumed.
func (w *Writer) Fill(doc *acroform.Document, mapping *intelligence.MappingResult, opts Options) (*Result, error) {
	if doc == nil {
		return nil, pdferrors.NewPDFError(pdferrors.ErrorTypeInvalidInput, "document is nil")
	}
	if mapping == nil {
		mapping = &intelligence.MappingResult{}
	}

	report := newReport(len(doc.Fields()), mapping.Unmapped)

	for _, entry := range mapping.Mapped {
		value, err := w.writeEntry(doc, entry)
		if err != nil {
			report.failed(entry.FieldName, err)
			w.logger.Debug("field write failed",
				zap.String("field", entry.FieldName),
				zap.Error(err))
			continue
		}
		report.filled(entry, value)
	}

	doc.SetNeedAppearances()
	out, err := doc.Bytes()
	if err != nil {
		return nil, err
	}

	if opts.Flatten {
		var ok bool
		out, ok = w.runStage(report, stageFlatten, out)
		report.Flattened = ok
	}
	if text := strings.TrimSpace(opts.WatermarkText); text != "" {
		var ok bool
		out, ok = w.runStage(report, stageWatermark(text), out)
		report.Watermarked = ok
	}

	w.logger.Info("form filled",
		zap.Int("total_fields", report.TotalFields),
		zap.Int("filled", report.FilledCount),
		zap.Int("errors", report.ErrorCount),
		zap.Int("unmapped", len(report.UnmappedFields)),
		zap.Int("warnings", len(report.Warnings)))

	return &Result{Bytes: out, Report: report}, nil
}

// writeEntry writes one entry and returns the value as recorded in the report
func (w *Writer) writeEntry(doc *acroform.Document, entry intelligence.MappingEntry) (string, error) {
	field, ok := doc.Field(entry.FieldName)
	if !ok {
		return "", pdferrors.NewFieldWriteError(entry.FieldName, "field not found in document")
	}

	var written string
	err := pdferrors.CaptureFieldPanic(entry.FieldName, func() error {
		switch field.Kind {
		case acroform.FieldKindText:
			written = entry.Value.String()
			return field.SetText(written)
		case acroform.FieldKindCheckbox:
			on := isTruthy(entry.Value)
			written = fmt.Sprintf("%t", on)
			return field.SetChecked(on)
		case acroform.FieldKindSingleChoice:
			written = entry.Value.String()
			return field.SelectRadio(written)
		case acroform.FieldKindMultiChoice:
			written = entry.Value.String()
			return field.SelectChoice(written)
		case acroform.FieldKindUnknown:
			return pdferrors.NewFieldWriteError(entry.FieldName, "field type is not writable")
		default:
			return pdferrors.NewFieldWriteError(entry.FieldName, fmt.Sprintf("unsupported field kind %q", field.Kind))
		}
	})
	if err != nil {
		return "", err
	}
	return written, nil
}

// isTruthy decides whether a value checks a checkbox
func isTruthy(v intelligence.Value) bool {
	switch v.Kind() {
	case intelligence.ValueBool:
		return v.Raw().(bool)
	case intelligence.ValueNumber:
		return v.Raw().(float64) == 1
	case intelligence.ValueString:
		return truthy[strings.ToLower(strings.TrimSpace(v.String()))]
	default:
		return false
	}
}
