package fill

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

// watermarkDescription centers the text at 45 degrees and quarter opacity
const watermarkDescription = "font:Helvetica, points:48, scale:1 abs, rot:45, op:.25, fillcolor:#808080, pos:c"

// stage transforms serialized output. Every stage works on its own copy of the
// previous bytes.
type stage struct {
	name      string
	errorType pdferrors.ErrorType
	apply     func(data []byte) ([]byte, error)
}

var stageFlatten = stage{
	name:      "flatten",
	errorType: pdferrors.ErrorTypeFlatten,
	apply: func(data []byte) ([]byte, error) {
		doc, err := acroform.Open(data)
		if err != nil {
			return nil, err
		}
		if err := doc.Flatten(); err != nil {
			return nil, err
		}
		return doc.Bytes()
	},
}

func stageWatermark(text string) stage {
	return stage{
		name:      "watermark",
		errorType: pdferrors.ErrorTypeWatermark,
		apply: func(data []byte) ([]byte, error) {
			return stampWatermark(data, text)
		},
	}
}

// runStage applies s to data. When the stage fails, or its output no longer
// opens, data is returned unchanged and a warning is recorded.
func (w *Writer) runStage(report *Report, s stage, data []byte) ([]byte, bool) {
	var out []byte
	err := pdferrors.CapturePanic(s.errorType, func() error {
		var err error
		out, err = s.apply(data)
		if err != nil {
			return err
		}
		if _, err := acroform.Open(out); err != nil {
			return fmt.Errorf("output does not reopen: %w", err)
		}
		return nil
	})
	if err != nil {
		warning := pdferrors.WrapError(s.errorType, s.name+" skipped, previous output kept", err)
		report.Warnings = append(report.Warnings, warning.Error())
		w.logger.Warn("fill stage failed",
			zap.String("stage", s.name),
			zap.Error(err))
		return data, false
	}
	return out, true
}

// stampWatermark puts text on every page as a non-interactive stamp
func stampWatermark(data []byte, text string) ([]byte, error) {
	wm, err := api.TextWatermark(text, watermarkDescription, true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("invalid watermark: %w", err)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var buf bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(data), &buf, nil, wm, conf); err != nil {
		return nil, fmt.Errorf("failed to stamp watermark: %w", err)
	}
	return buf.Bytes(), nil
}
