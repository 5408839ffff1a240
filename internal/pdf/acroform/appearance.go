package acroform

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// fontResource is the resource name generated appearances use for Helvetica
const fontResource = "AFHelv"

// helvetica returns the font object shared by all generated appearances
func (d *Document) helvetica() (*types.IndirectRef, error) {
	if d.fontRef != nil {
		return d.fontRef, nil
	}
	font := types.Dict{
		"Type":     types.Name("Font"),
		"Subtype":  types.Name("Type1"),
		"BaseFont": types.Name("Helvetica"),
		"Encoding": types.Name("WinAnsiEncoding"),
	}
	ref, err := d.ctx.IndRefForNewObject(font)
	if err != nil {
		return nil, fmt.Errorf("failed to add font: %w", err)
	}
	d.fontRef = ref
	return ref, nil
}

// newStream adds a Flate-compressed stream object
func (d *Document) newStream(dict types.Dict, content []byte) (*types.IndirectRef, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		return nil, fmt.Errorf("failed to compress stream: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress stream: %w", err)
	}

	raw := buf.Bytes()
	length := int64(len(raw))
	dict["Filter"] = types.Name("FlateDecode")
	dict["Length"] = types.Integer(len(raw))

	sd := types.StreamDict{
		Dict:           dict,
		Content:        content,
		Raw:            raw,
		StreamLength:   &length,
		FilterPipeline: []types.PDFFilter{{Name: "FlateDecode"}},
	}
	ref, err := d.ctx.IndRefForNewObject(sd)
	if err != nil {
		return nil, fmt.Errorf("failed to add stream: %w", err)
	}
	return ref, nil
}

// formXObject adds a form XObject of the given size
func (d *Document) formXObject(width, height float64, content string, withFont bool) (*types.IndirectRef, error) {
	dict := types.Dict{
		"Type":    types.Name("XObject"),
		"Subtype": types.Name("Form"),
		"BBox":    types.Array{types.Float(0), types.Float(0), types.Float(width), types.Float(height)},
	}
	if withFont {
		font, err := d.helvetica()
		if err != nil {
			return nil, err
		}
		dict["Resources"] = types.Dict{
			"Font": types.Dict{fontResource: *font},
		}
	}
	return d.newStream(dict, []byte(content))
}

func (w *Widget) size() (float64, float64) {
	return w.Rect[2] - w.Rect[0], w.Rect[3] - w.Rect[1]
}

// setTextAppearance replaces the normal appearance of every widget with text
// drawn on a single line
func (f *Field) setTextAppearance(text string) error {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(text)
	style := parseDA(f.da)

	for _, w := range f.widgets {
		width, height := w.size()
		if width <= 0 || height <= 0 {
			continue
		}
		size := style.fontSize(height)
		baseline := (height - size*0.78) / 2
		if baseline < 1 {
			baseline = 1
		}

		var b strings.Builder
		b.WriteString("/Tx BMC\nq\n")
		fmt.Fprintf(&b, "1 1 %s %s re W n\n", formatNumber(width-2), formatNumber(height-2))
		b.WriteString("BT\n")
		fmt.Fprintf(&b, "/%s %s Tf %s\n", fontResource, formatNumber(size), style.colorOps)
		fmt.Fprintf(&b, "2 %s Td\n", formatNumber(baseline))
		fmt.Fprintf(&b, "%s Tj\nET\nQ\nEMC\n", winAnsiHex(text))

		ref, err := f.doc.formXObject(width, height, b.String(), true)
		if err != nil {
			return err
		}
		w.dict["AP"] = types.Dict{"N": *ref}
	}
	return nil
}

// ensureToggleAppearance gives a widget without appearances an on-state cross
// and an empty Off state
func (f *Field) ensureToggleAppearance(w *Widget, on string) error {
	if states := f.doc.widgetStates(w); len(states) > 0 {
		return nil
	}
	width, height := w.size()
	if width <= 0 || height <= 0 {
		width, height = 12, 12
	}

	cross := fmt.Sprintf("q 0 G 1 w 2 2 m %s %s l S 2 %s m %s 2 l S Q\n",
		formatNumber(width-2), formatNumber(height-2), formatNumber(height-2), formatNumber(width-2))
	onRef, err := f.doc.formXObject(width, height, cross, false)
	if err != nil {
		return err
	}
	offRef, err := f.doc.formXObject(width, height, "", false)
	if err != nil {
		return err
	}
	w.dict["AP"] = types.Dict{
		"N": types.Dict{on: *onRef, offState: *offRef},
	}
	return nil
}
