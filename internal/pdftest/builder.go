// Package pdftest builds small AcroForm PDFs in memory for tests.
// Offsets in the cross-reference table are computed exactly, so the output loads
// without pdfcpu having to repair anything.
package pdftest

import (
	"bytes"
	"fmt"
	"strings"
)

// Kind selects the widget flavour a FieldSpec is rendered as
type Kind int

const (
	Text Kind = iota
	Checkbox
	Radio
	Combo
	List
	Pushbutton
	Signature
)

// PDF field flag bits used by the builder
const (
	FlagReadOnly    = 1 << 0
	FlagRequired    = 1 << 1
	FlagNoToggleOff = 1 << 14
	FlagRadio       = 1 << 15
	FlagPushbutton  = 1 << 16
	FlagCombo       = 1 << 17
	FlagMultiSelect = 1 << 21
)

// FieldSpec describes one form field
type FieldSpec struct {
	Name    string
	Kind    Kind
	Value   string   // text value, choice value, checkbox/radio state name
	Options []string // radio states or choice display values
	Exports []string // optional choice export values, parallel to Options
	MaxLen  int
	Flags   int
	Page    int    // 1-based, defaults to 1
	Parent  string // optional non-terminal parent partial name
}

// Builder accumulates pages and fields
type Builder struct {
	pages      int
	fields     []FieldSpec
	info       map[string]string
	noAcroForm bool
	emptyForm  bool
}

// New returns a builder for a one-page document
func New() *Builder {
	return &Builder{pages: 1, info: map[string]string{}}
}

// Pages sets the page count
func (b *Builder) Pages(n int) *Builder {
	if n > 0 {
		b.pages = n
	}
	return b
}

// Info sets document information entries
func (b *Builder) Info(title, author, subject string) *Builder {
	b.info["Title"] = title
	b.info["Author"] = author
	b.info["Subject"] = subject
	return b
}

// WithoutAcroForm omits the AcroForm dictionary from the catalog
func (b *Builder) WithoutAcroForm() *Builder {
	b.noAcroForm = true
	return b
}

// WithEmptyForm writes an AcroForm with an empty Fields array
func (b *Builder) WithEmptyForm() *Builder {
	b.emptyForm = true
	return b
}

// Field adds a field
func (b *Builder) Field(f FieldSpec) *Builder {
	if f.Page < 1 {
		f.Page = 1
	}
	b.fields = append(b.fields, f)
	return b
}

// TextField adds a text field with an optional initial value
func (b *Builder) TextField(name, value string) *Builder {
	return b.Field(FieldSpec{Name: name, Kind: Text, Value: value})
}

// CheckboxField adds a checkbox, checked when on is true
func (b *Builder) CheckboxField(name string, on bool) *Builder {
	value := "Off"
	if on {
		value = "Yes"
	}
	return b.Field(FieldSpec{Name: name, Kind: Checkbox, Value: value})
}

// RadioField adds a radio group with one widget per state
func (b *Builder) RadioField(name string, states []string, selected string) *Builder {
	return b.Field(FieldSpec{Name: name, Kind: Radio, Options: states, Value: selected})
}

// ComboField adds a dropdown
func (b *Builder) ComboField(name string, options []string, selected string) *Builder {
	return b.Field(FieldSpec{Name: name, Kind: Combo, Options: options, Value: selected})
}

type objectTable struct {
	bodies []string
}

func (t *objectTable) alloc() int {
	t.bodies = append(t.bodies, "")
	return len(t.bodies)
}

func (t *objectTable) set(n int, body string) {
	t.bodies[n-1] = body
}

func (t *objectTable) add(body string) int {
	n := t.alloc()
	t.set(n, body)
	return n
}

func ref(n int) string {
	return fmt.Sprintf("%d 0 R", n)
}

func stream(dict, content string) string {
	return fmt.Sprintf("<< %s /Length %d >>\nstream\n%s\nendstream", dict, len(content), content)
}

func lit(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return "(" + r.Replace(s) + ")"
}

func rect(slot int) string {
	y := 700 - slot*30
	return fmt.Sprintf("[100 %d 300 %d]", y, y+20)
}

// Build renders the document
func (b *Builder) Build() []byte {
	t := &objectTable{}
	catalog := t.alloc()
	pagesObj := t.alloc()
	font := t.add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	pageRefs := make([]int, b.pages)
	annots := make([][]string, b.pages)
	for i := range pageRefs {
		pageRefs[i] = t.alloc()
	}

	var fieldRefs []string
	parents := map[string]int{}
	parentKids := map[string][]string{}
	slots := make([]int, b.pages)

	for _, f := range b.fields {
		pageIdx := f.Page - 1
		if pageIdx >= b.pages {
			pageIdx = b.pages - 1
		}
		pageRef := pageRefs[pageIdx]
		r := rect(slots[pageIdx])
		slots[pageIdx]++
		widget := fmt.Sprintf("/Type /Annot /Subtype /Widget /F 4 /P %s /Rect %s", ref(pageRef), r)

		var parentEntry string
		if f.Parent != "" {
			if _, ok := parents[f.Parent]; !ok {
				parents[f.Parent] = t.alloc()
				fieldRefs = append(fieldRefs, ref(parents[f.Parent]))
			}
			parentEntry = " /Parent " + ref(parents[f.Parent])
		}

		var n int
		switch f.Kind {
		case Text:
			extra := ""
			if f.Value != "" {
				extra += " /V " + lit(f.Value)
			}
			if f.MaxLen > 0 {
				extra += fmt.Sprintf(" /MaxLen %d", f.MaxLen)
			}
			if f.Flags != 0 {
				extra += fmt.Sprintf(" /Ff %d", f.Flags)
			}
			n = t.add(fmt.Sprintf("<< /FT /Tx /T %s%s /DA (/Helv 10 Tf 0 g) %s%s >>", lit(f.Name), extra, widget, parentEntry))
			annots[pageIdx] = append(annots[pageIdx], ref(n))
		case Checkbox:
			on := t.add(stream("/Type /XObject /Subtype /Form /BBox [0 0 20 20]", "q 0 g 2 2 m 18 18 l S Q"))
			off := t.add(stream("/Type /XObject /Subtype /Form /BBox [0 0 20 20]", ""))
			state := "Off"
			if f.Value != "" {
				state = f.Value
			}
			n = t.add(fmt.Sprintf("<< /FT /Btn /T %s /V /%s /AS /%s /Ff %d /AP << /N << /Yes %s /Off %s >> >> %s%s >>",
				lit(f.Name), state, state, f.Flags, ref(on), ref(off), widget, parentEntry))
			annots[pageIdx] = append(annots[pageIdx], ref(n))
		case Radio:
			n = t.alloc()
			var kids []string
			for _, s := range f.Options {
				on := t.add(stream("/Type /XObject /Subtype /Form /BBox [0 0 20 20]", "q 0 g 5 5 10 10 re f Q"))
				off := t.add(stream("/Type /XObject /Subtype /Form /BBox [0 0 20 20]", ""))
				as := "Off"
				if s == f.Value {
					as = s
				}
				kr := rect(slots[pageIdx])
				slots[pageIdx]++
				kid := t.add(fmt.Sprintf("<< /Type /Annot /Subtype /Widget /F 4 /P %s /Rect %s /Parent %s /AS /%s /AP << /N << /%s %s /Off %s >> >> >>",
					ref(pageRef), kr, ref(n), as, s, ref(on), ref(off)))
				kids = append(kids, ref(kid))
				annots[pageIdx] = append(annots[pageIdx], ref(kid))
			}
			v := "Off"
			if f.Value != "" {
				v = f.Value
			}
			t.set(n, fmt.Sprintf("<< /FT /Btn /T %s /Ff %d /V /%s /Kids [%s]%s >>",
				lit(f.Name), FlagRadio|FlagNoToggleOff|f.Flags, v, strings.Join(kids, " "), parentEntry))
		case Combo, List:
			flags := f.Flags
			if f.Kind == Combo {
				flags |= FlagCombo
			}
			var opts []string
			for i, o := range f.Options {
				if i < len(f.Exports) {
					opts = append(opts, fmt.Sprintf("[%s %s]", lit(f.Exports[i]), lit(o)))
				} else {
					opts = append(opts, lit(o))
				}
			}
			extra := ""
			if f.Value != "" {
				extra = " /V " + lit(f.Value)
			}
			n = t.add(fmt.Sprintf("<< /FT /Ch /T %s /Ff %d /Opt [%s]%s /DA (/Helv 10 Tf 0 g) %s%s >>",
				lit(f.Name), flags, strings.Join(opts, " "), extra, widget, parentEntry))
			annots[pageIdx] = append(annots[pageIdx], ref(n))
		case Pushbutton:
			n = t.add(fmt.Sprintf("<< /FT /Btn /T %s /Ff %d %s%s >>", lit(f.Name), FlagPushbutton|f.Flags, widget, parentEntry))
			annots[pageIdx] = append(annots[pageIdx], ref(n))
		case Signature:
			n = t.add(fmt.Sprintf("<< /FT /Sig /T %s %s%s >>", lit(f.Name), widget, parentEntry))
			annots[pageIdx] = append(annots[pageIdx], ref(n))
		}

		if f.Parent != "" {
			parentKids[f.Parent] = append(parentKids[f.Parent], ref(n))
		} else {
			fieldRefs = append(fieldRefs, ref(n))
		}
	}

	for name, n := range parents {
		t.set(n, fmt.Sprintf("<< /T %s /Kids [%s] >>", lit(name), strings.Join(parentKids[name], " ")))
	}

	for i, p := range pageRefs {
		content := t.add(stream("", fmt.Sprintf("BT /Helv 12 Tf 72 750 Td (Page %d) Tj ET", i+1)))
		annotEntry := ""
		if len(annots[i]) > 0 {
			annotEntry = " /Annots [" + strings.Join(annots[i], " ") + "]"
		}
		t.set(p, fmt.Sprintf("<< /Type /Page /Parent %s /MediaBox [0 0 612 792] /Resources << /Font << /Helv %s >> >> /Contents %s%s >>",
			ref(pagesObj), ref(font), ref(content), annotEntry))
	}

	kids := make([]string, len(pageRefs))
	for i, p := range pageRefs {
		kids[i] = ref(p)
	}
	t.set(pagesObj, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids)))

	switch {
	case b.noAcroForm:
		t.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s >>", ref(pagesObj)))
	default:
		fields := strings.Join(fieldRefs, " ")
		if b.emptyForm {
			fields = ""
		}
		acro := t.add(fmt.Sprintf("<< /Fields [%s] /DA (/Helv 0 Tf 0 g) /DR << /Font << /Helv %s >> >> >>", fields, ref(font)))
		t.set(catalog, fmt.Sprintf("<< /Type /Catalog /Pages %s /AcroForm %s >>", ref(pagesObj), ref(acro)))
	}

	infoRef := 0
	if len(b.info) > 0 {
		var parts []string
		for _, k := range []string{"Title", "Author", "Subject"} {
			if v := b.info[k]; v != "" {
				parts = append(parts, fmt.Sprintf("/%s %s", k, lit(v)))
			}
		}
		infoRef = t.add("<< " + strings.Join(parts, " ") + " >>")
	}

	return render(t, catalog, infoRef)
}

func render(t *objectTable, root, info int) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")
	buf.Write([]byte{0x25, 0xE2, 0xE3, 0xCF, 0xD3, 0x0A})

	offsets := make([]int, len(t.bodies))
	for i, body := range t.bodies {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(t.bodies)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}

	trailer := fmt.Sprintf("/Size %d /Root %s", len(t.bodies)+1, ref(root))
	if info > 0 {
		trailer += " /Info " + ref(info)
	}
	trailer += " /ID [<0123456789abcdef0123456789abcdef> <0123456789abcdef0123456789abcdef>]"
	fmt.Fprintf(&buf, "trailer\n<< %s >>\nstartxref\n%d\n%%%%EOF\n", trailer, xref)
	return buf.Bytes()
}
