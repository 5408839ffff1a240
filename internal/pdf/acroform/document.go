// Package acroform reads and mutates the interactive form of a single PDF document.
//
// A Document wraps one pdfcpu context for exactly one operation: open it from caller
// bytes, read or mutate fields, serialize it once with Bytes, then drop it.
package acroform

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

const maxFieldDepth = 32

// ErrDocumentClosed is returned when a Document is used after Bytes
var ErrDocumentClosed = errors.New("document already serialized")

// Document is an in-memory PDF with its terminal form fields
type Document struct {
	ctx       *model.Context
	acroForm  types.Dict
	fields    []*Field
	byName    map[string]*Field
	annotPage map[int]int
	pageByObj map[int]int
	fontRef   *types.IndirectRef
	seq       int
	closed    bool
}

// Field is a terminal form field together with its widget annotations
type Field struct {
	doc     *Document
	Name    string
	Kind    FieldKind
	dict    types.Dict
	flags   int
	maxLen  int
	da      string
	widgets []*Widget
}

// Widget is one visual representation of a field on a page
type Widget struct {
	dict  types.Dict
	objNr int
	Page  int
	Rect  [4]float64
}

type inherited struct {
	ft     string
	flags  int
	maxLen int
	da     string
}

// Open loads a document from raw bytes. Bytes that are not a readable PDF produce a
// DocumentLoad error; a PDF without a form yields a Document with no fields.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, pdferrors.NewDocumentLoadError(errors.New("input is empty"))
	}

	var doc *Document
	err := pdferrors.CapturePanic(pdferrors.ErrorTypeDocumentLoad, func() error {
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed

		ctx, err := api.ReadContext(bytes.NewReader(data), conf)
		if err != nil {
			return pdferrors.NewDocumentLoadError(fmt.Errorf("failed to read PDF context: %w", err))
		}
		if err := ctx.EnsurePageCount(); err != nil {
			return pdferrors.NewDocumentLoadError(fmt.Errorf("failed to ensure page count: %w", err))
		}

		d := &Document{
			ctx:       ctx,
			byName:    make(map[string]*Field),
			annotPage: make(map[int]int),
			pageByObj: make(map[int]int),
		}
		if err := d.load(); err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ReadCatalog opens data and returns its field catalog
func ReadCatalog(data []byte) (*Catalog, error) {
	doc, err := Open(data)
	if err != nil {
		return nil, err
	}
	return doc.Catalog(), nil
}

// load indexes pages and walks the AcroForm field tree
func (d *Document) load() error {
	d.indexPages()

	rootDict, err := d.ctx.Catalog()
	if err != nil {
		return pdferrors.NewDocumentLoadError(fmt.Errorf("failed to get catalog: %w", err))
	}

	acroFormObj, found := rootDict.Find("AcroForm")
	if !found {
		return nil
	}

	acroFormDict, err := d.ctx.DereferenceDict(acroFormObj)
	if err != nil {
		return pdferrors.NewDocumentLoadError(fmt.Errorf("failed to dereference AcroForm: %w", err))
	}
	if acroFormDict == nil {
		return nil
	}
	d.acroForm = acroFormDict

	fieldsObj, found := acroFormDict.Find("Fields")
	if !found {
		return nil
	}
	fieldsArray, err := d.ctx.DereferenceArray(fieldsObj)
	if err != nil {
		return pdferrors.NewDocumentLoadError(fmt.Errorf("failed to dereference Fields array: %w", err))
	}

	visited := make(map[int]bool)
	for i, fieldObj := range fieldsArray {
		d.walk(fieldObj, "", inherited{}, i, visited, 0)
	}
	return nil
}

// indexPages records which page every annotation object sits on
func (d *Document) indexPages() {
	for pageNr := 1; pageNr <= d.ctx.PageCount; pageNr++ {
		pageDict, pageRef, _, err := d.ctx.PageDict(pageNr, false)
		if err != nil || pageDict == nil {
			continue
		}
		if pageRef != nil {
			d.pageByObj[int(pageRef.ObjectNumber)] = pageNr
		}
		for _, annot := range d.array(pageDict, "Annots") {
			if ir, ok := annot.(types.IndirectRef); ok {
				d.annotPage[int(ir.ObjectNumber)] = pageNr
			}
		}
	}
}

func (d *Document) walk(obj types.Object, parentName string, inh inherited, index int, visited map[int]bool, depth int) {
	if depth > maxFieldDepth {
		return
	}

	objNr := 0
	if ir, ok := obj.(types.IndirectRef); ok {
		objNr = int(ir.ObjectNumber)
		if visited[objNr] {
			return
		}
		visited[objNr] = true
	}

	dict, err := d.ctx.DereferenceDict(obj)
	if err != nil || dict == nil {
		return
	}

	name := qualify(parentName, d.text(dict, "T"))
	inh = d.inherit(inh, dict)

	var childFields, widgetKids []types.Object
	for _, kid := range d.array(dict, "Kids") {
		kidDict, err := d.ctx.DereferenceDict(kid)
		if err != nil || kidDict == nil {
			continue
		}
		if _, hasName := kidDict.Find("T"); hasName {
			childFields = append(childFields, kid)
		} else {
			widgetKids = append(widgetKids, kid)
		}
	}

	if len(childFields) > 0 {
		for i, child := range childFields {
			d.walk(child, name, inh, i, visited, depth+1)
		}
		return
	}

	if name == "" {
		name = fmt.Sprintf("field_%d", index)
	}
	if _, dup := d.byName[name]; dup {
		name = fmt.Sprintf("%s_%d", name, len(d.fields))
	}

	field := &Field{
		doc:    d,
		Name:   name,
		Kind:   kindFor(inh.ft, inh.flags),
		dict:   dict,
		flags:  inh.flags,
		maxLen: inh.maxLen,
		da:     inh.da,
	}

	if len(widgetKids) == 0 {
		field.widgets = append(field.widgets, d.widget(dict, objNr))
	} else {
		for _, kid := range widgetKids {
			kidNr := 0
			if ir, ok := kid.(types.IndirectRef); ok {
				kidNr = int(ir.ObjectNumber)
			}
			if kidDict, err := d.ctx.DereferenceDict(kid); err == nil && kidDict != nil {
				field.widgets = append(field.widgets, d.widget(kidDict, kidNr))
			}
		}
	}

	d.fields = append(d.fields, field)
	d.byName[name] = field
}

// inherit overlays the inheritable entries of dict onto inh
func (d *Document) inherit(inh inherited, dict types.Dict) inherited {
	if ftObj, found := dict.Find("FT"); found {
		if ft, err := d.ctx.DereferenceName(ftObj, model.V10, nil); err == nil {
			inh.ft = string(ft)
		}
	}
	if flags, ok := d.integer(dict, "Ff"); ok {
		inh.flags = flags
	}
	if maxLen, ok := d.integer(dict, "MaxLen"); ok {
		inh.maxLen = maxLen
	}
	if da := d.text(dict, "DA"); da != "" {
		inh.da = da
	}
	return inh
}

func (d *Document) widget(dict types.Dict, objNr int) *Widget {
	w := &Widget{dict: dict, objNr: objNr}
	if page, ok := d.annotPage[objNr]; ok && objNr > 0 {
		w.Page = page
	} else if pObj, found := dict.Find("P"); found {
		if ir, ok := pObj.(types.IndirectRef); ok {
			w.Page = d.pageByObj[int(ir.ObjectNumber)]
		}
	}
	if rect := d.array(dict, "Rect"); len(rect) == 4 {
		for i, coord := range rect {
			if f, err := d.ctx.DereferenceNumber(coord); err == nil {
				w.Rect[i] = f
			}
		}
		if w.Rect[0] > w.Rect[2] {
			w.Rect[0], w.Rect[2] = w.Rect[2], w.Rect[0]
		}
		if w.Rect[1] > w.Rect[3] {
			w.Rect[1], w.Rect[3] = w.Rect[3], w.Rect[1]
		}
	}
	return w
}

func qualify(parent, partial string) string {
	switch {
	case parent == "":
		return partial
	case partial == "":
		return parent
	default:
		return parent + "." + partial
	}
}

// Fields returns the terminal fields in catalog order
func (d *Document) Fields() []*Field {
	return d.fields
}

// Field looks up a field by its fully qualified name
func (d *Document) Field(name string) (*Field, bool) {
	f, ok := d.byName[name]
	return f, ok
}

// PageCount returns the number of pages
func (d *Document) PageCount() int {
	return d.ctx.PageCount
}

// HasForm reports whether the document carries at least one form field
func (d *Document) HasForm() bool {
	return d.acroForm != nil && len(d.fields) > 0
}

// Metadata reads the document information dictionary
func (d *Document) Metadata() Metadata {
	m := Metadata{
		PageCount: d.ctx.PageCount,
		HasForm:   d.HasForm(),
	}
	if d.ctx.Info == nil {
		return m
	}
	info, err := d.ctx.DereferenceDict(*d.ctx.Info)
	if err != nil || info == nil {
		return m
	}
	m.Title = d.text(info, "Title")
	m.Author = d.text(info, "Author")
	m.Subject = d.text(info, "Subject")
	return m
}

// Catalog returns the descriptors of all fields plus document metadata
func (d *Document) Catalog() *Catalog {
	descriptors := make([]FieldDescriptor, 0, len(d.fields))
	for _, f := range d.fields {
		descriptors = append(descriptors, f.Descriptor())
	}
	return &Catalog{
		Fields:      descriptors,
		TotalFields: len(descriptors),
		Metadata:    d.Metadata(),
	}
}

// SetNeedAppearances asks viewers to regenerate field appearances
func (d *Document) SetNeedAppearances() {
	if d.acroForm != nil {
		d.acroForm["NeedAppearances"] = types.Boolean(true)
	}
}

// Bytes serializes the document. The Document must not be used afterwards.
func (d *Document) Bytes() ([]byte, error) {
	if d.closed {
		return nil, ErrDocumentClosed
	}
	d.closed = true

	var buf bytes.Buffer
	err := pdferrors.CapturePanic(pdferrors.ErrorTypeUnknown, func() error {
		return api.WriteContext(d.ctx, &buf)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// text dereferences a string, hex string or name entry
func (d *Document) text(dict types.Dict, key string) string {
	obj, found := dict.Find(key)
	if !found {
		return ""
	}
	if s, err := d.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
		return s
	}
	if n, err := d.ctx.DereferenceName(obj, model.V10, nil); err == nil {
		return string(n)
	}
	return ""
}

func (d *Document) name(dict types.Dict, key string) (string, bool) {
	obj, found := dict.Find(key)
	if !found {
		return "", false
	}
	n, err := d.ctx.DereferenceName(obj, model.V10, nil)
	if err != nil {
		return "", false
	}
	return string(n), true
}

func (d *Document) integer(dict types.Dict, key string) (int, bool) {
	obj, found := dict.Find(key)
	if !found {
		return 0, false
	}
	i, err := d.ctx.DereferenceInteger(obj)
	if err != nil || i == nil {
		return 0, false
	}
	return int(*i), true
}

func (d *Document) array(dict types.Dict, key string) types.Array {
	obj, found := dict.Find(key)
	if !found {
		return nil
	}
	arr, err := d.ctx.DereferenceArray(obj)
	if err != nil {
		return nil
	}
	return arr
}

func (d *Document) dict(dict types.Dict, key string) types.Dict {
	obj, found := dict.Find(key)
	if !found {
		return nil
	}
	sub, err := d.ctx.DereferenceDict(obj)
	if err != nil {
		return nil
	}
	return sub
}

func (d *Document) nextName(prefix string) string {
	d.seq++
	return fmt.Sprintf("%s%d", prefix, d.seq)
}
