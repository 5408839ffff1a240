package acroform

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

const maxInheritDepth = 64

// Flatten draws every visible widget's normal appearance into its page content,
// then removes the widget annotations and the AcroForm. Fields with a value but
// no appearance get one generated first.
func (d *Document) Flatten() error {
	if d.closed {
		return ErrDocumentClosed
	}
	if d.acroForm == nil {
		return nil
	}

	return pdferrors.CapturePanic(pdferrors.ErrorTypeFlatten, func() error {
		ops := make(map[int]*strings.Builder)
		removed := make(map[int]bool)

		for _, f := range d.fields {
			if err := f.ensureValueAppearance(); err != nil {
				return pdferrors.WrapError(pdferrors.ErrorTypeFlatten, "failed to build appearance for "+f.Name, err)
			}
			for _, w := range f.widgets {
				if w.objNr > 0 {
					removed[w.objNr] = true
				}
				if w.Page == 0 || !w.visible() {
					continue
				}
				op, err := d.placeAppearance(w)
				if err != nil {
					return pdferrors.WrapError(pdferrors.ErrorTypeFlatten, "failed to place appearance for "+f.Name, err)
				}
				if op == "" {
					continue
				}
				b, ok := ops[w.Page]
				if !ok {
					b = &strings.Builder{}
					ops[w.Page] = b
				}
				b.WriteString(op)
			}
		}

		for pageNr := 1; pageNr <= d.ctx.PageCount; pageNr++ {
			pageDict, _, _, err := d.ctx.PageDict(pageNr, false)
			if err != nil || pageDict == nil {
				continue
			}
			if b, ok := ops[pageNr]; ok {
				if err := d.appendContent(pageDict, b.String()); err != nil {
					return pdferrors.WrapError(pdferrors.ErrorTypeFlatten, fmt.Sprintf("failed to update page %d", pageNr), err)
				}
			}
			d.dropAnnots(pageDict, removed)
		}

		root, err := d.ctx.Catalog()
		if err != nil {
			return pdferrors.WrapError(pdferrors.ErrorTypeFlatten, "failed to get catalog", err)
		}
		delete(root, "AcroForm")
		d.acroForm = nil
		d.fields = nil
		d.byName = make(map[string]*Field)
		return nil
	})
}

func (w *Widget) visible() bool {
	flags, ok := w.dict["F"].(types.Integer)
	if !ok {
		return true
	}
	return int(flags)&(annotHidden|annotNoView) == 0
}

// ensureValueAppearance generates appearances for valued text and choice fields
// that were never given one
func (f *Field) ensureValueAppearance() error {
	if f.Kind != FieldKindText && f.Kind != FieldKindMultiChoice {
		return nil
	}
	missing := false
	for _, w := range f.widgets {
		if f.doc.dict(w.dict, "AP") == nil {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	switch v := f.CurrentValue().(type) {
	case string:
		if v == "" {
			return nil
		}
		if f.Kind == FieldKindMultiChoice {
			for _, o := range f.choiceOptions() {
				if o.export == v {
					v = o.display
					break
				}
			}
		}
		return f.setTextAppearance(v)
	case []string:
		if len(v) > 0 {
			return f.setTextAppearance(strings.Join(v, ", "))
		}
	}
	return nil
}

// placeAppearance registers the widget's normal appearance on its page and returns
// the content operators painting it into the widget rectangle
func (d *Document) placeAppearance(w *Widget) (string, error) {
	ap := d.dict(w.dict, "AP")
	if ap == nil {
		return "", nil
	}
	nObj, found := ap.Find("N")
	if !found {
		return "", nil
	}

	// /N is either a stream reference or a state dictionary, direct or indirect,
	// keyed by /AS
	var err error
	obj := nObj
	ref, isRef := nObj.(types.IndirectRef)
	if isRef {
		if obj, err = d.ctx.Dereference(ref); err != nil {
			return "", err
		}
	}
	if states, isDict := obj.(types.Dict); isDict {
		as, ok := d.name(w.dict, "AS")
		if !ok {
			return "", nil
		}
		stateObj, found := states.Find(as)
		if !found {
			return "", nil
		}
		if ref, isRef = stateObj.(types.IndirectRef); !isRef {
			return "", nil
		}
		if obj, err = d.ctx.Dereference(ref); err != nil {
			return "", err
		}
	} else if !isRef {
		return "", nil
	}

	var sd types.Dict
	switch s := obj.(type) {
	case types.StreamDict:
		sd = s.Dict
	case *types.StreamDict:
		sd = s.Dict
	default:
		return "", nil
	}
	if sd == nil {
		return "", nil
	}
	if _, found := sd.Find("Subtype"); !found {
		sd["Subtype"] = types.Name("Form")
	}

	width, height := w.size()
	bboxW, bboxH := width, height
	if bbox := d.array(sd, "BBox"); len(bbox) == 4 {
		var c [4]float64
		for i, v := range bbox {
			if f, err := d.ctx.DereferenceNumber(v); err == nil {
				c[i] = f
			}
		}
		bboxW, bboxH = c[2]-c[0], c[3]-c[1]
	}
	if bboxW <= 0 || bboxH <= 0 || width <= 0 || height <= 0 {
		return "", nil
	}

	pageDict, _, _, err := d.ctx.PageDict(w.Page, false)
	if err != nil || pageDict == nil {
		return "", err
	}
	name := d.nextName("AFFlat")
	if err := d.addXObject(pageDict, name, ref); err != nil {
		return "", err
	}

	return fmt.Sprintf("q %s 0 0 %s %s %s cm /%s Do Q\n",
		formatNumber(width/bboxW), formatNumber(height/bboxH),
		formatNumber(w.Rect[0]), formatNumber(w.Rect[1]), name), nil
}

// pageResources returns the page's resource dictionary, making an inherited one
// local so the page can be extended without touching its siblings
func (d *Document) pageResources(pageDict types.Dict) types.Dict {
	if res := d.dict(pageDict, "Resources"); res != nil {
		return res
	}

	node := pageDict
	for i := 0; i < maxInheritDepth; i++ {
		parent := d.dict(node, "Parent")
		if parent == nil {
			break
		}
		if res := d.dict(parent, "Resources"); res != nil {
			local := types.Dict{}
			for k, v := range res {
				local[k] = v
			}
			pageDict["Resources"] = local
			return local
		}
		node = parent
	}

	local := types.Dict{}
	pageDict["Resources"] = local
	return local
}

func (d *Document) addXObject(pageDict types.Dict, name string, ref types.IndirectRef) error {
	res := d.pageResources(pageDict)
	xobjects := d.dict(res, "XObject")
	if xobjects == nil {
		xobjects = types.Dict{}
		res["XObject"] = xobjects
	}
	xobjects[name] = ref
	return nil
}

// appendContent wraps the existing page content in q/Q and appends ops
func (d *Document) appendContent(pageDict types.Dict, ops string) error {
	var contents types.Array
	if obj, found := pageDict.Find("Contents"); found {
		switch c := obj.(type) {
		case types.IndirectRef:
			if arr, err := d.ctx.DereferenceArray(c); err == nil && arr != nil {
				contents = append(contents, arr...)
			} else {
				contents = append(contents, c)
			}
		case types.Array:
			contents = append(contents, c...)
		}
	}

	pre, err := d.newStream(types.Dict{}, []byte("q\n"))
	if err != nil {
		return err
	}
	post, err := d.newStream(types.Dict{}, []byte("\nQ\n"+ops))
	if err != nil {
		return err
	}

	newContents := make(types.Array, 0, len(contents)+2)
	newContents = append(newContents, *pre)
	newContents = append(newContents, contents...)
	newContents = append(newContents, *post)
	pageDict["Contents"] = newContents
	return nil
}

// dropAnnots removes the given annotation objects from the page
func (d *Document) dropAnnots(pageDict types.Dict, removed map[int]bool) {
	annots := d.array(pageDict, "Annots")
	if annots == nil {
		return
	}
	kept := make(types.Array, 0, len(annots))
	for _, a := range annots {
		if ir, ok := a.(types.IndirectRef); ok && removed[int(ir.ObjectNumber)] {
			continue
		}
		if ad, err := d.ctx.DereferenceDict(a); err == nil && ad != nil {
			if st, ok := d.name(ad, "Subtype"); ok && st == "Widget" {
				if _, isField := ad.Find("Parent"); isField {
					continue
				}
				if _, isField := ad.Find("FT"); isField {
					continue
				}
			}
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		delete(pageDict, "Annots")
		return
	}
	pageDict["Annots"] = kept
}
