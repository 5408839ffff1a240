package acroform

import (
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

const offState = "Off"

type choiceOption struct {
	export  string
	display string
}

// Descriptor builds the read-only description of the field
func (f *Field) Descriptor() FieldDescriptor {
	desc := FieldDescriptor{
		Name:         f.Name,
		Kind:         f.Kind,
		CurrentValue: f.CurrentValue(),
		Options:      f.Options(),
		ReadOnly:     f.ReadOnly(),
		Required:     f.flags&flagRequired != 0,
	}
	if f.Kind == FieldKindText && f.maxLen > 0 {
		maxLen := f.maxLen
		desc.MaxLength = &maxLen
	}
	if len(f.widgets) > 0 {
		desc.Page = f.widgets[0].Page
	}
	return desc
}

// ReadOnly reports whether the field carries the ReadOnly flag
func (f *Field) ReadOnly() bool {
	return f.flags&flagReadOnly != 0
}

// Widgets returns the widget annotations of the field
func (f *Field) Widgets() []*Widget {
	return f.widgets
}

// Options lists the selectable values: display values for choice fields and
// on-state names for radio groups. Other kinds have none.
func (f *Field) Options() []string {
	switch f.Kind {
	case FieldKindMultiChoice:
		opts := f.choiceOptions()
		if len(opts) == 0 {
			return nil
		}
		out := make([]string, len(opts))
		for i, o := range opts {
			out[i] = o.display
		}
		return out
	case FieldKindSingleChoice:
		return f.radioStates()
	default:
		return nil
	}
}

// CurrentValue returns the stored value: string for text and radio, bool for
// checkboxes, string or []string for choice fields, nil when unset.
func (f *Field) CurrentValue() any {
	d := f.doc
	obj, found := f.dict.Find("V")
	if !found {
		if f.Kind == FieldKindCheckbox {
			return false
		}
		return nil
	}

	switch f.Kind {
	case FieldKindText:
		if s, err := d.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
			return s
		}
	case FieldKindCheckbox:
		if n, err := d.ctx.DereferenceName(obj, model.V10, nil); err == nil {
			return n != "" && string(n) != offState
		}
		return false
	case FieldKindSingleChoice:
		if n, err := d.ctx.DereferenceName(obj, model.V10, nil); err == nil && n != "" && string(n) != offState {
			return string(n)
		}
	case FieldKindMultiChoice:
		if s, err := d.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
			return s
		}
		if arr, err := d.ctx.DereferenceArray(obj); err == nil {
			var values []string
			for _, item := range arr {
				if s, err := d.ctx.DereferenceStringOrHexLiteral(item, model.V10, nil); err == nil {
					values = append(values, s)
				}
			}
			return values
		}
	case FieldKindUnknown:
		if s, err := d.ctx.DereferenceStringOrHexLiteral(obj, model.V10, nil); err == nil {
			return s
		}
		if n, err := d.ctx.DereferenceName(obj, model.V10, nil); err == nil {
			return string(n)
		}
	}
	return nil
}

// choiceOptions reads /Opt; entries are strings or [export display] pairs
func (f *Field) choiceOptions() []choiceOption {
	d := f.doc
	var opts []choiceOption
	for _, opt := range d.array(f.dict, "Opt") {
		if s, err := d.ctx.DereferenceStringOrHexLiteral(opt, model.V10, nil); err == nil {
			opts = append(opts, choiceOption{export: s, display: s})
			continue
		}
		arr, err := d.ctx.DereferenceArray(opt)
		if err != nil || len(arr) < 2 {
			continue
		}
		export, err1 := d.ctx.DereferenceStringOrHexLiteral(arr[0], model.V10, nil)
		display, err2 := d.ctx.DereferenceStringOrHexLiteral(arr[1], model.V10, nil)
		if err1 == nil && err2 == nil {
			opts = append(opts, choiceOption{export: export, display: display})
		}
	}
	return opts
}

// radioStates collects the distinct on-states of all widgets in widget order
func (f *Field) radioStates() []string {
	var states []string
	seen := make(map[string]bool)
	for _, w := range f.widgets {
		for _, s := range f.doc.widgetStates(w) {
			if !seen[s] {
				seen[s] = true
				states = append(states, s)
			}
		}
	}
	return states
}

// widgetStates lists the non-Off appearance state names of a widget
func (d *Document) widgetStates(w *Widget) []string {
	ap := d.dict(w.dict, "AP")
	if ap == nil {
		return nil
	}
	obj, found := ap.Find("N")
	if !found {
		return nil
	}
	n, err := d.ctx.DereferenceDict(obj)
	if err != nil || n == nil {
		return nil
	}
	// Keys are visited in lexical order.
	var states []string
	for _, k := range sortedKeys(n) {
		if k != offState {
			states = append(states, k)
		}
	}
	return states
}

// onState returns the checkbox on-state, "Yes" when the widgets declare none
func (f *Field) onState() string {
	for _, w := range f.widgets {
		if states := f.doc.widgetStates(w); len(states) > 0 {
			return states[0]
		}
	}
	return "Yes"
}

func sortedKeys(dict types.Dict) []string {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
