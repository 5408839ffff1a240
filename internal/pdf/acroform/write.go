package acroform

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
)

func (f *Field) writable(kinds ...FieldKind) error {
	if f.doc.closed {
		return ErrDocumentClosed
	}
	if f.ReadOnly() {
		return pdferrors.NewFieldWriteError(f.Name, "field is read-only")
	}
	for _, k := range kinds {
		if f.Kind == k {
			return nil
		}
	}
	return pdferrors.NewFieldWriteError(f.Name, fmt.Sprintf("cannot write this value to a %s field", f.Kind))
}

// SetText stores a text value and regenerates the field appearance
func (f *Field) SetText(value string) error {
	if err := f.writable(FieldKindText); err != nil {
		return err
	}
	if f.maxLen > 0 && utf8.RuneCountInString(value) > f.maxLen {
		return pdferrors.NewFieldWriteError(f.Name,
			fmt.Sprintf("value has %d characters, field allows %d", utf8.RuneCountInString(value), f.maxLen))
	}

	return f.transact([]string{"V"}, func() error {
		f.dict["V"] = encodeText(value)
		return f.setTextAppearance(value)
	})
}

// SetChecked switches a checkbox on or off
func (f *Field) SetChecked(on bool) error {
	if err := f.writable(FieldKindCheckbox); err != nil {
		return err
	}

	state := offState
	if on {
		state = f.onState()
	}

	return f.transact([]string{"V"}, func() error {
		f.dict["V"] = types.Name(state)
		for _, w := range f.widgets {
			if on {
				if err := f.ensureToggleAppearance(w, state); err != nil {
					return err
				}
			}
			widgetState := offState
			if on {
				widgetState = state
				if states := f.doc.widgetStates(w); len(states) > 0 {
					widgetState = states[0]
				}
			}
			w.dict["AS"] = types.Name(widgetState)
		}
		return nil
	})
}

// SelectRadio turns on the radio button whose on-state is state
func (f *Field) SelectRadio(state string) error {
	if err := f.writable(FieldKindSingleChoice); err != nil {
		return err
	}

	states := f.radioStates()
	selected := ""
	for _, s := range states {
		if s == state {
			selected = s
			break
		}
	}
	if selected == "" {
		for _, s := range states {
			if strings.EqualFold(s, state) {
				selected = s
				break
			}
		}
	}
	if selected == "" {
		return pdferrors.NewFieldWriteError(f.Name,
			fmt.Sprintf("value %q is not one of the options [%s]", state, strings.Join(states, ", ")))
	}

	f.dict["V"] = types.Name(selected)
	for _, w := range f.widgets {
		as := offState
		for _, s := range f.doc.widgetStates(w) {
			if s == selected {
				as = s
			}
		}
		w.dict["AS"] = types.Name(as)
	}
	return nil
}

// SelectChoice selects the combo or list option whose export or display value
// matches value
func (f *Field) SelectChoice(value string) error {
	if err := f.writable(FieldKindMultiChoice); err != nil {
		return err
	}

	opts := f.choiceOptions()
	idx := -1
	for i, o := range opts {
		if o.export == value || o.display == value {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, o := range opts {
			if strings.EqualFold(o.export, value) || strings.EqualFold(o.display, value) {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		names := make([]string, len(opts))
		for i, o := range opts {
			names[i] = o.display
		}
		return pdferrors.NewFieldWriteError(f.Name,
			fmt.Sprintf("value %q is not one of the options [%s]", value, strings.Join(names, ", ")))
	}

	return f.transact([]string{"V", "I"}, func() error {
		f.dict["V"] = encodeText(opts[idx].export)
		f.dict["I"] = types.Array{types.Integer(idx)}
		return f.setTextAppearance(opts[idx].display)
	})
}

type savedEntry struct {
	obj   types.Object
	found bool
}

func snapshot(dict types.Dict, keys ...string) map[string]savedEntry {
	saved := make(map[string]savedEntry, len(keys))
	for _, k := range keys {
		obj, found := dict.Find(k)
		saved[k] = savedEntry{obj: obj, found: found}
	}
	return saved
}

func restore(dict types.Dict, saved map[string]savedEntry) {
	for k, e := range saved {
		if e.found {
			dict[k] = e.obj
		} else {
			delete(dict, k)
		}
	}
}

// transact runs write and, if it fails, puts back the given field entries and
// every widget's /AP and /AS so a failed write leaves the field as it was
func (f *Field) transact(keys []string, write func() error) error {
	fieldSaved := snapshot(f.dict, keys...)
	widgetSaved := make([]map[string]savedEntry, len(f.widgets))
	for i, w := range f.widgets {
		widgetSaved[i] = snapshot(w.dict, "AP", "AS")
	}

	if err := write(); err != nil {
		for i, w := range f.widgets {
			restore(w.dict, widgetSaved[i])
		}
		restore(f.dict, fieldSaved)
		return err
	}
	return nil
}
