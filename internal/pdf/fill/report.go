package fill

import (
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
)

// FilledField is one field that received a value
type FilledField struct {
	Field string `json:"field"`
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldError is one field that could not be written
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Report summarizes a fill operation. It is built once per Fill call.
type Report struct {
	FilledFields   []FilledField                `json:"filled_fields"`
	Errors         []FieldError                 `json:"errors"`
	TotalFields    int                          `json:"total_fields"`
	FilledCount    int                          `json:"filled_count"`
	ErrorCount     int                          `json:"error_count"`
	UnmappedFields []intelligence.UnmappedField `json:"unmapped_fields"`
	Flattened      bool                         `json:"flattened"`
	Watermarked    bool                         `json:"watermarked"`
	Warnings       []string                     `json:"warnings,omitempty"`
}

// Result is the serialized output of Fill
type Result struct {
	Bytes  []byte  `json:"-"`
	Report *Report `json:"report"`
}

func newReport(totalFields int, unmapped []intelligence.UnmappedField) *Report {
	if unmapped == nil {
		unmapped = []intelligence.UnmappedField{}
	}
	return &Report{
		FilledFields:   []FilledField{},
		Errors:         []FieldError{},
		TotalFields:    totalFields,
		UnmappedFields: unmapped,
	}
}

func (r *Report) filled(entry intelligence.MappingEntry, value string) {
	r.FilledFields = append(r.FilledFields, FilledField{
		Field: entry.FieldName,
		Value: value,
		Label: entry.Label,
	})
	r.FilledCount = len(r.FilledFields)
}

func (r *Report) failed(field string, err error) {
	r.Errors = append(r.Errors, FieldError{Field: field, Message: err.Error()})
	r.ErrorCount = len(r.Errors)
}
