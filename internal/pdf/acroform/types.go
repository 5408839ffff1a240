package acroform

// FieldKind is the closed set of field kinds the engine can read and write
type FieldKind string

const (
	FieldKindText         FieldKind = "text"
	FieldKindCheckbox     FieldKind = "checkbox"
	FieldKindSingleChoice FieldKind = "single_choice"
	FieldKindMultiChoice  FieldKind = "multi_choice"
	FieldKindUnknown      FieldKind = "unknown"
)

// Field flag bits (PDF 32000-1, 12.7.3.1 and 12.7.4)
const (
	flagReadOnly    = 1 << 0
	flagRequired    = 1 << 1
	flagRadio       = 1 << 15
	flagPushbutton  = 1 << 16
	flagCombo       = 1 << 17
	flagMultiSelect = 1 << 21
)

// Annotation flag bits
const (
	annotHidden = 1 << 1
	annotNoView = 1 << 5
)

// FieldDescriptor describes one interactive field as read from the document
type FieldDescriptor struct {
	Name         string    `json:"name"`
	Kind         FieldKind `json:"kind"`
	CurrentValue any       `json:"current_value,omitempty"`
	Options      []string  `json:"options,omitempty"`
	MaxLength    *int      `json:"max_length,omitempty"`
	Page         int       `json:"page,omitempty"`
	ReadOnly     bool      `json:"read_only"`
	Required     bool      `json:"required"`
}

// Metadata holds document-level information
type Metadata struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	Subject   string `json:"subject,omitempty"`
	PageCount int    `json:"page_count"`
	HasForm   bool   `json:"has_form"`
}

// Catalog is the result of reading a document's form
type Catalog struct {
	Fields      []FieldDescriptor `json:"fields"`
	TotalFields int               `json:"total_fields"`
	Metadata    Metadata          `json:"metadata"`
}

// kindFor derives the field kind from the (inherited) FT and Ff entries
func kindFor(ft string, flags int) FieldKind {
	switch ft {
	case "Tx":
		return FieldKindText
	case "Btn":
		switch {
		case flags&flagPushbutton != 0:
			return FieldKindUnknown
		case flags&flagRadio != 0:
			return FieldKindSingleChoice
		default:
			return FieldKindCheckbox
		}
	case "Ch":
		return FieldKindMultiChoice
	default:
		return FieldKindUnknown
	}
}
