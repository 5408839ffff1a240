package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// PDFError is a categorized failure raised while loading, filling or escalating a form
type PDFError struct {
	Type        ErrorType `json:"type"`
	Message     string    `json:"message"`
	Field       string    `json:"field,omitempty"`
	Context     string    `json:"context,omitempty"`
	Recoverable bool      `json:"recoverable"`
	Timestamp   time.Time `json:"timestamp"`
	Cause       error     `json:"-"`
}

// ErrorType represents the failure categories of the autofill pipeline
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeDocumentLoad
	ErrorTypeFieldWrite
	ErrorTypeFallbackUnavailable
	ErrorTypeInvalidInput
	ErrorTypeFlatten
	ErrorTypeWatermark
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity int

const (
	SeverityInfo ErrorSeverity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type.String(), e.Message)
	if e.Field != "" {
		msg = fmt.Sprintf("[%s] field %q: %s", e.Type.String(), e.Field, e.Message)
	}
	if e.Context != "" {
		msg += ": " + e.Context
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (caused by: %v)", e.Cause)
	}
	return msg
}

// Unwrap exposes the underlying cause
func (e *PDFError) Unwrap() error {
	return e.Cause
}

// Is matches any PDFError of the same type, so errors.Is(err, &PDFError{Type: ...}) works
func (e *PDFError) Is(target error) bool {
	var t *PDFError
	if !stderrors.As(target, &t) {
		return false
	}
	return t.Type == e.Type && t.Message == "" && t.Field == ""
}

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeDocumentLoad:
		return "DOCUMENT_LOAD"
	case ErrorTypeFieldWrite:
		return "FIELD_WRITE"
	case ErrorTypeFallbackUnavailable:
		return "FALLBACK_UNAVAILABLE"
	case ErrorTypeInvalidInput:
		return "INVALID_INPUT"
	case ErrorTypeFlatten:
		return "FLATTEN"
	case ErrorTypeWatermark:
		return "WATERMARK"
	default:
		return "UNKNOWN"
	}
}

// GetSeverity returns the severity level for a given error type
func (et ErrorType) GetSeverity() ErrorSeverity {
	switch et {
	case ErrorTypeDocumentLoad, ErrorTypeInvalidInput:
		return SeverityFatal
	case ErrorTypeFieldWrite:
		return SeverityError
	case ErrorTypeFallbackUnavailable, ErrorTypeFlatten, ErrorTypeWatermark:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// IsRecoverable reports whether the pipeline continues after an error of this type
func (et ErrorType) IsRecoverable() bool {
	switch et {
	case ErrorTypeDocumentLoad, ErrorTypeInvalidInput:
		return false
	case ErrorTypeFieldWrite, ErrorTypeFallbackUnavailable, ErrorTypeFlatten, ErrorTypeWatermark:
		return true
	default:
		return false
	}
}

// NewPDFError creates a new PDFError of the given type
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{
		Type:        errorType,
		Message:     message,
		Recoverable: errorType.IsRecoverable(),
		Timestamp:   time.Now(),
	}
}

// WrapError wraps a standard error as a PDFError
func WrapError(errorType ErrorType, message string, err error) *PDFError {
	e := NewPDFError(errorType, message)
	e.Cause = err
	return e
}

// NewDocumentLoadError reports bytes that are not a readable PDF container
func NewDocumentLoadError(cause error) *PDFError {
	return WrapError(ErrorTypeDocumentLoad, "document could not be loaded", cause)
}

// NewFieldWriteError reports a single field that could not be written
func NewFieldWriteError(field, message string) *PDFError {
	e := NewPDFError(ErrorTypeFieldWrite, message)
	e.Field = field
	return e
}

// NewFallbackUnavailableError reports that the advisory matching service failed
func NewFallbackUnavailableError(cause error) *PDFError {
	return WrapError(ErrorTypeFallbackUnavailable, "semantic matching service unavailable", cause)
}

// WithContext adds context to an existing PDFError
func (e *PDFError) WithContext(context string) *PDFError {
	e.Context = context
	return e
}

// GetSeverity returns the severity of this specific error
func (e *PDFError) GetSeverity() ErrorSeverity {
	return e.Type.GetSeverity()
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var pe *PDFError
	if stderrors.As(err, &pe) {
		return pe.Type
	}
	return ErrorTypeUnknown
}

// IsDocumentLoad reports whether err is a DocumentLoad failure
func IsDocumentLoad(err error) bool {
	return TypeOf(err) == ErrorTypeDocumentLoad
}

// IsFieldWrite reports whether err is a per-field write failure
func IsFieldWrite(err error) bool {
	return TypeOf(err) == ErrorTypeFieldWrite
}

// IsFallbackUnavailable reports whether err came from the advisory service
func IsFallbackUnavailable(err error) bool {
	return TypeOf(err) == ErrorTypeFallbackUnavailable
}
