package errors

import (
	"fmt"
)

// CaptureFieldPanic runs fn and converts a panic into a FieldWrite error for field.
// pdfcpu dereferencing can panic on malformed object graphs; one bad field must not
// abort the batch.
func CaptureFieldPanic(field string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewFieldWriteError(field, fmt.Sprintf("panic while writing field: %v", r))
		}
	}()
	return fn()
}

// CapturePanic runs fn and converts a panic into a PDFError of the given type
func CapturePanic(errorType ErrorType, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewPDFError(errorType, fmt.Sprintf("panic: %v", r))
		}
	}()
	return fn()
}
