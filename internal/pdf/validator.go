package pdf

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pdfHeader is the magic every PDF file starts with
const pdfHeader = "%PDF-"

// Validator performs the cheap pre-flight checks on PDF input
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// ValidateBytes reports whether data is a readable PDF, its page count and
// whether it has a form with at least one field. It walks only the trailer
// and page tree, never the whole object graph.
func (v *Validator) ValidateBytes(data []byte) ValidationResult {
	if len(data) == 0 {
		return ValidationResult{Error: "input is empty"}
	}
	if v.maxFileSize > 0 && int64(len(data)) > v.maxFileSize {
		return ValidationResult{Error: fmt.Sprintf("file too large: %d bytes (max: %d bytes)", len(data), v.maxFileSize)}
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data[:min(len(data), 1024)], "\x00\t\n\r "), []byte(pdfHeader)) {
		return ValidationResult{Error: "missing PDF header"}
	}

	result, err := inspect(data)
	if err != nil {
		return ValidationResult{Error: fmt.Sprintf("invalid PDF file: %v", err)}
	}
	return result
}

// inspect reads the document with the lightweight reader. The reader panics
// on some malformed inputs, which is reported as an error.
func inspect(data []byte) (result ValidationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ValidationResult{}, err
	}

	fields := reader.Trailer().Key("Root").Key("AcroForm").Key("Fields")
	return ValidationResult{
		Valid:     true,
		PageCount: reader.NumPage(),
		HasForm:   fields.Kind() == pdf.Array && fields.Len() > 0,
	}, nil
}

// ValidateFile checks the file on disk and then its contents
func (v *Validator) ValidateFile(path string) ValidationResult {
	if err := v.checkFile(path); err != nil {
		return ValidationResult{Path: path, Error: err.Error()}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationResult{Path: path, Error: fmt.Sprintf("cannot read file: %v", err)}
	}
	result := v.ValidateBytes(data)
	result.Path = path
	return result
}

// checkFile performs the stat-level checks shared by ValidateFile and the readers
func (v *Validator) checkFile(filePath string) error {
	if filePath == "" {
		return fmt.Errorf("path cannot be empty")
	}

	fileInfo, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("file does not exist: %s", filePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access file: %w", err)
	}

	return v.ValidateFileInfo(filePath, fileInfo)
}

// ValidateFileInfo performs basic validation on file info without opening the PDF
func (v *Validator) ValidateFileInfo(filePath string, fileInfo os.FileInfo) error {
	if fileInfo.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	if !strings.HasSuffix(strings.ToLower(filePath), ".pdf") {
		return fmt.Errorf("file is not a PDF: %s", filePath)
	}

	if fileInfo.Size() == 0 {
		return fmt.Errorf("file is empty: %s", filePath)
	}

	if fileInfo.Size() > v.maxFileSize {
		return fmt.Errorf("file too large: %d bytes (max: %d bytes)",
			fileInfo.Size(), v.maxFileSize)
	}

	return nil
}
