package pdf

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// ContentTypePDF is the media type of every download
	ContentTypePDF = "application/pdf"

	filledSuffix = "_filled.pdf"
	defaultBase  = "form"
)

// Download wraps filled output for handing to a user
type Download struct {
	Filename    string `json:"filename"`
	Data        []byte `json:"-"`
	Size        int64  `json:"size"`
	SizeLabel   string `json:"size_label"`
	ContentType string `json:"content_type"`
}

// NewDownload names data after the source document: "antrag.pdf" becomes
// "antrag_filled.pdf"
func NewDownload(name string, data []byte) Download {
	return Download{
		Filename:    FilledName(name),
		Data:        data,
		Size:        int64(len(data)),
		SizeLabel:   FormatSize(int64(len(data))),
		ContentType: ContentTypePDF,
	}
}

// FilledName derives the output file name from a source path or name
func FilledName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".pdf") {
		base = strings.TrimSuffix(base, ext)
	}
	if base == "" || base == "." || base == string(filepath.Separator) {
		base = defaultBase
	}
	return base + filledSuffix
}

// FormatSize renders a byte count with 1024-based units and one decimal,
// e.g. "128.4 KB"
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
