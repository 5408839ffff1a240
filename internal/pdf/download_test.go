package pdf

import "testing"

func TestFormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{131481, "128.4 KB"},
		{1536 * 1024, "1.5 MB"},
		{5 * 1024 * 1024 * 1024, "5.0 GB"},
		{3 * 1024 * 1024 * 1024 * 1024, "3.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatSize(tt.size); got != tt.want {
				t.Errorf("FormatSize(%d) = %q, want %q", tt.size, got, tt.want)
			}
		})
	}
}

func TestFilledName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"antrag.pdf", "antrag_filled.pdf"},
		{"/forms/Wohngeld-Antrag.PDF", "Wohngeld-Antrag_filled.pdf"},
		{"scan", "scan_filled.pdf"},
		{"archive.tar", "archive.tar_filled.pdf"},
		{"", "form_filled.pdf"},
		{"   ", "form_filled.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FilledName(tt.name); got != tt.want {
				t.Errorf("FilledName(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewDownload(t *testing.T) {
	data := make([]byte, 2048)
	d := NewDownload("antrag.pdf", data)

	if d.Filename != "antrag_filled.pdf" {
		t.Errorf("Filename = %q", d.Filename)
	}
	if d.Size != 2048 {
		t.Errorf("Size = %d, want 2048", d.Size)
	}
	if d.SizeLabel != "2.0 KB" {
		t.Errorf("SizeLabel = %q, want 2.0 KB", d.SizeLabel)
	}
	if d.ContentType != ContentTypePDF {
		t.Errorf("ContentType = %q", d.ContentType)
	}
	if len(d.Data) != len(data) {
		t.Errorf("Data length = %d", len(d.Data))
	}
}
