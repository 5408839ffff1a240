package descriptions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		t.Run(name, func(t *testing.T) {
			assert.NotEqual(t, "Tool description not available", GetToolDescription(name))
		})
	}
	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames(t *testing.T) {
	assert.Equal(t, []string{
		"pdf_form_fields",
		"pdf_form_fill",
		"pdf_form_map",
		"pdf_form_suggest",
		"pdf_form_validate",
		"pdf_server_info",
	}, GetAllToolNames())
}
