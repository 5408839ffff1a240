package acroform

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/mimitechai/mcp-pdf-autofill/internal/pdf/errors"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdftest"
)

func TestReadCatalog_EmptyForms(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{
			name: "no AcroForm",
			data: pdftest.New().WithoutAcroForm().Build(),
		},
		{
			name: "empty Fields array",
			data: pdftest.New().WithEmptyForm().TextField("ignored", "").Build(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := ReadCatalog(tt.data)
			require.NoError(t, err)
			assert.Empty(t, catalog.Fields)
			assert.Equal(t, 0, catalog.TotalFields)
			assert.False(t, catalog.Metadata.HasForm)
			assert.Equal(t, 1, catalog.Metadata.PageCount)
		})
	}
}

func TestReadCatalog_InvalidInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "nil", data: nil},
		{name: "text", data: []byte("this is not a pdf")},
		{name: "truncated header", data: []byte("%PDF-1.7\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog, err := ReadCatalog(tt.data)
			require.Error(t, err)
			assert.Nil(t, catalog)
			assert.True(t, pdferrors.IsDocumentLoad(err), "got %v", err)
		})
	}
}

func TestReadCatalog_Kinds(t *testing.T) {
	data := pdftest.New().
		TextField("vorname", "Anna").
		CheckboxField("agb", true).
		RadioField("familienstand", []string{"ledig", "verheiratet"}, "verheiratet").
		ComboField("bundesland", []string{"Berlin", "Hamburg"}, "Hamburg").
		Field(pdftest.FieldSpec{Name: "sprachen", Kind: pdftest.List, Options: []string{"de", "en"}}).
		Field(pdftest.FieldSpec{Name: "senden", Kind: pdftest.Pushbutton}).
		Field(pdftest.FieldSpec{Name: "unterschrift", Kind: pdftest.Signature}).
		Build()

	catalog, err := ReadCatalog(data)
	require.NoError(t, err)
	require.Len(t, catalog.Fields, 7)
	assert.Equal(t, 7, catalog.TotalFields)
	assert.True(t, catalog.Metadata.HasForm)

	want := []struct {
		name  string
		kind  FieldKind
		value any
	}{
		{"vorname", FieldKindText, "Anna"},
		{"agb", FieldKindCheckbox, true},
		{"familienstand", FieldKindSingleChoice, "verheiratet"},
		{"bundesland", FieldKindMultiChoice, "Hamburg"},
		{"sprachen", FieldKindMultiChoice, nil},
		{"senden", FieldKindUnknown, nil},
		{"unterschrift", FieldKindUnknown, nil},
	}
	for i, w := range want {
		f := catalog.Fields[i]
		assert.Equal(t, w.name, f.Name)
		assert.Equal(t, w.kind, f.Kind, "kind of %s", w.name)
		assert.Equal(t, w.value, f.CurrentValue, "value of %s", w.name)
		assert.Equal(t, 1, f.Page, "page of %s", w.name)
	}

	assert.Equal(t, []string{"ledig", "verheiratet"}, catalog.Fields[2].Options)
	assert.Equal(t, []string{"Berlin", "Hamburg"}, catalog.Fields[3].Options)
	assert.Nil(t, catalog.Fields[0].Options)
}

func TestReadCatalog_UncheckedCheckbox(t *testing.T) {
	catalog, err := ReadCatalog(pdftest.New().CheckboxField("newsletter", false).Build())
	require.NoError(t, err)
	require.Len(t, catalog.Fields, 1)
	assert.Equal(t, false, catalog.Fields[0].CurrentValue)
}

func TestReadCatalog_Constraints(t *testing.T) {
	data := pdftest.New().
		Field(pdftest.FieldSpec{Name: "plz", Kind: pdftest.Text, MaxLen: 5, Flags: pdftest.FlagRequired}).
		Field(pdftest.FieldSpec{Name: "kennung", Kind: pdftest.Text, Value: "A-17", Flags: pdftest.FlagReadOnly}).
		Build()

	catalog, err := ReadCatalog(data)
	require.NoError(t, err)
	require.Len(t, catalog.Fields, 2)

	plz := catalog.Fields[0]
	require.NotNil(t, plz.MaxLength)
	assert.Equal(t, 5, *plz.MaxLength)
	assert.True(t, plz.Required)
	assert.False(t, plz.ReadOnly)

	kennung := catalog.Fields[1]
	assert.Nil(t, kennung.MaxLength)
	assert.True(t, kennung.ReadOnly)
	assert.Equal(t, "A-17", kennung.CurrentValue)
}

func TestReadCatalog_QualifiedNamesAndPages(t *testing.T) {
	data := pdftest.New().Pages(2).
		Field(pdftest.FieldSpec{Name: "vorname", Kind: pdftest.Text, Parent: "antragsteller"}).
		Field(pdftest.FieldSpec{Name: "nachname", Kind: pdftest.Text, Parent: "antragsteller"}).
		Field(pdftest.FieldSpec{Name: "miete", Kind: pdftest.Text, Page: 2}).
		Build()

	catalog, err := ReadCatalog(data)
	require.NoError(t, err)
	require.Len(t, catalog.Fields, 3)

	assert.Equal(t, "antragsteller.vorname", catalog.Fields[0].Name)
	assert.Equal(t, "antragsteller.nachname", catalog.Fields[1].Name)
	assert.Equal(t, "miete", catalog.Fields[2].Name)
	assert.Equal(t, 1, catalog.Fields[0].Page)
	assert.Equal(t, 2, catalog.Fields[2].Page)
	assert.Equal(t, 2, catalog.Metadata.PageCount)
}

func TestReadCatalog_ChoiceExportValues(t *testing.T) {
	data := pdftest.New().
		Field(pdftest.FieldSpec{
			Name:    "land",
			Kind:    pdftest.Combo,
			Options: []string{"Deutschland", "Oesterreich"},
			Exports: []string{"DE", "AT"},
			Value:   "AT",
		}).
		Build()

	catalog, err := ReadCatalog(data)
	require.NoError(t, err)
	require.Len(t, catalog.Fields, 1)
	assert.Equal(t, []string{"Deutschland", "Oesterreich"}, catalog.Fields[0].Options)
	assert.Equal(t, "AT", catalog.Fields[0].CurrentValue)
}

func TestReadCatalog_Metadata(t *testing.T) {
	data := pdftest.New().Pages(3).
		Info("Wohngeldantrag", "Bezirksamt", "Antrag auf Mietzuschuss").
		TextField("vorname", "").
		Build()

	catalog, err := ReadCatalog(data)
	require.NoError(t, err)
	assert.Equal(t, Metadata{
		Title:     "Wohngeldantrag",
		Author:    "Bezirksamt",
		Subject:   "Antrag auf Mietzuschuss",
		PageCount: 3,
		HasForm:   true,
	}, catalog.Metadata)
}

func TestReadCatalog_Idempotent(t *testing.T) {
	data := pdftest.New().
		TextField("vorname", "Anna").
		CheckboxField("agb", false).
		RadioField("anrede", []string{"frau", "herr"}, "").
		ComboField("bundesland", []string{"Berlin", "Bremen"}, "").
		Build()

	first, err := ReadCatalog(data)
	require.NoError(t, err)
	second, err := ReadCatalog(data)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("catalog differs between reads (-first +second):\n%s", diff)
	}
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		ft    string
		flags int
		want  FieldKind
	}{
		{"Tx", 0, FieldKindText},
		{"Tx", flagReadOnly, FieldKindText},
		{"Btn", 0, FieldKindCheckbox},
		{"Btn", flagRadio, FieldKindSingleChoice},
		{"Btn", flagPushbutton, FieldKindUnknown},
		{"Ch", flagCombo, FieldKindMultiChoice},
		{"Ch", flagMultiSelect, FieldKindMultiChoice},
		{"Sig", 0, FieldKindUnknown},
		{"", 0, FieldKindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, kindFor(tt.ft, tt.flags), "FT=%q Ff=%d", tt.ft, tt.flags)
	}
}
