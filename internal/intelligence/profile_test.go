package intelligence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueOf(t *testing.T) {
	tests := []struct {
		name string
		in   any
		kind ValueKind
		str  string
	}{
		{"nil", nil, ValueAbsent, ""},
		{"empty string is present", "", ValueString, ""},
		{"string", "Anna", ValueString, "Anna"},
		{"int", 3, ValueNumber, "3"},
		{"float", 1250.5, ValueNumber, "1250.5"},
		{"whole float", 850.0, ValueNumber, "850"},
		{"bool", true, ValueBool, "true"},
		{"json number", json.Number("42"), ValueNumber, "42"},
		{"map", map[string]any{"a": 1}, ValueAbsent, ""},
		{"slice", []any{1}, ValueAbsent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValueOf(tt.in)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.kind != ValueAbsent, v.Present())
			assert.Equal(t, tt.str, v.String())
		})
	}
}

func TestValue_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]Value{
		"a": StringValue("x"),
		"b": NumberValue(2),
		"c": BoolValue(false),
		"d": Absent(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":2,"c":false,"d":null}`, string(data))

	var v Value
	require.NoError(t, json.Unmarshal([]byte(`"10115"`), &v))
	assert.Equal(t, StringValue("10115"), v)
}

func TestProfile_Lookup(t *testing.T) {
	profile := Profile{
		"vorname": "Anna",
		"wohnung": map[string]any{
			"monatliche_miete_kalt": 650,
			"adresse":               map[string]any{"plz": "10115"},
		},
		"antragsteller": map[string]any{
			"vorname": "Berta",
			"stadt":   "Berlin",
		},
		"zzz": map[string]any{"stadt": "Hamburg"},
	}

	v, ok := profile.Lookup("vorname")
	require.True(t, ok)
	assert.Equal(t, "Anna", v, "top-level keys win over nested ones")

	v, ok = profile.Lookup("stadt")
	require.True(t, ok)
	assert.Equal(t, "Berlin", v, "nested maps are searched in sorted key order")

	v, ok = profile.Lookup("plz")
	require.True(t, ok)
	assert.Equal(t, "10115", v)

	_, ok = profile.Lookup("kinder_anzahl")
	assert.False(t, ok)
}

func TestResolver_Resolve(t *testing.T) {
	resolver := NewResolver()

	tests := []struct {
		name    string
		purpose Purpose
		profile Profile
		want    Value
	}{
		{
			name:    "german key",
			purpose: PurposeGivenName,
			profile: Profile{"vorname": "Anna"},
			want:    StringValue("Anna"),
		},
		{
			name:    "english key",
			purpose: PurposeFamilyName,
			profile: Profile{"lastName": "Schmidt"},
			want:    StringValue("Schmidt"),
		},
		{
			name:    "german key preferred",
			purpose: PurposeCity,
			profile: Profile{"stadt": "Berlin", "city": "Munich"},
			want:    StringValue("Berlin"),
		},
		{
			name:    "number",
			purpose: PurposeIncome,
			profile: Profile{"monatliches_nettoeinkommen": 1850.5},
			want:    NumberValue(1850.5),
		},
		{
			name:    "empty string counts as present",
			purpose: PurposeRent,
			profile: Profile{"monatliche_miete_kalt": ""},
			want:    StringValue(""),
		},
		{
			name:    "missing",
			purpose: PurposeChildCount,
			profile: Profile{"vorname": "Anna"},
			want:    Absent(),
		},
		{
			name:    "unknown purpose",
			purpose: PurposeUnknown,
			profile: Profile{"vorname": "Anna"},
			want:    Absent(),
		},
		{
			name:    "nil profile",
			purpose: PurposeGivenName,
			want:    Absent(),
		},
		{
			name:    "street from address",
			purpose: PurposeStreet,
			profile: Profile{"adresse": "Hauptstrasse 12"},
			want:    StringValue("Hauptstrasse"),
		},
		{
			name:    "house number from address",
			purpose: PurposeHouseNumber,
			profile: Profile{"address": "  Hauptstrasse 12  "},
			want:    StringValue("12"),
		},
		{
			name:    "direct street beats address",
			purpose: PurposeStreet,
			profile: Profile{"strasse": "Ringstrasse", "adresse": "Hauptstrasse 12"},
			want:    StringValue("Ringstrasse"),
		},
		{
			name:    "multi-word street splits on first space",
			purpose: PurposeStreet,
			profile: Profile{"adresse": "Unter den Linden 5"},
			want:    StringValue("Unter"),
		},
		{
			name:    "multi-word street yields wrong house number",
			purpose: PurposeHouseNumber,
			profile: Profile{"adresse": "Unter den Linden 5"},
			want:    StringValue("den"),
		},
		{
			name:    "address without house number",
			purpose: PurposeHouseNumber,
			profile: Profile{"adresse": "Marktplatz"},
			want:    Absent(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.purpose, tt.profile))
		})
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("vorname: Anna\nwohnung:\n  plz: \"10115\"\nkinder_anzahl: 2\n"), 0o600))
	profile, err := LoadProfile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, StringValue("Anna"), NewResolver().Resolve(PurposeGivenName, profile))
	assert.Equal(t, StringValue("10115"), NewResolver().Resolve(PurposePostalCode, profile))
	assert.Equal(t, NumberValue(2), NewResolver().Resolve(PurposeChildCount, profile))

	jsonPath := filepath.Join(dir, "profile.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"firstName":"Anna","income":2100}`), 0o600))
	profile, err = LoadProfile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, NumberValue(2100), NewResolver().Resolve(PurposeIncome, profile))

	_, err = LoadProfile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseProfile_Empty(t *testing.T) {
	profile, err := ParseProfile(nil)
	require.NoError(t, err)
	assert.NotNil(t, profile)
	assert.Empty(t, profile)
}
