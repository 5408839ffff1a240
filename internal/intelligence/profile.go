package intelligence

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ValueKind tells which scalar a Value holds
type ValueKind int

const (
	ValueAbsent ValueKind = iota
	ValueString
	ValueNumber
	ValueBool
)

// Value is one resolved profile scalar. The zero Value is absent, which is
// distinct from an empty string.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// Absent returns the absent value
func Absent() Value { return Value{} }

// StringValue wraps a string
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// NumberValue wraps a number
func NumberValue(n float64) Value { return Value{kind: ValueNumber, num: n} }

// BoolValue wraps a boolean
func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// ValueOf converts a decoded profile attribute. Maps, slices and nil are absent.
func ValueOf(v any) Value {
	switch x := v.(type) {
	case nil:
		return Absent()
	case Value:
		return x
	case string:
		return StringValue(x)
	case bool:
		return BoolValue(x)
	case int:
		return NumberValue(float64(x))
	case int8:
		return NumberValue(float64(x))
	case int16:
		return NumberValue(float64(x))
	case int32:
		return NumberValue(float64(x))
	case int64:
		return NumberValue(float64(x))
	case uint:
		return NumberValue(float64(x))
	case uint8:
		return NumberValue(float64(x))
	case uint16:
		return NumberValue(float64(x))
	case uint32:
		return NumberValue(float64(x))
	case uint64:
		return NumberValue(float64(x))
	case float32:
		return NumberValue(float64(x))
	case float64:
		return NumberValue(x)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NumberValue(f)
		}
		return StringValue(x.String())
	default:
		return Absent()
	}
}

// Kind returns the held scalar kind
func (v Value) Kind() ValueKind { return v.kind }

// Present reports whether the value carries data
func (v Value) Present() bool { return v.kind != ValueAbsent }

// String renders the value the way it is written into a text field
func (v Value) String() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// Raw returns the Go value: string, float64, bool, or nil when absent
func (v Value) Raw() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return v.num
	case ValueBool:
		return v.b
	default:
		return nil
	}
}

// MarshalJSON encodes the raw scalar, null when absent
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Raw())
}

// UnmarshalJSON decodes a JSON scalar
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = ValueOf(raw)
	return nil
}

// Profile is the user attribute bag. Values may be scalars or nested maps.
type Profile map[string]any

// Lookup finds key at the top level first, then in nested maps depth-first in
// sorted key order
func (p Profile) Lookup(key string) (any, bool) {
	return lookup(map[string]any(p), key, 0)
}

const maxProfileDepth = 16

func lookup(m map[string]any, key string, depth int) (any, bool) {
	if depth > maxProfileDepth {
		return nil, false
	}
	if v, ok := m[key]; ok {
		if _, nested := asMap(v); !nested {
			return v, true
		}
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := asMap(m[k]); ok {
			if v, found := lookup(nested, key, depth+1); found {
				return v, true
			}
		}
	}
	return nil, false
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Profile:
		return map[string]any(m), true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// ParseProfile decodes a JSON or YAML profile document
func ParseProfile(data []byte) (Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	if p == nil {
		p = Profile{}
	}
	return p, nil
}

// LoadProfile reads a profile file; .json files are decoded as JSON, anything
// else as YAML
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		var p Profile
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("failed to parse profile: %w", err)
		}
		if p == nil {
			p = Profile{}
		}
		return p, nil
	}
	return ParseProfile(data)
}

// profileKeys lists the attribute names consulted per purpose, German first
var profileKeys = map[Purpose][]string{
	PurposeGivenName:     {"vorname", "firstName"},
	PurposeFamilyName:    {"nachname", "lastName"},
	PurposeBirthDate:     {"geburtsdatum", "birthDate"},
	PurposeStreet:        {"strasse", "street"},
	PurposeHouseNumber:   {"hausnummer", "houseNumber"},
	PurposePostalCode:    {"plz", "postalCode"},
	PurposeCity:          {"stadt", "city"},
	PurposeIncome:        {"monatliches_nettoeinkommen", "income"},
	PurposeRent:          {"monatliche_miete_kalt", "rent"},
	PurposeChildCount:    {"kinder_anzahl", "childCount"},
	PurposeHouseholdSize: {"haushalt_groesse", "householdSize"},
}

var addressKeys = []string{"adresse", "address"}

// Resolver looks up the profile value for a purpose
type Resolver struct{}

// NewResolver creates a resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve returns the profile value for purpose, or Absent. Street and house
// number fall back to splitting the combined address on a single space: token 0
// is the street, token 1 the house number. Multi-word street names split wrongly
// ("Unter den Linden 5" yields "Unter" and "den").
func (r *Resolver) Resolve(purpose Purpose, profile Profile) Value {
	if profile == nil {
		return Absent()
	}
	if v := firstPresent(profile, profileKeys[purpose]); v.Present() {
		return v
	}

	switch purpose {
	case PurposeStreet:
		return addressToken(profile, 0)
	case PurposeHouseNumber:
		return addressToken(profile, 1)
	}
	return Absent()
}

func firstPresent(profile Profile, keys []string) Value {
	for _, k := range keys {
		if raw, ok := profile.Lookup(k); ok {
			if v := ValueOf(raw); v.Present() {
				return v
			}
		}
	}
	return Absent()
}

func addressToken(profile Profile, index int) Value {
	addr := firstPresent(profile, addressKeys)
	if addr.Kind() != ValueString {
		return Absent()
	}
	tokens := strings.Split(strings.TrimSpace(addr.String()), " ")
	if index >= len(tokens) || tokens[index] == "" {
		return Absent()
	}
	return StringValue(tokens[index])
}
