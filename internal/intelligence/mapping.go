package intelligence

import (
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/acroform"
)

// MappingEntry pairs one field with the profile value chosen for it
type MappingEntry struct {
	FieldName  string             `json:"field_name"`
	Kind       acroform.FieldKind `json:"kind"`
	Purpose    Purpose            `json:"purpose"`
	Value      Value              `json:"value"`
	Confidence int                `json:"confidence"`
	Label      string             `json:"label"`
}

// UnmappedField is a field no profile value was found for
type UnmappedField struct {
	FieldName string             `json:"field_name"`
	Label     string             `json:"label"`
	Kind      acroform.FieldKind `json:"kind"`
	Purpose   Purpose            `json:"purpose"`
}

// MappingResult partitions catalog fields into mapped and unmapped
type MappingResult struct {
	Mapped      []MappingEntry  `json:"mapped"`
	Unmapped    []UnmappedField `json:"unmapped"`
	TotalFields int             `json:"total_fields"`
	MappingRate int             `json:"mapping_rate"`
}

// Mapper runs classify, resolve and score over a field catalog
type Mapper struct {
	classifier *Classifier
	resolver   *Resolver
	logger     *zap.Logger
}

// NewMapper creates a mapper. Nil arguments fall back to defaults.
func NewMapper(classifier *Classifier, resolver *Resolver, logger *zap.Logger) *Mapper {
	if classifier == nil {
		classifier = NewClassifier()
	}
	if resolver == nil {
		resolver = NewResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mapper{
		classifier: classifier,
		resolver:   resolver,
		logger:     logger,
	}
}

// Map classifies every field, resolves its value from profile and partitions the
// result. Mapped entries are sorted by descending confidence; ties keep catalog
// order.
func (m *Mapper) Map(fields []acroform.FieldDescriptor, profile Profile) *MappingResult {
	result := &MappingResult{
		Mapped:      []MappingEntry{},
		Unmapped:    []UnmappedField{},
		TotalFields: len(fields),
	}

	for _, field := range fields {
		class := m.classifier.Classify(field.Name)

		value := Absent()
		if class.Purpose != PurposeUnknown {
			value = m.resolver.Resolve(class.Purpose, profile)
		}

		if !value.Present() {
			result.Unmapped = append(result.Unmapped, UnmappedField{
				FieldName: field.Name,
				Label:     class.Label,
				Kind:      field.Kind,
				Purpose:   class.Purpose,
			})
			m.logger.Debug("field unmapped",
				zap.String("field", field.Name),
				zap.String("purpose", string(class.Purpose)))
			continue
		}

		entry := MappingEntry{
			FieldName:  field.Name,
			Kind:       field.Kind,
			Purpose:    class.Purpose,
			Value:      value,
			Confidence: m.classifier.Score(field.Name, class),
			Label:      class.Label,
		}
		result.Mapped = append(result.Mapped, entry)
		m.logger.Debug("field mapped",
			zap.String("field", field.Name),
			zap.String("purpose", string(class.Purpose)),
			zap.Int("confidence", entry.Confidence))
	}

	sort.SliceStable(result.Mapped, func(i, j int) bool {
		return result.Mapped[i].Confidence > result.Mapped[j].Confidence
	})

	if result.TotalFields > 0 {
		result.MappingRate = int(math.Round(float64(len(result.Mapped)) / float64(result.TotalFields) * 100))
	}
	return result
}
