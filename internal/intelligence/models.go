package intelligence

// Purpose is the inferred real-world meaning of a form field
type Purpose string

const (
	PurposeUnknown       Purpose = "unknown"
	PurposeGivenName     Purpose = "givenName"
	PurposeFamilyName    Purpose = "familyName"
	PurposeBirthDate     Purpose = "birthDate"
	PurposeStreet        Purpose = "street"
	PurposeHouseNumber   Purpose = "houseNumber"
	PurposePostalCode    Purpose = "postalCode"
	PurposeCity          Purpose = "city"
	PurposeIncome        Purpose = "income"
	PurposeRent          Purpose = "rent"
	PurposeChildCount    Purpose = "childCount"
	PurposeHouseholdSize Purpose = "householdSize"
)

// Category groups purposes; categories are evaluated in a fixed priority order
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategoryAddress   Category = "address"
	CategoryFinancial Category = "financial"
	CategoryHousehold Category = "household"
)

// categoryOrder is the evaluation order of rule categories
var categoryOrder = []Category{
	CategoryPersonal,
	CategoryAddress,
	CategoryFinancial,
	CategoryHousehold,
}

// Confidence levels of a mapping entry
const (
	ConfidenceKeyword = 100
	ConfidencePrefix  = 80
	ConfidenceSynonym = 70
	ConfidenceFloor   = 50

	keywordPrefixLen = 4
)

// PurposeRule maps a set of name fragments to one purpose
type PurposeRule struct {
	Name     string   `json:"name" yaml:"name"`
	Purpose  Purpose  `json:"purpose" yaml:"purpose"`
	Category Category `json:"category" yaml:"category"`
	Label    string   `json:"label" yaml:"label"`

	// Keyword is the canonical fragment; confidence is scored against it
	Keyword  string   `json:"keyword" yaml:"keyword"`
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
	// Patterns are regular expressions matched against the lower-cased name
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// RuleSet is the on-disk format for additional rules
type RuleSet struct {
	Version string        `json:"version" yaml:"version"`
	Rules   []PurposeRule `json:"rules" yaml:"rules"`
}

// Classification is the outcome of classifying one field name
type Classification struct {
	Purpose Purpose `json:"purpose"`
	Label   string  `json:"label"`
	Rule    string  `json:"rule,omitempty"`
}

// DisplayName returns the German display label of a purpose
func (p Purpose) DisplayName() string {
	switch p {
	case PurposeGivenName:
		return "Vorname"
	case PurposeFamilyName:
		return "Nachname"
	case PurposeBirthDate:
		return "Geburtsdatum"
	case PurposeStreet:
		return "Straße"
	case PurposeHouseNumber:
		return "Hausnummer"
	case PurposePostalCode:
		return "Postleitzahl"
	case PurposeCity:
		return "Stadt"
	case PurposeIncome:
		return "Monatliches Nettoeinkommen"
	case PurposeRent:
		return "Monatliche Kaltmiete"
	case PurposeChildCount:
		return "Anzahl Kinder"
	case PurposeHouseholdSize:
		return "Haushaltsgröße"
	default:
		return "Unbekannt"
	}
}

// IsValid checks if the purpose is one of the known tags
func (p Purpose) IsValid() bool {
	switch p {
	case PurposeUnknown, PurposeGivenName, PurposeFamilyName, PurposeBirthDate,
		PurposeStreet, PurposeHouseNumber, PurposePostalCode, PurposeCity,
		PurposeIncome, PurposeRent, PurposeChildCount, PurposeHouseholdSize:
		return true
	default:
		return false
	}
}

// AllPurposes returns every known purpose except unknown
func AllPurposes() []Purpose {
	return []Purpose{
		PurposeGivenName,
		PurposeFamilyName,
		PurposeBirthDate,
		PurposeStreet,
		PurposeHouseNumber,
		PurposePostalCode,
		PurposeCity,
		PurposeIncome,
		PurposeRent,
		PurposeChildCount,
		PurposeHouseholdSize,
	}
}

func categoryRank(c Category) int {
	for i, oc := range categoryOrder {
		if oc == c {
			return i
		}
	}
	return len(categoryOrder)
}
