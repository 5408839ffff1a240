package intelligence

// DefaultRules returns the built-in purpose rules in evaluation order
func DefaultRules() []PurposeRule {
	return []PurposeRule{
		// Personal
		{
			Name:     "given_name",
			Purpose:  PurposeGivenName,
			Category: CategoryPersonal,
			Label:    PurposeGivenName.DisplayName(),
			Keyword:  "vorname",
			Synonyms: []string{
				"firstname", "first_name", "givenname", "given_name", "rufname",
			},
			Patterns:    []string{`(^|[^a-z])fname([^a-z]|$)`},
			Enabled:     true,
			Description: "First name of the applicant",
		},
		{
			Name:     "family_name",
			Purpose:  PurposeFamilyName,
			Category: CategoryPersonal,
			Label:    PurposeFamilyName.DisplayName(),
			Keyword:  "nachname",
			Synonyms: []string{
				"familienname", "lastname", "last_name", "surname", "familyname", "family_name",
			},
			Patterns:    []string{`(^|[^a-z])lname([^a-z]|$)`},
			Enabled:     true,
			Description: "Last name of the applicant",
		},
		{
			Name:     "birth_date",
			Purpose:  PurposeBirthDate,
			Category: CategoryPersonal,
			Label:    PurposeBirthDate.DisplayName(),
			Keyword:  "geburtsdatum",
			Synonyms: []string{
				"birthdate", "birth_date", "dateofbirth", "date_of_birth", "dob",
			},
			Patterns:    []string{`geb(\.|_|-)?dat`},
			Enabled:     true,
			Description: "Date of birth",
		},

		// Address. Postal code and house number come first so compound names such
		// as plz_wohnort or strasse_hausnr resolve to the more specific tag.
		{
			Name:     "postal_code",
			Purpose:  PurposePostalCode,
			Category: CategoryAddress,
			Label:    PurposePostalCode.DisplayName(),
			Keyword:  "postleitzahl",
			Synonyms: []string{
				"plz", "postal", "zip", "postcode",
			},
			Enabled:     true,
			Description: "Postal code of the residence",
		},
		{
			Name:     "house_number",
			Purpose:  PurposeHouseNumber,
			Category: CategoryAddress,
			Label:    PurposeHouseNumber.DisplayName(),
			Keyword:  "hausnummer",
			Synonyms: []string{
				"hausnr", "housenumber", "house_number", "hnr",
			},
			Enabled:     true,
			Description: "House number of the residence",
		},
		{
			Name:     "street",
			Purpose:  PurposeStreet,
			Category: CategoryAddress,
			Label:    PurposeStreet.DisplayName(),
			Keyword:  "strasse",
			Synonyms: []string{
				"straße", "street", "strase",
			},
			Patterns:    []string{`(^|[^a-z])str\.?([^a-z]|$)`},
			Enabled:     true,
			Description: "Street of the residence",
		},
		{
			Name:     "city",
			Purpose:  PurposeCity,
			Category: CategoryAddress,
			Label:    PurposeCity.DisplayName(),
			Keyword:  "stadt",
			Synonyms: []string{
				"wohnort", "ort", "city", "gemeinde", "town",
			},
			Enabled:     true,
			Description: "City of the residence",
		},

		// Financial
		{
			Name:     "income",
			Purpose:  PurposeIncome,
			Category: CategoryFinancial,
			Label:    PurposeIncome.DisplayName(),
			Keyword:  "einkommen",
			Synonyms: []string{
				"income", "netto", "gehalt", "lohn", "salary", "einkuenfte",
			},
			Enabled:     true,
			Description: "Monthly net income",
		},
		{
			Name:     "rent",
			Purpose:  PurposeRent,
			Category: CategoryFinancial,
			Label:    PurposeRent.DisplayName(),
			Keyword:  "miete",
			Synonyms: []string{
				"rent", "mietkosten",
			},
			Enabled:     true,
			Description: "Monthly base rent",
		},

		// Household
		{
			Name:     "child_count",
			Purpose:  PurposeChildCount,
			Category: CategoryHousehold,
			Label:    PurposeChildCount.DisplayName(),
			Keyword:  "kinder",
			Synonyms: []string{
				"children", "kids", "kind",
			},
			Enabled:     true,
			Description: "Number of children in the household",
		},
		{
			Name:     "household_size",
			Purpose:  PurposeHouseholdSize,
			Category: CategoryHousehold,
			Label:    PurposeHouseholdSize.DisplayName(),
			Keyword:  "haushalt",
			Synonyms: []string{
				"household", "personen", "persons",
			},
			Enabled:     true,
			Description: "Number of persons in the household",
		},
	}
}
