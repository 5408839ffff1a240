package descriptions

import "sort"

// Tool descriptions with practical examples and use cases

const (
	PDFFormValidateDescription = `Check that a file is a readable PDF and whether it carries a fillable form.

**When to use:** Before mapping or filling, to reject scans, flattened exports and broken uploads early.

**Why it's useful:** Runs a lightweight pre-flight without building the full object model, and reports page count and whether an AcroForm with fields exists.

**Examples:**
• Upload check: "Is antrag-wohngeld.pdf a fillable form?"
• Batch triage: "Validate every PDF in /forms/incoming before autofill"

**Best practices:** Skip pdf_form_fill for documents where has_form is false; they have nothing to fill.`

	PDFFormFieldsDescription = `List every interactive field of a PDF form.

**When to use:** To see which fields a form asks for before deciding what profile data to supply.

**Why it's useful:** Returns fully qualified field names, kinds (text, checkbox, single_choice, multi_choice), current values, options, length limits, page numbers and read-only or required flags, plus document title, author and page count.

**Examples:**
• "Which fields does kindergeld-antrag.pdf contain?"
• "What are the allowed values of the 'familienstand' field?"

**Best practices:** A document without a form returns an empty list with total_fields 0, which is not an error.`

	PDFFormMapDescription = `Match form fields to profile attributes without writing anything.

**When to use:** To preview what an autofill would do, or to review low-confidence matches first.

**Why it's useful:** Classifies each field name (German and English keywords, synonyms and patterns) into a purpose such as givenName or postalCode, resolves the value from the profile and scores it (100 keyword, 80 keyword prefix, 70 synonym, 50 pattern). Every field ends up either mapped or unmapped.

**Examples:**
• "Map antrag.pdf against {vorname: Anna, plz: 10115}"
• "Which fields of this form would stay empty for my profile?"

**Profile keys:** vorname/firstName, nachname/lastName, geburtsdatum/birthDate, adresse/address, strasse/street, hausnummer/houseNumber, plz/postalCode, stadt/city, monatliches_nettoeinkommen/income, monatliche_miete_kalt/rent, kinder_anzahl/childCount, haushalt_groesse/householdSize. Nested objects are searched too.`

	PDFFormFillDescription = `Fill a PDF form from a profile and save the result.

**When to use:** To produce a completed copy of a form from known user data.

**Why it's useful:** Maps fields like pdf_form_map, writes every mapped value, and reports per field what was filled and what failed. One field failing (value too long, option not offered, read-only) never stops the others, and the output is always a valid PDF.

**Examples:**
• "Fill antrag.pdf with my profile and flatten it"
• "Fill the form and stamp ENTWURF across every page"

**Options:** output_path (defaults to <name>_filled.pdf next to the input), flatten (bake values into the page and remove the form), watermark_text (diagonal, low-opacity stamp on every page).

**Best practices:** Review errors and unmapped_fields in the report, then try pdf_form_suggest for the unmapped ones.`

	PDFFormSuggestDescription = `Ask the semantic matching service for values of fields the rules could not map.

**When to use:** After pdf_form_map or pdf_form_fill left fields unmapped.

**Why it's useful:** Sends the unmapped fields and the profile to the configured matching service and returns suggestions with reasoning and confidence. Suggestions are never written automatically.

**Examples:**
• "Suggest values for the remaining fields of antrag.pdf"

**Best practices:** Only available when the server was started with a fallback URL; otherwise the result explains that the service is unavailable.`

	PDFServerInfoDescription = `Describe this server, its limits and the forms it can see.

**When to use:** At the start of a session, to learn the configured directory, file size limit, fill defaults and the available tools.

**Examples:**
• "What forms are available?"
• "Is semantic matching enabled?"`
)

// ToolDescriptions maps tool names to their descriptions
var ToolDescriptions = map[string]string{
	"pdf_form_validate": PDFFormValidateDescription,
	"pdf_form_fields":   PDFFormFieldsDescription,
	"pdf_form_map":      PDFFormMapDescription,
	"pdf_form_fill":     PDFFormFillDescription,
	"pdf_form_suggest":  PDFFormSuggestDescription,
	"pdf_server_info":   PDFServerInfoDescription,
}

// GetToolDescription returns the description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns the tool names in sorted order
func GetAllToolNames() []string {
	names := make([]string, 0, len(ToolDescriptions))
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
