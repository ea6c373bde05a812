// Package catalog models the study-abroad program catalog and its
// structured filter queries.
package catalog

// Document is a schemaless program record as stored in the catalog
// collection. Filters evaluate against this form.
type Document map[string]interface{}

// Program is the typed shape of a catalog record as it appears in the
// YAML seed file. The queryable field names follow the collection
// schema advertised to the query translator.
type Program struct {
	Ranking            int     `yaml:"ranking" json:"ranking"`
	ProgramName        string  `yaml:"program_name" json:"program_name"`
	UniversityName     string  `yaml:"university_name" json:"university_name"`
	Location           string  `yaml:"location" json:"location"`
	GloveraPricing     float64 `yaml:"glovera_pricing" json:"glovera_pricing"`
	OriginalPricing    float64 `yaml:"original_pricing" json:"original_pricing"`
	SavingsPercent     float64 `yaml:"savings_percent" json:"savings_percent"`
	PublicPrivate      string  `yaml:"public_private" json:"public_private"`
	KeyJobRoles        string  `yaml:"key_job_roles" json:"key_job_roles"`
	TypeOfProgram      string  `yaml:"type_of_program" json:"type_of_program"`
	QuantOrQualitative string  `yaml:"quant_or_qualitative" json:"quant_or_qualitative"`
	MinGPA             float64 `yaml:"min_gpa" json:"min_gpa"`
}

// ToDocument converts a typed program into its schemaless stored form.
func (p Program) ToDocument() Document {
	return Document{
		"ranking":              p.Ranking,
		"program_name":         p.ProgramName,
		"university_name":      p.UniversityName,
		"location":             p.Location,
		"glovera_pricing":      p.GloveraPricing,
		"original_pricing":     p.OriginalPricing,
		"savings_percent":      p.SavingsPercent,
		"public_private":       p.PublicPrivate,
		"key_job_roles":        p.KeyJobRoles,
		"type_of_program":      p.TypeOfProgram,
		"quant_or_qualitative": p.QuantOrQualitative,
		"min_gpa":              p.MinGPA,
	}
}

// FieldSchema is the natural-language description of the queryable
// fields, embedded in the translator prompt.
const FieldSchema = `ranking (integer): Rank of the university or program.
program_name (string): The name of the program (e.g., MBA, MS in Information Technology).
university_name (string): The name of the university offering the program.
location (string): The city and state of the institution.
glovera_pricing (float): Discounted pricing for the program in USD.
original_pricing (float): Original pricing for the program in USD.
savings_percent (float): Percentage saved through discounts.
public_private (string): Indicates whether the institution is public or private.
key_job_roles (string): Key job roles associated with the program.
type_of_program (string): Type of program (e.g., MBA, MS).
quant_or_qualitative (string): Indicates if the program is quantitative or qualitative.
min_gpa (float): Minimum GPA requirement for admission.`
