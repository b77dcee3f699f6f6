package models

// Scorecard kind constants
const (
	KindAIPolicy                 = "ai_policy"
	KindGovernmentAccountability = "government_accountability"
)

// Section is one scored subdivision of a scorecard
type Section struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Term     string `json:"term"`
	Required bool   `json:"required"`
}

var sectionCatalog = map[string][]Section{
	KindAIPolicy: {
		{Key: "transparency", Title: "Transparency", Term: "transparency", Required: true},
		{Key: "impact_assessment", Title: "Impact Assessment", Term: "algorithmic_impact_assessment", Required: true},
		{Key: "human_oversight", Title: "Human Oversight", Term: "human_oversight", Required: true},
		{Key: "risk_classification", Title: "Risk Classification", Term: "risk_classification", Required: true},
		{Key: "data_governance", Title: "Data Governance", Term: "data_governance", Required: true},
		{Key: "procurement", Title: "Procurement", Term: "procurement_standards", Required: false},
		{Key: "enforcement", Title: "Enforcement", Term: "enforcement_mechanism", Required: true},
	},
	KindGovernmentAccountability: {
		{Key: "bill_status", Title: "Bill Status", Term: "bill_status", Required: true},
		{Key: "accountability", Title: "Accountability", Term: "accountability", Required: true},
		{Key: "open_records", Title: "Open Records", Term: "open_records", Required: true},
		{Key: "public_comment", Title: "Public Comment", Term: "public_comment", Required: false},
		{Key: "audits", Title: "Audits", Term: "audit_requirement", Required: true},
		{Key: "whistleblowers", Title: "Whistleblower Protection", Term: "whistleblower_protection", Required: false},
	},
}

// IsValidKind reports whether kind has a section catalog
func IsValidKind(kind string) bool {
	_, ok := sectionCatalog[kind]
	return ok
}

// SectionsFor returns the ordered sections for a scorecard kind.
// The returned slice is a copy.
func SectionsFor(kind string) []Section {
	return append([]Section(nil), sectionCatalog[kind]...)
}

// FindSection looks up a section of kind by key
func FindSection(kind, key string) (Section, bool) {
	for _, s := range sectionCatalog[kind] {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}
