package spec

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Specification is the decoded form of a compliance specification document.
// Modules is open-ended: only "token_sale" has generator-level semantics,
// every other module is opaque data summarized by the document generators.
type Specification struct {
	Version  string                    `yaml:"version" json:"version"`
	Metadata Metadata                  `yaml:"metadata" json:"metadata"`
	Modules  map[string]map[string]any `yaml:"modules" json:"modules"`
}

// Metadata holds the descriptive block of a specification.
// GeneratedFrom/GeneratedAt are provenance fields stamped by the
// jurisdiction registry, not authored by hand.
type Metadata struct {
	ProjectName         string   `yaml:"project_name,omitempty" json:"project_name,omitempty"`
	Description         string   `yaml:"description,omitempty" json:"description,omitempty"`
	CreatedDate         string   `yaml:"created_date,omitempty" json:"created_date,omitempty"`
	Jurisdiction        string   `yaml:"jurisdiction,omitempty" json:"jurisdiction,omitempty"`
	RegulationFramework string   `yaml:"regulation_framework,omitempty" json:"regulation_framework,omitempty"`
	References          []string `yaml:"references,omitempty" json:"references,omitempty"`
	GeneratedFrom       string   `yaml:"generated_from,omitempty" json:"generated_from,omitempty"`
	GeneratedAt         string   `yaml:"generated_at,omitempty" json:"generated_at,omitempty"`
}

// TokenSale is the typed view of modules.token_sale. Every field is
// optional; pointer fields distinguish "absent" from a zero value.
type TokenSale struct {
	AccreditedOnly              *bool    `yaml:"accredited_only,omitempty"`
	KYCThresholdUSD             *uint64  `yaml:"kyc_threshold_usd,omitempty"`
	AMLRequired                 *bool    `yaml:"aml_required,omitempty"`
	MaxCapUSD                   *uint64  `yaml:"max_cap_usd,omitempty"`
	MinInvestmentUSD            *uint64  `yaml:"min_investment_usd,omitempty"`
	MaxInvestmentUSD            *uint64  `yaml:"max_investment_usd,omitempty"`
	SelfAttestationThresholdUSD *uint64  `yaml:"self_attestation_threshold_usd,omitempty"`
	StartDate                   string   `yaml:"start_date,omitempty"`
	EndDate                     string   `yaml:"end_date,omitempty"`
	Blocklist                   []string `yaml:"blocklist,omitempty"`
	Whitelist                   []string `yaml:"whitelist,omitempty"`
	LockupDays                  *uint64  `yaml:"lockup_days,omitempty"`
	RequiredDisclosures         []string `yaml:"required_disclosures,omitempty"`
	UtilityRequirements         []string `yaml:"utility_requirements,omitempty"`
	TokenClassification         string   `yaml:"token_classification,omitempty"`
}

// ModuleTokenSale is the one module name the contract generators consume.
const ModuleTokenSale = "token_sale"

// TokenSale decodes modules.token_sale into its typed view. The second
// return is false when the module is absent.
func (s *Specification) TokenSale() (*TokenSale, bool) {
	raw, ok := s.Modules[ModuleTokenSale]
	if !ok {
		return nil, false
	}

	// Round through YAML so the open-ended map decodes with the same
	// coercion rules the document came in with.
	encoded, err := yaml.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var ts TokenSale
	if err := yaml.Unmarshal(encoded, &ts); err != nil {
		return nil, false
	}
	return &ts, true
}

// ModuleNames returns the module names present, sorted, for stable
// document output.
func (s *Specification) ModuleNames() []string {
	names := make([]string, 0, len(s.Modules))
	for name := range s.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy via YAML round-trip. Registry callers mutate
// clones freely without touching the canonical template.
func (s *Specification) Clone() *Specification {
	encoded, err := yaml.Marshal(s)
	if err != nil {
		// Specification only holds YAML-representable values; a marshal
		// failure here means the struct itself is broken.
		panic("spec: clone marshal: " + err.Error())
	}
	var out Specification
	if err := yaml.Unmarshal(encoded, &out); err != nil {
		panic("spec: clone unmarshal: " + err.Error())
	}
	return &out
}

// ToYAML serializes the specification back to YAML bytes.
func (s *Specification) ToYAML() ([]byte, error) {
	return yaml.Marshal(s)
}
