package docgen

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"guardrail/internal/spec"
)

// Manifest is the JSON audit manifest. Enforcement counts come from the
// same classifier the policy document uses.
type Manifest struct {
	ManifestID          string             `json:"manifest_id"`
	ComplianceFramework FrameworkInfo      `json:"compliance_framework"`
	EnforcementSummary  EnforcementSummary `json:"enforcement_summary"`
	ModulesImplemented  []string           `json:"modules_implemented"`
	ComplianceChecks    []string           `json:"compliance_checks"`
	GeneratedArtifacts  []string           `json:"generated_artifacts"`
	ContentHash         string             `json:"content_hash,omitempty"`
}

// FrameworkInfo identifies what the specification claims compliance with.
type FrameworkInfo struct {
	Version      string `json:"version"`
	Jurisdiction string `json:"jurisdiction"`
	Framework    string `json:"framework"`
	GeneratedAt  string `json:"generated_at"`
}

// EnforcementSummary counts rules per enforcement class.
type EnforcementSummary struct {
	OnChainRules  int `json:"on_chain_rules"`
	OffChainRules int `json:"off_chain_rules"`
	HybridRules   int `json:"hybrid_rules"`
}

// AuditGenerator produces the audit manifest.
type AuditGenerator struct{}

func NewAuditGenerator() *AuditGenerator { return &AuditGenerator{} }

// Generate builds the manifest. The timestamp and manifest id are taken
// from the arguments so output stays reproducible under test; artifacts
// is the list of generated filenames the manifest accounts for.
func (g *AuditGenerator) Generate(s *spec.Specification, now time.Time, id uuid.UUID, artifacts []string) (*Manifest, error) {
	rules := Classify(s)
	onChain, offChain, hybrid := CountByClass(rules)

	checks := make([]string, 0, len(rules))
	for _, r := range rules {
		checks = append(checks, r.Name)
	}
	if artifacts == nil {
		artifacts = []string{}
	}

	m := &Manifest{
		ManifestID: id.String(),
		ComplianceFramework: FrameworkInfo{
			Version:      s.Version,
			Jurisdiction: s.Metadata.Jurisdiction,
			Framework:    s.Metadata.RegulationFramework,
			GeneratedAt:  now.UTC().Format(time.RFC3339),
		},
		EnforcementSummary: EnforcementSummary{
			OnChainRules:  onChain,
			OffChainRules: offChain,
			HybridRules:   hybrid,
		},
		ModulesImplemented: s.ModuleNames(),
		ComplianceChecks:   checks,
		GeneratedArtifacts: artifacts,
	}

	hash, err := manifestHash(m)
	if err != nil {
		return nil, err
	}
	m.ContentHash = hash
	return m, nil
}

// CanonicalJSON returns the RFC 8785 canonical form of the manifest.
func (m *Manifest) CanonicalJSON() ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return jcs.Transform(raw)
}

// ToJSON returns pretty-printed JSON for the written artifact.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// manifestHash hashes the canonical form of the manifest with the hash
// field itself left empty.
func manifestHash(m *Manifest) (string, error) {
	unhashed := *m
	unhashed.ContentHash = ""
	canonical, err := unhashed.CanonicalJSON()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
