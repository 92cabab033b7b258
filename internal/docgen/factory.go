package docgen

import (
	"time"

	"github.com/google/uuid"

	"guardrail/internal/spec"
)

// Context carries the injected inputs a document generator may need:
// the clock, the manifest id, and the contract filenames already chosen
// by the orchestrator. Injected so document output is reproducible.
type Context struct {
	Now        time.Time
	ManifestID uuid.UUID
	Artifacts  []string
}

// Document is one rendered artifact.
type Document struct {
	Name    string
	Content []byte
}

// DocumentGenerator renders one document kind from a specification.
type DocumentGenerator interface {
	Kind() string
	Generate(s *spec.Specification, ctx Context) (Document, error)
}

// PolicyFilename and AuditFilename are the conventional artifact names.
const (
	PolicyFilename = "POLICY.md"
	AuditFilename  = "audit-manifest.json"
)

func (g *PolicyGenerator) Kind() string { return "policy" }

func (g *PolicyGenerator) generateDocument(s *spec.Specification, _ Context) (Document, error) {
	text, err := g.Generate(s)
	if err != nil {
		return Document{}, err
	}
	return Document{Name: PolicyFilename, Content: []byte(text)}, nil
}

func (g *AuditGenerator) Kind() string { return "audit" }

func (g *AuditGenerator) generateDocument(s *spec.Specification, ctx Context) (Document, error) {
	m, err := g.Generate(s, ctx.Now, ctx.ManifestID, ctx.Artifacts)
	if err != nil {
		return Document{}, err
	}
	content, err := m.ToJSON()
	if err != nil {
		return Document{}, err
	}
	return Document{Name: AuditFilename, Content: content}, nil
}

// policyAdapter and auditAdapter lift the typed generators into the
// DocumentGenerator interface without renaming their typed Generate
// methods.
type policyAdapter struct{ *PolicyGenerator }

func (a policyAdapter) Generate(s *spec.Specification, ctx Context) (Document, error) {
	return a.generateDocument(s, ctx)
}

type auditAdapter struct{ *AuditGenerator }

func (a auditAdapter) Generate(s *spec.Specification, ctx Context) (Document, error) {
	return a.generateDocument(s, ctx)
}

// Factory maps document kinds to generator constructors, mirroring the
// contract generator factory. Unknown kinds yield nil.
type Factory struct {
	constructors map[string]func() DocumentGenerator
}

func NewFactory() *Factory {
	f := &Factory{constructors: make(map[string]func() DocumentGenerator)}
	f.Register("policy", func() DocumentGenerator { return policyAdapter{NewPolicyGenerator()} })
	f.Register("audit", func() DocumentGenerator { return auditAdapter{NewAuditGenerator()} })
	return f
}

func (f *Factory) Register(kind string, constructor func() DocumentGenerator) {
	f.constructors[kind] = constructor
}

func (f *Factory) Create(kind string) DocumentGenerator {
	constructor, ok := f.constructors[kind]
	if !ok {
		return nil
	}
	return constructor()
}
