// Package compiler orchestrates one compilation: semantic validation,
// contract generation for the selected target, and the two document
// generators, assembled into a single bundle. Generation never runs
// against an invalid specification, and there is no partial bundle: any
// generator failure fails the whole call.
package compiler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"guardrail/internal/codegen"
	"guardrail/internal/docgen"
	"guardrail/internal/spec"
	"guardrail/internal/validator"
)

// Options select the target and generation flags for one compile call.
type Options struct {
	Target       string
	WithOracle   bool
	ContractName string
}

// Metadata describes the provenance of a result bundle.
type Metadata struct {
	Jurisdiction string
	Target       string
	GeneratedAt  time.Time
}

// Result is the assembled output bundle: contract sources and documents
// keyed by filename. Created fresh per call.
type Result struct {
	Contracts map[string]string
	Documents map[string][]byte
	Metadata  Metadata
}

// Files returns every generated filename, contracts first, sorted within
// each group.
func (r *Result) Files() []string {
	var names []string
	for name := range r.Contracts {
		names = append(names, name)
	}
	sort.Strings(names)
	var docs []string
	for name := range r.Documents {
		docs = append(docs, name)
	}
	sort.Strings(docs)
	return append(names, docs...)
}

// ValidationError carries every semantic violation found. Compilation
// refuses to proceed while any exist.
type ValidationError struct {
	Result validator.Result
}

func (e *ValidationError) Error() string {
	msgs := validator.Messages(e.Result)
	return fmt.Sprintf("specification is invalid: %s", strings.Join(msgs, "; "))
}

// UnknownTargetError reports a target the factory has no generator for.
type UnknownTargetError struct {
	Target string
	Known  []string
}

func (e *UnknownTargetError) Error() string {
	return fmt.Sprintf("unknown target '%s' (known: %s)", e.Target, strings.Join(e.Known, ", "))
}

// Compiler wires the two factories together with an injected clock and
// id source so results are reproducible under test.
type Compiler struct {
	Contracts *codegen.Factory
	Documents *docgen.Factory
	Now       func() time.Time
	NewID     func() uuid.UUID
}

// New returns a compiler with the built-in factories and real clock.
func New() *Compiler {
	return &Compiler{
		Contracts: codegen.NewFactory(),
		Documents: docgen.NewFactory(),
		Now:       time.Now,
		NewID:     uuid.New,
	}
}

// Compile validates the specification and renders the full bundle.
func (c *Compiler) Compile(s *spec.Specification, opts Options) (*Result, error) {
	if result := validator.Validate(s); !result.Valid {
		return nil, &ValidationError{Result: result}
	}

	gen := c.Contracts.Create(opts.Target)
	if gen == nil {
		return nil, &UnknownTargetError{Target: opts.Target, Known: c.Contracts.Targets()}
	}

	now := c.Now()

	source, err := gen.Generate(s, codegen.Options{
		Now:          now,
		WithOracle:   opts.WithOracle,
		ContractName: opts.ContractName,
	})
	if err != nil {
		return nil, fmt.Errorf("contract generation for '%s': %w", opts.Target, err)
	}

	contractName := opts.ContractName
	if contractName == "" {
		contractName = codegen.DefaultContractName
	}
	contractFile := contractName + "." + gen.FileExtension()

	ctx := docgen.Context{
		Now:        now,
		ManifestID: c.NewID(),
		Artifacts:  []string{contractFile},
	}

	res := &Result{
		Contracts: map[string]string{contractFile: source},
		Documents: make(map[string][]byte),
		Metadata: Metadata{
			Jurisdiction: s.Metadata.Jurisdiction,
			Target:       opts.Target,
			GeneratedAt:  now,
		},
	}

	// Both document kinds render unconditionally.
	for _, kind := range []string{"policy", "audit"} {
		dg := c.Documents.Create(kind)
		if dg == nil {
			return nil, fmt.Errorf("document generator '%s' is not registered", kind)
		}
		doc, err := dg.Generate(s, ctx)
		if err != nil {
			return nil, fmt.Errorf("document generation for '%s': %w", kind, err)
		}
		res.Documents[doc.Name] = doc.Content
	}

	return res, nil
}
