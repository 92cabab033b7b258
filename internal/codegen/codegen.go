// Package codegen renders on-chain guardrail source from a validated
// specification. Generators are pure: output depends only on the
// specification and the options, including the injected clock, so two
// runs over identical input are byte-identical.
package codegen

import (
	"fmt"
	"time"

	"guardrail/internal/spec"
	"guardrail/internal/validator"
)

// DefaultContractName is the conventional name for the generated
// contract when the caller does not choose one.
const DefaultContractName = "Guardrail"

// defaultWindow is the synthesized sale duration when the specification
// gives no explicit dates.
const defaultWindow = 365 * 24 * time.Hour

// Options control one generation run.
type Options struct {
	// Now anchors the default sale window when the specification omits
	// dates. Injected rather than read from the system clock so output
	// is reproducible.
	Now time.Time

	// WithOracle adds the verification-status record, the oracle-only
	// writer guard, and the KYC gate to the generated contract.
	WithOracle bool

	// ContractName overrides DefaultContractName. A file-naming and
	// identifier convention only.
	ContractName string
}

func (o Options) contractName() string {
	if o.ContractName != "" {
		return o.ContractName
	}
	return DefaultContractName
}

// Generator renders contract source for one target chain.
type Generator interface {
	// Target is the identifier the factory dispatches on (e.g., "evm").
	Target() string
	// FileExtension is the extension for generated files, without dot.
	FileExtension() string
	// Generate renders the contract. It never mutates the specification.
	Generate(s *spec.Specification, opts Options) (string, error)
}

// MissingModuleError reports a specification lacking the one module
// every contract generator needs.
type MissingModuleError struct {
	Module string
}

func (e *MissingModuleError) Error() string {
	return fmt.Sprintf("specification has no '%s' module; contract generation requires it", e.Module)
}

// InvalidDateRangeError reports an explicit sale window whose end does
// not come strictly after its start. Generators reject this rather than
// silently widening: a widened window would disagree with the authored
// policy documents.
type InvalidDateRangeError struct {
	Start string
	End   string
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid sale window: end_date '%s' must be strictly after start_date '%s'", e.End, e.Start)
}

// saleParams is the chain-agnostic front end shared by all generators:
// everything extracted, defaulted, and converted once, so the per-chain
// code only does rendering.
type saleParams struct {
	ProjectName  string
	Jurisdiction string
	Framework    string

	StartUnix      int64
	EndUnix        int64
	StartDefaulted bool
	EndDefaulted   bool
	StartLabel     string // ISO form for source comments
	EndLabel       string

	Cap          uint64 // 0 = unlimited
	CapDefaulted bool

	KYCThreshold uint64 // 0 = verification gate disabled
	KYCDefaulted bool

	MinInvestment uint64 // 0 = no minimum
	MaxInvestment uint64 // 0 = no per-participant maximum
	HasMin        bool
	HasMax        bool

	LockupDays uint64
	HasLockup  bool

	AccreditedOnly bool

	Blocklist []string // specification order, preserved
	Whitelist []string
}

// extractSaleParams pulls the token_sale module out of the specification
// and applies the documented defaults.
func extractSaleParams(s *spec.Specification, opts Options) (*saleParams, error) {
	ts, ok := s.TokenSale()
	if !ok {
		return nil, &MissingModuleError{Module: spec.ModuleTokenSale}
	}

	p := &saleParams{
		ProjectName:  s.Metadata.ProjectName,
		Jurisdiction: s.Metadata.Jurisdiction,
		Framework:    s.Metadata.RegulationFramework,
		Blocklist:    ts.Blocklist,
		Whitelist:    ts.Whitelist,
	}

	if err := p.resolveWindow(ts, opts.Now); err != nil {
		return nil, err
	}

	if ts.MaxCapUSD != nil {
		p.Cap = *ts.MaxCapUSD
	} else {
		p.CapDefaulted = true
	}
	if ts.KYCThresholdUSD != nil {
		p.KYCThreshold = *ts.KYCThresholdUSD
	} else {
		p.KYCDefaulted = true
	}
	if ts.MinInvestmentUSD != nil {
		p.MinInvestment = *ts.MinInvestmentUSD
		p.HasMin = true
	}
	if ts.MaxInvestmentUSD != nil {
		p.MaxInvestment = *ts.MaxInvestmentUSD
		p.HasMax = true
	}
	if ts.LockupDays != nil && *ts.LockupDays > 0 {
		p.LockupDays = *ts.LockupDays
		p.HasLockup = true
	}
	if ts.AccreditedOnly != nil {
		p.AccreditedOnly = *ts.AccreditedOnly
	}

	return p, nil
}

// resolveWindow converts the sale dates to epoch seconds. A missing side
// is defaulted (start: now, end: start plus one year); an explicit
// inverted window is rejected.
func (p *saleParams) resolveWindow(ts *spec.TokenSale, now time.Time) error {
	var start, end time.Time

	if ts.StartDate != "" {
		t, err := validator.ParseDate(ts.StartDate)
		if err != nil {
			return fmt.Errorf("unparsable start_date '%s': %w", ts.StartDate, err)
		}
		start = t.UTC()
	} else {
		start = now.UTC()
		p.StartDefaulted = true
	}

	if ts.EndDate != "" {
		t, err := validator.ParseDate(ts.EndDate)
		if err != nil {
			return fmt.Errorf("unparsable end_date '%s': %w", ts.EndDate, err)
		}
		end = t.UTC()
	} else {
		end = start.Add(defaultWindow)
		p.EndDefaulted = true
	}

	if ts.StartDate != "" && ts.EndDate != "" && !start.Before(end) {
		return &InvalidDateRangeError{Start: ts.StartDate, End: ts.EndDate}
	}

	p.StartUnix = start.Unix()
	p.EndUnix = end.Unix()
	p.StartLabel = start.Format(time.RFC3339)
	p.EndLabel = end.Format(time.RFC3339)
	return nil
}
