package docgen

import (
	"fmt"
	"strings"

	"guardrail/internal/spec"
)

// PolicyGenerator renders the markdown policy document.
type PolicyGenerator struct{}

func NewPolicyGenerator() *PolicyGenerator { return &PolicyGenerator{} }

// Generate renders the policy document. Pure over the specification.
func (g *PolicyGenerator) Generate(s *spec.Specification) (string, error) {
	ts, _ := s.TokenSale()
	rules := Classify(s)

	var b strings.Builder

	title := s.Metadata.ProjectName
	if title == "" {
		title = "Token Sale"
	}
	fmt.Fprintf(&b, "# %s Compliance Policy\n\n", title)
	if s.Metadata.Description != "" {
		b.WriteString(s.Metadata.Description + "\n\n")
	}
	if s.Metadata.Jurisdiction != "" {
		fmt.Fprintf(&b, "**Jurisdiction:** %s  \n", s.Metadata.Jurisdiction)
	}
	if s.Metadata.RegulationFramework != "" {
		fmt.Fprintf(&b, "**Regulatory framework:** %s  \n", s.Metadata.RegulationFramework)
	}
	fmt.Fprintf(&b, "**Specification version:** %s\n\n", s.Version)

	writeSaleTerms(&b, ts)
	writeGeographic(&b, ts)
	writeVerification(&b, ts)
	writeRules(&b, rules)

	// Fixed section: the contract cannot be amended after deployment.
	b.WriteString("## On-Chain Enforcement Notice\n\n")
	b.WriteString("Rules tagged ON-CHAIN are compiled into the guardrail contract and become ")
	b.WriteString("immutable once the contract is deployed. Amending an on-chain rule requires ")
	b.WriteString("deploying a new contract and migrating the sale. OFF-CHAIN rules are operational ")
	b.WriteString("procedures with no contract enforcement. HYBRID rules gate contract behavior on ")
	b.WriteString("facts established off-chain and written by the designated oracle identity.\n")

	return b.String(), nil
}

func writeSaleTerms(b *strings.Builder, ts *spec.TokenSale) {
	b.WriteString("## Sale Terms\n\n")
	if ts == nil {
		b.WriteString("No token sale module specified.\n\n")
		return
	}

	switch {
	case ts.StartDate != "" && ts.EndDate != "":
		fmt.Fprintf(b, "- Sale window: %s through %s\n", ts.StartDate, ts.EndDate)
	case ts.StartDate != "" || ts.EndDate != "":
		fmt.Fprintf(b, "- Sale window: %s (missing side defaults at generation time)\n",
			firstNonEmpty(ts.StartDate, ts.EndDate))
	default:
		b.WriteString("- Sale window: not specified; a one-year window is applied at generation time\n")
	}

	if ts.MaxCapUSD != nil {
		fmt.Fprintf(b, "- Maximum raise: $%d\n", *ts.MaxCapUSD)
	} else {
		b.WriteString("- Maximum raise: unlimited\n")
	}
	if ts.MinInvestmentUSD != nil {
		fmt.Fprintf(b, "- Minimum investment: $%d\n", *ts.MinInvestmentUSD)
	}
	if ts.MaxInvestmentUSD != nil {
		fmt.Fprintf(b, "- Maximum investment per participant: $%d\n", *ts.MaxInvestmentUSD)
	}
	if ts.LockupDays != nil && *ts.LockupDays > 0 {
		fmt.Fprintf(b, "- Lockup: %d days from contribution\n", *ts.LockupDays)
	}
	b.WriteString("\n")
}

func writeGeographic(b *strings.Builder, ts *spec.TokenSale) {
	b.WriteString("## Geographic Restrictions\n\n")
	if ts == nil || (len(ts.Blocklist) == 0 && len(ts.Whitelist) == 0) {
		b.WriteString("None specified.\n\n")
		return
	}
	if len(ts.Blocklist) > 0 {
		fmt.Fprintf(b, "- Blocked jurisdictions: %s\n", strings.Join(ts.Blocklist, ", "))
	}
	if len(ts.Whitelist) > 0 {
		fmt.Fprintf(b, "- Allowed jurisdictions: %s\n", strings.Join(ts.Whitelist, ", "))
	}
	b.WriteString("\n")
}

func writeVerification(b *strings.Builder, ts *spec.TokenSale) {
	b.WriteString("## Participant Verification\n\n")
	if ts == nil {
		b.WriteString("None specified.\n\n")
		return
	}
	wrote := false
	if ts.KYCThresholdUSD != nil {
		fmt.Fprintf(b, "- KYC verification required once cumulative contributions reach $%d\n", *ts.KYCThresholdUSD)
		wrote = true
	}
	if ts.SelfAttestationThresholdUSD != nil {
		fmt.Fprintf(b, "- Self-attestation accepted below $%d\n", *ts.SelfAttestationThresholdUSD)
		wrote = true
	}
	if ts.AccreditedOnly != nil && *ts.AccreditedOnly {
		b.WriteString("- Participation restricted to accredited investors\n")
		wrote = true
	}
	if ts.AMLRequired != nil && *ts.AMLRequired {
		b.WriteString("- AML screening required for all participants\n")
		wrote = true
	}
	if !wrote {
		b.WriteString("None specified.\n")
	}
	b.WriteString("\n")
}

func writeRules(b *strings.Builder, rules []Rule) {
	b.WriteString("## Enforcement Summary\n\n")
	if len(rules) == 0 {
		b.WriteString("No enforceable rules derived from the specification.\n\n")
		return
	}
	for _, r := range rules {
		fmt.Fprintf(b, "- **[%s]** %s: %s\n", r.Class, r.Name, r.Detail)
	}
	b.WriteString("\n")
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
