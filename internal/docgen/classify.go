// Package docgen renders the human-readable artifacts: the policy
// document and the audit manifest. Both consume one shared rule
// classification so their enforcement counts can never disagree.
package docgen

import (
	"fmt"
	"strings"

	"guardrail/internal/spec"
)

// Class is the enforcement class of a compliance rule.
type Class string

const (
	// ClassOnChain marks rules with a direct, mechanical contract check.
	ClassOnChain Class = "ON-CHAIN"
	// ClassOffChain marks rules requiring human or process action with
	// no contract enforcement.
	ClassOffChain Class = "OFF-CHAIN"
	// ClassHybrid marks rules gating an on-chain action whose underlying
	// truth is established off-chain.
	ClassHybrid Class = "HYBRID"
)

// Rule is one classified compliance rule derived from the specification.
type Rule struct {
	Name   string
	Class  Class
	Detail string
}

// Classify derives the rule list from field presence in the token_sale
// module. Order is fixed so both document generators emit stable output.
// Accreditation is HYBRID only when a KYC threshold gives it an on-chain
// gate to hang off; otherwise it is purely procedural.
func Classify(s *spec.Specification) []Rule {
	ts, ok := s.TokenSale()
	if !ok {
		return nil
	}

	var rules []Rule
	add := func(name string, class Class, detail string) {
		rules = append(rules, Rule{Name: name, Class: class, Detail: detail})
	}

	if ts.MaxCapUSD != nil {
		add("Maximum cap enforcement", ClassOnChain,
			fmt.Sprintf("total contributions refused beyond $%d", *ts.MaxCapUSD))
	}
	if ts.StartDate != "" || ts.EndDate != "" {
		add("Sale window enforcement", ClassOnChain,
			saleWindowDetail(ts.StartDate, ts.EndDate))
	}
	if len(ts.Blocklist) > 0 {
		add("Blocked jurisdiction screening", ClassOnChain,
			"contributions refused from: "+strings.Join(ts.Blocklist, ", "))
	}
	if ts.MinInvestmentUSD != nil {
		add("Minimum investment", ClassOnChain,
			fmt.Sprintf("contributions below $%d refused", *ts.MinInvestmentUSD))
	}
	if ts.MaxInvestmentUSD != nil {
		add("Maximum investment per participant", ClassOnChain,
			fmt.Sprintf("cumulative contributions above $%d refused", *ts.MaxInvestmentUSD))
	}
	if ts.LockupDays != nil && *ts.LockupDays > 0 {
		add("Token lockup", ClassOnChain,
			fmt.Sprintf("%d-day lockup recorded at contribution time", *ts.LockupDays))
	}

	if len(ts.Whitelist) > 0 {
		add("Approved jurisdiction allowlist", ClassHybrid,
			"membership maintained off-chain, checked on-chain: "+strings.Join(ts.Whitelist, ", "))
	}
	if ts.KYCThresholdUSD != nil {
		add("KYC verification above threshold", ClassHybrid,
			fmt.Sprintf("oracle-attested verification required at cumulative $%d", *ts.KYCThresholdUSD))
	}
	if ts.AccreditedOnly != nil && *ts.AccreditedOnly {
		if ts.KYCThresholdUSD != nil {
			add("Accredited investor verification", ClassHybrid,
				"accreditation established off-chain, gated through the verification record")
		} else {
			add("Accredited investor verification", ClassOffChain,
				"accreditation checked during onboarding; no contract enforcement")
		}
	}

	if ts.AMLRequired != nil && *ts.AMLRequired {
		add("AML screening", ClassOffChain, "anti-money-laundering checks run by the sale operator")
	}
	if ts.SelfAttestationThresholdUSD != nil {
		add("Self-attestation below threshold", ClassOffChain,
			fmt.Sprintf("self-attestation accepted under $%d", *ts.SelfAttestationThresholdUSD))
	}
	if len(ts.RequiredDisclosures) > 0 {
		add("Required disclosures", ClassOffChain,
			strings.Join(ts.RequiredDisclosures, "; "))
	}
	if len(ts.UtilityRequirements) > 0 {
		add("Utility requirements", ClassOffChain,
			strings.Join(ts.UtilityRequirements, "; "))
	}
	if ts.TokenClassification != "" {
		add("Token classification", ClassOffChain,
			"classified as: "+ts.TokenClassification)
	}

	return rules
}

// CountByClass tallies rules per enforcement class.
func CountByClass(rules []Rule) (onChain, offChain, hybrid int) {
	for _, r := range rules {
		switch r.Class {
		case ClassOnChain:
			onChain++
		case ClassOffChain:
			offChain++
		case ClassHybrid:
			hybrid++
		}
	}
	return
}

func saleWindowDetail(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("contributions accepted from %s to %s", start, end)
	case start != "":
		return fmt.Sprintf("contributions accepted from %s (end defaulted)", start)
	default:
		return fmt.Sprintf("contributions accepted until %s (start defaulted)", end)
	}
}
