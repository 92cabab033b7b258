// Package validator runs the cross-field semantic checks on a parsed
// specification. Structural problems are the parser's job; everything
// here is collected and returned as data so a caller can present every
// violation at once.
package validator

import (
	"fmt"
	"strings"
	"time"

	"guardrail/internal/spec"
)

// Violation is a single semantic rule failure.
type Violation struct {
	Rule    string // Stable identifier (e.g., "min_exceeds_cap")
	Message string // Human-readable description
}

// Result contains all validation outcomes for one specification.
type Result struct {
	Valid  bool
	Errors []Violation
}

// DateLayout is the ISO date form specification authors use.
const DateLayout = "2006-01-02"

// Validate checks every cross-field rule and returns all violations
// found. It never fails for semantic problems.
func Validate(s *spec.Specification) Result {
	var errs []Violation

	ts, ok := s.TokenSale()
	if ok {
		errs = append(errs, checkAmounts(ts)...)
		errs = append(errs, checkDates(ts)...)
		errs = append(errs, checkListDisjoint(ts)...)
	}

	return Result{
		Valid:  len(errs) == 0,
		Errors: errs,
	}
}

func checkAmounts(ts *spec.TokenSale) []Violation {
	var errs []Violation

	if ts.MinInvestmentUSD != nil && ts.MaxCapUSD != nil && *ts.MinInvestmentUSD > *ts.MaxCapUSD {
		errs = append(errs, Violation{
			Rule:    "min_exceeds_cap",
			Message: "Minimum investment cannot exceed maximum cap",
		})
	}
	if ts.MaxInvestmentUSD != nil && ts.MaxCapUSD != nil && *ts.MaxInvestmentUSD > *ts.MaxCapUSD {
		errs = append(errs, Violation{
			Rule:    "max_investment_exceeds_cap",
			Message: "Maximum investment cannot exceed maximum cap",
		})
	}
	if ts.KYCThresholdUSD != nil && ts.MaxCapUSD != nil && *ts.KYCThresholdUSD > *ts.MaxCapUSD {
		errs = append(errs, Violation{
			Rule:    "kyc_threshold_exceeds_cap",
			Message: "KYC threshold cannot exceed maximum cap",
		})
	}
	if ts.SelfAttestationThresholdUSD != nil && ts.KYCThresholdUSD != nil &&
		*ts.SelfAttestationThresholdUSD > *ts.KYCThresholdUSD {
		errs = append(errs, Violation{
			Rule:    "self_attestation_exceeds_kyc",
			Message: "Self-attestation threshold cannot exceed KYC threshold",
		})
	}

	return errs
}

func checkDates(ts *spec.TokenSale) []Violation {
	var errs []Violation

	start, startErr := parseDate(ts.StartDate)
	if ts.StartDate != "" && startErr != nil {
		errs = append(errs, Violation{
			Rule:    "bad_start_date",
			Message: fmt.Sprintf("start_date '%s' is not a valid ISO date", ts.StartDate),
		})
	}
	end, endErr := parseDate(ts.EndDate)
	if ts.EndDate != "" && endErr != nil {
		errs = append(errs, Violation{
			Rule:    "bad_end_date",
			Message: fmt.Sprintf("end_date '%s' is not a valid ISO date", ts.EndDate),
		})
	}

	// Ordering is strict: a zero-length sale window is invalid.
	if ts.StartDate != "" && ts.EndDate != "" && startErr == nil && endErr == nil && !start.Before(end) {
		errs = append(errs, Violation{
			Rule:    "sale_window_inverted",
			Message: fmt.Sprintf("start_date '%s' must be strictly before end_date '%s'", ts.StartDate, ts.EndDate),
		})
	}

	return errs
}

func checkListDisjoint(ts *spec.TokenSale) []Violation {
	if len(ts.Blocklist) == 0 || len(ts.Whitelist) == 0 {
		return nil
	}

	blocked := make(map[string]bool, len(ts.Blocklist))
	for _, code := range ts.Blocklist {
		blocked[code] = true
	}

	// Name every shared code, in whitelist order, once each.
	var shared []string
	seen := make(map[string]bool)
	for _, code := range ts.Whitelist {
		if blocked[code] && !seen[code] {
			shared = append(shared, code)
			seen[code] = true
		}
	}

	if len(shared) == 0 {
		return nil
	}
	return []Violation{{
		Rule:    "blocklist_whitelist_overlap",
		Message: fmt.Sprintf("blocklist and whitelist overlap: %s", strings.Join(shared, ", ")),
	}}
}

// ParseDate parses a specification date field. RFC 3339 timestamps are
// accepted as well as plain ISO dates.
func ParseDate(value string) (time.Time, error) {
	return parseDate(value)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
