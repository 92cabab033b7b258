package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardrail/internal/spec"
)

func saleSpec(fields map[string]any) *spec.Specification {
	return &spec.Specification{
		Version:  "1.0",
		Metadata: spec.Metadata{Jurisdiction: "US"},
		Modules:  map[string]map[string]any{spec.ModuleTokenSale: fields},
	}
}

func messages(r Result) []string { return Messages(r) }

func TestValidSpecificationHasNoErrors(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"min_investment_usd": 100,
		"max_cap_usd":        5000000,
		"start_date":         "2024-03-01",
		"end_date":           "2024-06-01",
		"blocklist":          []string{"US"},
		"whitelist":          []string{"DE", "FR"},
	}))
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
}

func TestMinimumExceedsCap(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"min_investment_usd": 100000,
		"max_cap_usd":        50000,
	}))
	require.False(t, r.Valid)
	assert.Equal(t, []string{"Minimum investment cannot exceed maximum cap"}, messages(r))
}

func TestOverlapNamesEverySharedCode(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"blocklist": []string{"US", "CN", "IR"},
		"whitelist": []string{"CN", "DE", "US"},
	}))
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 1)
	assert.Equal(t, "blocklist_whitelist_overlap", r.Errors[0].Rule)
	// Shared codes appear in whitelist order.
	assert.Contains(t, r.Errors[0].Message, "CN, US")
}

func TestSingleCodeOverlap(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"blocklist": []string{"US"},
		"whitelist": []string{"US"},
	}))
	require.False(t, r.Valid)
	assert.Contains(t, r.Errors[0].Message, "US")
}

func TestInvertedSaleWindow(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"start_date": "2024-06-01",
		"end_date":   "2024-03-01",
	}))
	require.False(t, r.Valid)
	assert.Equal(t, "sale_window_inverted", r.Errors[0].Rule)
}

func TestEqualDatesAreInvalid(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"start_date": "2024-03-01",
		"end_date":   "2024-03-01",
	}))
	assert.False(t, r.Valid)
}

func TestUnparsableDatesAreSemanticViolations(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"start_date": "March 1st",
		"end_date":   "2024-06-01",
	}))
	require.False(t, r.Valid)
	assert.Equal(t, "bad_start_date", r.Errors[0].Rule)
}

func TestAllViolationsCollected(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"min_investment_usd": 100000,
		"max_cap_usd":        50000,
		"start_date":         "2024-06-01",
		"end_date":           "2024-03-01",
		"blocklist":          []string{"US"},
		"whitelist":          []string{"US"},
	}))
	require.False(t, r.Valid)
	assert.Len(t, r.Errors, 3)
}

func TestMissingTokenSaleModuleIsValid(t *testing.T) {
	s := &spec.Specification{
		Version: "1.0",
		Modules: map[string]map[string]any{"disclosures": {"items": []string{"risks"}}},
	}
	assert.True(t, Validate(s).Valid)
}

func TestKYCThresholdAboveCap(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"kyc_threshold_usd": 200,
		"max_cap_usd":       100,
	}))
	require.False(t, r.Valid)
	assert.Equal(t, "kyc_threshold_exceeds_cap", r.Errors[0].Rule)
}

func TestSelfAttestationAboveKYCThreshold(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"self_attestation_threshold_usd": 5000,
		"kyc_threshold_usd":              1000,
	}))
	require.False(t, r.Valid)
	assert.Equal(t, "self_attestation_exceeds_kyc", r.Errors[0].Rule)
}

func TestFormatViolationsNumbersEveryError(t *testing.T) {
	r := Validate(saleSpec(map[string]any{
		"min_investment_usd": 2,
		"max_cap_usd":        1,
		"blocklist":          []string{"US"},
		"whitelist":          []string{"US"},
	}))
	out := FormatViolations(r)
	assert.Contains(t, out, "2 violation(s)")
	assert.Contains(t, out, "1. ")
	assert.Contains(t, out, "2. ")
}
