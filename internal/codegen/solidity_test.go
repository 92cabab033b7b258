package codegen

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardrail/internal/spec"
)

var testNow = time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)

func saleSpec(fields map[string]any) *spec.Specification {
	return &spec.Specification{
		Version:  "1.0",
		Metadata: spec.Metadata{ProjectName: "Test Sale", Jurisdiction: "US"},
		Modules:  map[string]map[string]any{spec.ModuleTokenSale: fields},
	}
}

func fullSaleSpec() *spec.Specification {
	return saleSpec(map[string]any{
		"max_cap_usd":       5000000,
		"kyc_threshold_usd": 1000,
		"start_date":        "2024-03-01",
		"end_date":          "2024-06-01",
		"blocklist":         []string{"US", "CN", "IR"},
	})
}

func TestSolidityRendersSaleWindowEpochs(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(fullSaleSpec(), Options{Now: testNow})
	require.NoError(t, err)

	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Unix()
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Unix()
	assert.Contains(t, source, "SALE_START = "+strconv.FormatInt(start, 10))
	assert.Contains(t, source, "SALE_END = "+strconv.FormatInt(end, 10))
}

func TestSolidityBlocklistOrderPreserved(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(fullSaleSpec(), Options{Now: testNow})
	require.NoError(t, err)

	us := strings.Index(source, `blockedJurisdiction["US"]`)
	cn := strings.Index(source, `blockedJurisdiction["CN"]`)
	ir := strings.Index(source, `blockedJurisdiction["IR"]`)
	require.True(t, us >= 0 && cn >= 0 && ir >= 0)
	assert.True(t, us < cn && cn < ir, "blocklist must render in specification order")
	assert.Equal(t, 3, strings.Count(source, "blockedJurisdiction[\"")-strings.Count(source, "if (blockedJurisdiction[\""))
}

func TestSolidityCapCheckIsStrict(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(fullSaleSpec(), Options{Now: testNow})
	require.NoError(t, err)
	assert.Contains(t, source, "totalRaisedUsd + amountUsd > MAX_CAP_USD")
	assert.Contains(t, source, "MAX_CAP_USD = 5000000")
}

func TestSolidityMissingModule(t *testing.T) {
	s := &spec.Specification{
		Version: "1.0",
		Modules: map[string]map[string]any{"disclosures": {"items": []string{"x"}}},
	}
	g := NewSolidityGenerator()
	_, err := g.Generate(s, Options{Now: testNow})
	var merr *MissingModuleError
	require.True(t, errors.As(err, &merr))
}

func TestSolidityRejectsInvertedWindow(t *testing.T) {
	g := NewSolidityGenerator()
	_, err := g.Generate(saleSpec(map[string]any{
		"start_date": "2024-06-01",
		"end_date":   "2024-03-01",
	}), Options{Now: testNow})
	var derr *InvalidDateRangeError
	require.True(t, errors.As(err, &derr))
}

func TestSolidityDefaultWindowIsOneYearFromNow(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(saleSpec(map[string]any{"max_cap_usd": 100}), Options{Now: testNow})
	require.NoError(t, err)

	assert.Contains(t, source, "SALE_START = "+strconv.FormatInt(testNow.Unix(), 10))
	assert.Contains(t, source, "SALE_END = "+strconv.FormatInt(testNow.Add(365*24*time.Hour).Unix(), 10))
	assert.Contains(t, source, "default: no start_date in specification")
	assert.Contains(t, source, "default: no end_date in specification")
}

func TestSolidityDefaultedCapIsCommented(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(saleSpec(map[string]any{"start_date": "2024-03-01", "end_date": "2024-06-01"}), Options{Now: testNow})
	require.NoError(t, err)
	assert.Contains(t, source, "MAX_CAP_USD = 0; // default: no max_cap_usd in specification")
}

func TestSolidityDeterministic(t *testing.T) {
	g := NewSolidityGenerator()
	opts := Options{Now: testNow, WithOracle: true}
	first, err := g.Generate(fullSaleSpec(), opts)
	require.NoError(t, err)
	second, err := g.Generate(fullSaleSpec(), opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSolidityOracleSection(t *testing.T) {
	g := NewSolidityGenerator()

	plain, err := g.Generate(fullSaleSpec(), Options{Now: testNow})
	require.NoError(t, err)
	assert.NotContains(t, plain, "setVerificationStatus")
	assert.NotContains(t, plain, "oracle")

	withOracle, err := g.Generate(fullSaleSpec(), Options{Now: testNow, WithOracle: true})
	require.NoError(t, err)
	assert.Contains(t, withOracle, "address public immutable oracle;")
	assert.Contains(t, withOracle, "setVerificationStatus")
	assert.Contains(t, withOracle, "msg.sender == oracle")
	assert.Contains(t, withOracle, "VerificationStatus.Approved")
	assert.Contains(t, withOracle, ">= KYC_THRESHOLD_USD")
}

func TestSolidityContractNameOption(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(fullSaleSpec(), Options{Now: testNow, ContractName: "GuardrailWithVerification"})
	require.NoError(t, err)
	assert.Contains(t, source, "contract GuardrailWithVerification {")
}

// Round-trip: the epochs embedded in the generated source match the
// input dates when both were present.
func TestSolidityWindowRoundTrip(t *testing.T) {
	g := NewSolidityGenerator()
	source, err := g.Generate(fullSaleSpec(), Options{Now: testNow})
	require.NoError(t, err)

	re := regexp.MustCompile(`SALE_START = (\d+);[\s\S]*?SALE_END = (\d+);`)
	m := re.FindStringSubmatch(source)
	require.Len(t, m, 3)

	start, _ := strconv.ParseInt(m[1], 10, 64)
	end, _ := strconv.ParseInt(m[2], 10, 64)
	assert.Equal(t, "2024-03-01", time.Unix(start, 0).UTC().Format("2006-01-02"))
	assert.Equal(t, "2024-06-01", time.Unix(end, 0).UTC().Format("2006-01-02"))
}
