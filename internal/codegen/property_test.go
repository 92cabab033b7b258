package codegen

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Generator output is a pure function of (specification, options): for
// any extracted sale shape, two runs agree byte for byte on both
// targets.
func TestPropertyGeneratorsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	genFields := gopter.CombineGens(
		gen.UInt64Range(0, 1_000_000_000),
		gen.UInt64Range(0, 1_000_000),
		gen.Bool(),
		gen.SliceOfN(2, gen.RegexMatch(`[A-Z][A-Z]`)),
	).Map(func(vals []interface{}) map[string]any {
		return map[string]any{
			"max_cap_usd":       vals[0].(uint64),
			"kyc_threshold_usd": vals[1].(uint64),
			"aml_required":      vals[2].(bool),
			"blocklist":         vals[3].([]string),
		}
	})

	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	properties.Property("solidity output is stable", prop.ForAll(
		func(fields map[string]any, withOracle bool) bool {
			s := saleSpec(fields)
			g := NewSolidityGenerator()
			opts := Options{Now: now, WithOracle: withOracle}
			first, err1 := g.Generate(s, opts)
			second, err2 := g.Generate(s, opts)
			return err1 == nil && err2 == nil && first == second
		},
		genFields, gen.Bool(),
	))

	properties.Property("anchor output is stable", prop.ForAll(
		func(fields map[string]any, withOracle bool) bool {
			s := saleSpec(fields)
			g := NewAnchorGenerator()
			opts := Options{Now: now, WithOracle: withOracle}
			first, err1 := g.Generate(s, opts)
			second, err2 := g.Generate(s, opts)
			return err1 == nil && err2 == nil && first == second
		},
		genFields, gen.Bool(),
	))

	properties.TestingRun(t)
}
