package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guardrail/internal/spec"
)

func TestFactoryCreatesBuiltins(t *testing.T) {
	f := NewFactory()

	evm := f.Create("evm")
	require.NotNil(t, evm)
	assert.Equal(t, "sol", evm.FileExtension())

	solana := f.Create("solana")
	require.NotNil(t, solana)
	assert.Equal(t, "rs", solana.FileExtension())
}

func TestFactoryUnknownTargetIsNil(t *testing.T) {
	f := NewFactory()
	assert.Nil(t, f.Create("cosmos"))
}

func TestFactoryRegisterOverrides(t *testing.T) {
	f := NewFactory()
	f.Register("evm", func() Generator { return stubGenerator{} })

	g := f.Create("evm")
	_, ok := g.(stubGenerator)
	assert.True(t, ok)
}

func TestFactoryTargetsSorted(t *testing.T) {
	f := NewFactory()
	f.Register("aptos", func() Generator { return stubGenerator{} })
	assert.Equal(t, []string{"aptos", "evm", "solana"}, f.Targets())
}

type stubGenerator struct{}

func (stubGenerator) Target() string        { return "stub" }
func (stubGenerator) FileExtension() string { return "txt" }
func (stubGenerator) Generate(*spec.Specification, Options) (string, error) {
	return "stub", nil
}
