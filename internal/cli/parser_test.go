package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompileWithFlags(t *testing.T) {
	cmd, err := ParseArgs([]string{
		"compile",
		"--spec", "sale.yaml",
		"--blockchain", "solana",
		"--with-oracle",
		"--out", "dist",
		"--contract-name", "SaleGuard",
	})
	require.NoError(t, err)

	assert.Equal(t, SubcommandCompile, cmd.Subcommand)
	assert.Equal(t, "sale.yaml", cmd.SpecPath)
	assert.Equal(t, "solana", cmd.Blockchain)
	assert.True(t, cmd.WithOracle)
	assert.Equal(t, "dist", cmd.OutPath)
	assert.Equal(t, "SaleGuard", cmd.ContractName)
}

func TestParseInitWithTemplate(t *testing.T) {
	cmd, err := ParseArgs([]string{"init", "--template", "us-token-sale", "--force"})
	require.NoError(t, err)
	assert.Equal(t, SubcommandInit, cmd.Subcommand)
	assert.Equal(t, "us-token-sale", cmd.Template)
	assert.True(t, cmd.Force)
}

func TestParseTemplatesWithQuery(t *testing.T) {
	cmd, err := ParseArgs([]string{"templates", "--query", "mica"})
	require.NoError(t, err)
	assert.Equal(t, SubcommandTemplates, cmd.Subcommand)
	assert.Equal(t, "mica", cmd.Query)
}

func TestParseNoArgs(t *testing.T) {
	_, err := ParseArgs(nil)
	assert.ErrorIs(t, err, ErrNoSubcommand)
}

func TestParseUnknownSubcommand(t *testing.T) {
	_, err := ParseArgs([]string{"deploy"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSubcommand))
	assert.Contains(t, err.Error(), "deploy")
}

func TestParseMissingFlagValue(t *testing.T) {
	_, err := ParseArgs([]string{"compile", "--spec"})
	assert.ErrorIs(t, err, ErrMissingFlagValue)
}

func TestParseUnknownFlag(t *testing.T) {
	_, err := ParseArgs([]string{"lint", "--verbose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--verbose")
}

func TestParseUnexpectedPositional(t *testing.T) {
	_, err := ParseArgs([]string{"lint", "extra"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extra")
}
