package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSpec = `
version: "1.0"
metadata:
  project_name: CLI Test Sale
  jurisdiction: US
  regulation_framework: Reg D
modules:
  token_sale:
    max_cap_usd: 5000000
    kyc_threshold_usd: 1000
    start_date: "2024-03-01"
    end_date: "2024-06-01"
    blocklist: ["US", "CN", "IR"]
`

const invalidSpec = `
version: "1.0"
metadata: {}
modules:
  token_sale:
    min_investment_usd: 100000
    max_cap_usd: 50000
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sale.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestUsageErrors(t *testing.T) {
	code, _, stderr := runCLI()
	assert.Equal(t, exitUsage, code)
	assert.Contains(t, stderr, "Error:")

	code, _, _ = runCLI("deploy")
	assert.Equal(t, exitUsage, code)
}

func TestLintValidSpec(t *testing.T) {
	path := writeSpec(t, validSpec)
	code, stdout, _ := runCLI("lint", "--spec", path)
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "valid")
}

func TestLintInvalidSpecListsViolations(t *testing.T) {
	path := writeSpec(t, invalidSpec)
	code, _, stderr := runCLI("lint", "--spec", path)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "1. Minimum investment cannot exceed maximum cap")
}

func TestLintMissingSpecFile(t *testing.T) {
	code, _, stderr := runCLI("lint", "--spec", filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Equal(t, exitSpecAbsent, code)
	assert.Contains(t, stderr, "not found")
}

func TestCompileWritesBundle(t *testing.T) {
	path := writeSpec(t, validSpec)
	outDir := filepath.Join(t.TempDir(), "build")

	code, stdout, stderr := runCLI("compile", "--spec", path, "--out", outDir)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Guardrail.sol")

	for _, name := range []string{"Guardrail.sol", "POLICY.md", "audit-manifest.json", "checksums.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestCompileWithOracleAndCustomName(t *testing.T) {
	path := writeSpec(t, validSpec)
	outDir := filepath.Join(t.TempDir(), "build")

	code, _, stderr := runCLI("compile", "--spec", path, "--out", outDir,
		"--with-oracle", "--contract-name", "GuardrailWithVerification")
	require.Equal(t, exitOK, code, stderr)

	content, err := os.ReadFile(filepath.Join(outDir, "GuardrailWithVerification.sol"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "setVerificationStatus")
}

func TestCompileInvalidSpecFailsBeforeWriting(t *testing.T) {
	path := writeSpec(t, invalidSpec)
	outDir := filepath.Join(t.TempDir(), "build")

	code, _, stderr := runCLI("compile", "--spec", path, "--out", outDir)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "Minimum investment cannot exceed maximum cap")

	_, err := os.Stat(outDir)
	assert.True(t, os.IsNotExist(err), "no partial bundle may be written")
}

func TestCompileUnknownTarget(t *testing.T) {
	path := writeSpec(t, validSpec)
	code, _, stderr := runCLI("compile", "--spec", path, "--blockchain", "cosmos",
		"--out", filepath.Join(t.TempDir(), "build"))
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "cosmos")
}

func TestInitScaffoldsAndRefusesOverwrite(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "guardrail.yaml")

	code, stdout, _ := runCLI("init", "--out", outPath)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, outPath)

	// Scaffold must itself lint clean.
	code, _, stderr := runCLI("lint", "--spec", outPath)
	assert.Equal(t, exitOK, code, stderr)

	code, _, stderr = runCLI("init", "--out", outPath)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "already exists")

	code, _, _ = runCLI("init", "--out", outPath, "--force")
	assert.Equal(t, exitOK, code)
}

func TestInitFromTemplate(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "guardrail.yaml")

	code, _, stderr := runCLI("init", "--out", outPath, "--template", "eu-mica-utility")
	require.Equal(t, exitOK, code, stderr)

	content, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "generated_from: eu-mica-utility")
	assert.Contains(t, string(content), "MiCA")
}

func TestInitUnknownTemplate(t *testing.T) {
	code, _, stderr := runCLI("init", "--out", filepath.Join(t.TempDir(), "g.yaml"),
		"--template", "mars-colony")
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr, "mars-colony")
}

func TestTemplatesListAndSearch(t *testing.T) {
	code, stdout, _ := runCLI("templates")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "us-token-sale")
	assert.Contains(t, stdout, "eu-mica-utility")

	code, stdout, _ = runCLI("templates", "--query", "mica")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "eu-mica-utility")
	assert.NotContains(t, stdout, "us-token-sale")

	code, stdout, _ = runCLI("templates", "--query", "no-such-thing")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout, "No templates found")
}

func TestExportAuditWritesZip(t *testing.T) {
	path := writeSpec(t, validSpec)
	zipPath := filepath.Join(t.TempDir(), "audit.zip")

	code, stdout, stderr := runCLI("export-audit", "--spec", path, "--out", zipPath)
	require.Equal(t, exitOK, code, stderr)
	assert.True(t, strings.Contains(stdout, zipPath))

	info, err := os.Stat(zipPath)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
