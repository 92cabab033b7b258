package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"guardrail/internal/artifact"
	"guardrail/internal/cli"
	"guardrail/internal/compiler"
	"guardrail/internal/registry"
	"guardrail/internal/spec"
	"guardrail/internal/validator"
)

// Exit codes: 0 success, 1 validation or generation failure, 2 usage
// error, 3 specification file missing.
const (
	exitOK         = 0
	exitFailure    = 1
	exitUsage      = 2
	exitSpecAbsent = 3
)

const defaultSpecPath = "guardrail.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run orchestrates the full execution flow. It returns an exit code and
// is separated from main() to enable testing.
func run(args []string, stdout, stderr io.Writer) int {
	cmd, err := cli.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}

	switch cmd.Subcommand {
	case cli.SubcommandInit:
		return runInit(cmd, stdout, stderr)
	case cli.SubcommandLint:
		return runLint(cmd, stdout, stderr)
	case cli.SubcommandCompile:
		return runCompile(cmd, stdout, stderr)
	case cli.SubcommandExportAudit:
		return runExportAudit(cmd, stdout, stderr)
	case cli.SubcommandTemplates:
		return runTemplates(cmd, stdout, stderr)
	}

	fmt.Fprintln(stderr, "Error:", cli.ErrNoSubcommand)
	return exitUsage
}

func runInit(cmd cli.Command, stdout, stderr io.Writer) int {
	outPath := cmd.OutPath
	if outPath == "" {
		outPath = defaultSpecPath
	}

	if _, err := os.Stat(outPath); err == nil && !cmd.Force {
		fmt.Fprintf(stderr, "Error: %s already exists (use --force to overwrite)\n", outPath)
		return exitFailure
	}

	var s *spec.Specification
	if cmd.Template != "" {
		reg := registry.NewEmbedded(nil)
		loaded, err := reg.Get(cmd.Template)
		if err != nil {
			fmt.Fprintln(stderr, "Error:", err)
			return exitFailure
		}
		s = loaded
	} else {
		s = scaffold()
	}

	content, err := s.ToYAML()
	if err != nil {
		fmt.Fprintln(stderr, "Error: cannot serialize specification:", err)
		return exitFailure
	}
	if err := os.WriteFile(outPath, content, 0644); err != nil {
		fmt.Fprintln(stderr, "Error: cannot write specification:", err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "Wrote %s\n", outPath)
	return exitOK
}

func runLint(cmd cli.Command, stdout, stderr io.Writer) int {
	s, code := loadSpec(cmd, stderr)
	if code != exitOK {
		return code
	}

	result := validator.Validate(s)
	if !result.Valid {
		fmt.Fprint(stderr, validator.FormatViolations(result))
		return exitFailure
	}

	fmt.Fprintln(stdout, "Specification is valid")
	return exitOK
}

func runCompile(cmd cli.Command, stdout, stderr io.Writer) int {
	s, code := loadSpec(cmd, stderr)
	if code != exitOK {
		return code
	}

	res, code := compileSpec(s, cmd, stderr)
	if code != exitOK {
		return code
	}

	outDir := cmd.OutPath
	if outDir == "" {
		outDir = "build"
	}
	if err := artifact.Write(res, outDir); err != nil {
		fmt.Fprintln(stderr, "Error: cannot write bundle:", err)
		return exitFailure
	}

	for _, name := range res.Files() {
		fmt.Fprintf(stdout, "Generated %s/%s\n", outDir, name)
	}
	return exitOK
}

func runExportAudit(cmd cli.Command, stdout, stderr io.Writer) int {
	s, code := loadSpec(cmd, stderr)
	if code != exitOK {
		return code
	}

	res, code := compileSpec(s, cmd, stderr)
	if code != exitOK {
		return code
	}

	outPath := cmd.OutPath
	if outPath == "" {
		outPath = "guardrail-audit.zip"
	}
	f, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(stderr, "Error: cannot create archive:", err)
		return exitFailure
	}
	defer f.Close()

	if err := artifact.ExportZip(res, f); err != nil {
		fmt.Fprintln(stderr, "Error: cannot export audit bundle:", err)
		return exitFailure
	}

	fmt.Fprintf(stdout, "Wrote %s\n", outPath)
	return exitOK
}

func runTemplates(cmd cli.Command, stdout, stderr io.Writer) int {
	reg := registry.NewEmbedded(nil)

	var (
		summaries []registry.Summary
		err       error
	)
	if cmd.Query != "" {
		summaries, err = reg.Search(cmd.Query)
	} else {
		summaries, err = reg.List()
	}
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitFailure
	}

	if len(summaries) == 0 {
		fmt.Fprintln(stdout, "No templates found")
		return exitOK
	}
	for _, s := range summaries {
		fmt.Fprintf(stdout, "%s\t%s\t%s\n", s.ID, s.Framework, s.Description)
	}
	return exitOK
}

// loadSpec reads the specification named by --spec (or the default
// path), distinguishing a missing file from a malformed one.
func loadSpec(cmd cli.Command, stderr io.Writer) (*spec.Specification, int) {
	path := cmd.SpecPath
	if path == "" {
		path = defaultSpecPath
	}

	s, err := spec.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stderr, "specification file not found: %s\n", path)
			return nil, exitSpecAbsent
		}
		fmt.Fprintln(stderr, "Error:", err)
		return nil, exitFailure
	}
	return s, exitOK
}

func compileSpec(s *spec.Specification, cmd cli.Command, stderr io.Writer) (*compiler.Result, int) {
	target := cmd.Blockchain
	if target == "" {
		target = "evm"
	}

	c := compiler.New()
	res, err := c.Compile(s, compiler.Options{
		Target:       target,
		WithOracle:   cmd.WithOracle,
		ContractName: cmd.ContractName,
	})
	if err != nil {
		var verr *compiler.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprint(stderr, validator.FormatViolations(verr.Result))
			return nil, exitFailure
		}
		fmt.Fprintln(stderr, "Error:", err)
		return nil, exitFailure
	}
	return res, exitOK
}

// scaffold is the minimal starting specification init writes when no
// template is chosen.
func scaffold() *spec.Specification {
	return &spec.Specification{
		Version: "1.0",
		Metadata: spec.Metadata{
			ProjectName: "My Token Sale",
			Description: "Describe the offering here.",
		},
		Modules: map[string]map[string]any{
			spec.ModuleTokenSale: {
				"max_cap_usd":       1000000,
				"kyc_threshold_usd": 1000,
				"aml_required":      true,
			},
		},
	}
}
