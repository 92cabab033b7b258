package spec

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ParseError reports syntactically invalid YAML.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "invalid YAML: " + e.Err.Error() }
func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError reports a structurally invalid specification: missing
// top-level keys, malformed country codes, negative amounts, or an
// unparsable version. Structural problems are fatal at parse time; the
// semantic validator never sees them.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid specification: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid specification: %d problems: %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// structuralSchema is the JSON Schema applied to the decoded document
// before typed decoding. It owns the format checks the semantic validator
// does not repeat (country-code shape, non-negative amounts).
const structuralSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["version", "metadata", "modules"],
  "properties": {
    "version": {"type": "string"},
    "metadata": {"type": "object"},
    "modules": {
      "type": "object",
      "minProperties": 1,
      "properties": {
        "token_sale": {
          "type": "object",
          "properties": {
            "accredited_only": {"type": "boolean"},
            "aml_required": {"type": "boolean"},
            "kyc_threshold_usd": {"type": "integer", "minimum": 0},
            "max_cap_usd": {"type": "integer", "minimum": 0},
            "min_investment_usd": {"type": "integer", "minimum": 0},
            "max_investment_usd": {"type": "integer", "minimum": 0},
            "self_attestation_threshold_usd": {"type": "integer", "minimum": 0},
            "lockup_days": {"type": "integer", "minimum": 0},
            "start_date": {"type": "string"},
            "end_date": {"type": "string"},
            "blocklist": {"type": "array", "items": {"type": "string", "pattern": "^[A-Z]{2}$"}},
            "whitelist": {"type": "array", "items": {"type": "string", "pattern": "^[A-Z]{2}$"}},
            "required_disclosures": {"type": "array", "items": {"type": "string"}},
            "utility_requirements": {"type": "array", "items": {"type": "string"}},
            "token_classification": {"type": "string"}
          }
        }
      }
    }
  }
}`

var (
	compiledSchema     *jsonschema.Schema
	compileSchemaOnce  sync.Once
	compileSchemaError error
)

func structural() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		const url = "https://guardrail.schemas.local/specification.schema.json"
		if err := c.AddResource(url, strings.NewReader(structuralSchema)); err != nil {
			compileSchemaError = err
			return
		}
		compiledSchema, compileSchemaError = c.Compile(url)
	})
	return compiledSchema, compileSchemaError
}

// Parse decodes YAML into a Specification. Syntax failures return
// *ParseError; structural failures return *SchemaError.
func Parse(content []byte) (*Specification, error) {
	var doc any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, &ParseError{Err: err}
	}

	schema, err := structural()
	if err != nil {
		return nil, fmt.Errorf("compile structural schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, &SchemaError{Problems: flattenSchemaError(err)}
	}

	var s Specification
	if err := yaml.Unmarshal(content, &s); err != nil {
		return nil, &ParseError{Err: err}
	}

	if _, err := semver.NewVersion(s.Version); err != nil {
		return nil, &SchemaError{Problems: []string{
			fmt.Sprintf("version %q is not a valid <major>.<minor> version", s.Version),
		}}
	}

	return &s, nil
}

// flattenSchemaError turns the jsonschema error tree into leaf messages
// with instance locations, one per actual violation.
func flattenSchemaError(err error) []string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var leaves []string
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			leaves = append(leaves, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return leaves
}

// Load reads and parses a specification file.
func Load(path string) (*Specification, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read specification: %w", err)
	}
	return Parse(content)
}
