// Package forms validates public marketing form submissions.
package forms

import (
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const (
	TypeHypeAudit    = "hype-audit"
	TypeQuoteRequest = "quote-request"
	TypeContact      = "contact"
)

var ErrUnknownForm = errors.New("unknown form type")

//go:embed schemas/*.json
var schemaFS embed.FS

// ValidationError lists every schema violation of a submission.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid submission: " + strings.Join(e.Problems, "; ")
}

type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the embedded schema of every form type.
func NewValidator() (*Validator, error) {
	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read form schemas: %w", err)
	}

	v := &Validator{schemas: make(map[string]*gojsonschema.Schema)}
	for _, entry := range entries {
		raw, err := schemaFS.ReadFile(path.Join("schemas", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", entry.Name(), err)
		}
		v.schemas[strings.TrimSuffix(entry.Name(), ".json")] = schema
	}
	return v, nil
}

// Types returns the known form types in sorted order.
func (v *Validator) Types() []string {
	out := make([]string, 0, len(v.schemas))
	for t := range v.schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (v *Validator) Validate(formType string, payload map[string]any) error {
	schema, ok := v.schemas[formType]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownForm, formType)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return &ValidationError{Problems: problems}
	}
	return nil
}
