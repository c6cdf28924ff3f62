// Package schema validates decoded documents against a JSON Schema.
package schema

import (
	"fmt"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

// Violation is one place where a document breaks the schema. Field is a
// dotted path, "(root)" for the document itself.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string { return v.Field + ": " + v.Message }

type Validator struct {
	schema *gojsonschema.Schema
}

// Compile parses schemaJSON once for repeated validation.
func Compile(schemaJSON []byte) (*Validator, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s}, nil
}

// Validate returns the violations of doc ordered by field, or nil when doc
// conforms.
func (v *Validator) Validate(doc any) ([]Violation, error) {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	out := make([]Violation, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		out = append(out, Violation{Field: e.Field(), Message: e.Description()})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out, nil
}
