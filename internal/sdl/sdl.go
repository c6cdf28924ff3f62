// Package sdl holds the in-memory GraphQL schema used for change detection
// and prints it in a canonical textual form.
package sdl

import (
	"fmt"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// Parse loads SDL source into a validated schema. The gqlparser prelude
// supplies built-in scalars and directives.
func Parse(name, input string) (*ast.Schema, error) {
	schema, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: input})
	if err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", name, err)
	}
	return schema, nil
}

type preludeNames struct {
	types      map[string]bool
	directives map[string]bool
}

var prelude = sync.OnceValue(func() preludeNames {
	names := preludeNames{types: map[string]bool{}, directives: map[string]bool{}}
	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return names
	}
	for _, def := range doc.Definitions {
		names.types[def.Name] = true
	}
	for _, dir := range doc.Directives {
		names.directives[dir.Name] = true
	}
	return names
})

func IsBuiltinType(name string) bool {
	return strings.HasPrefix(name, "__") || prelude().types[name]
}

func IsBuiltinDirective(name string) bool {
	return prelude().directives[name]
}
