package sdl

import (
	"bytes"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

const DefaultDeprecationReason = "No longer supported"

// Print renders schema as canonical SDL: built-ins omitted, lists sorted by
// name, and only @deprecated kept on output fields and enum values.
func Print(schema *ast.Schema) string {
	doc := &ast.SchemaDocument{}

	if def := schemaDefinition(schema); def != nil {
		doc.Schema = ast.SchemaDefinitionList{def}
	}

	dirNames := make([]string, 0, len(schema.Directives))
	for name := range schema.Directives {
		if !IsBuiltinDirective(name) {
			dirNames = append(dirNames, name)
		}
	}
	sort.Strings(dirNames)
	for _, name := range dirNames {
		d := *schema.Directives[name]
		d.Arguments = sortedArguments(d.Arguments)
		locs := append([]ast.DirectiveLocation(nil), d.Locations...)
		sort.Slice(locs, func(i, j int) bool { return locs[i] < locs[j] })
		d.Locations = locs
		d.IsRepeatable = false
		d.Position = nil
		doc.Directives = append(doc.Directives, &d)
	}

	typeNames := make([]string, 0, len(schema.Types))
	for name := range schema.Types {
		if !IsBuiltinType(name) {
			typeNames = append(typeNames, name)
		}
	}
	sort.Strings(typeNames)
	for _, name := range typeNames {
		doc.Definitions = append(doc.Definitions, canonicalDefinition(schema.Types[name]))
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchemaDocument(doc)
	return buf.String()
}

func schemaDefinition(schema *ast.Schema) *ast.SchemaDefinition {
	roots := []struct {
		op       ast.Operation
		def      *ast.Definition
		implicit string
	}{
		{ast.Query, schema.Query, "Query"},
		{ast.Mutation, schema.Mutation, "Mutation"},
		{ast.Subscription, schema.Subscription, "Subscription"},
	}
	custom := false
	var ops ast.OperationTypeDefinitionList
	for _, r := range roots {
		if r.def == nil {
			if _, ok := schema.Types[r.implicit]; ok {
				custom = true
			}
			continue
		}
		if r.def.Name != r.implicit {
			custom = true
		}
		ops = append(ops, &ast.OperationTypeDefinition{Operation: r.op, Type: r.def.Name})
	}
	if !custom || len(ops) == 0 {
		return nil
	}
	return &ast.SchemaDefinition{OperationTypes: ops}
}

func canonicalDefinition(def *ast.Definition) *ast.Definition {
	return &ast.Definition{
		Kind:        def.Kind,
		Description: def.Description,
		Name:        def.Name,
		Interfaces:  sortedStrings(def.Interfaces),
		Fields:      sortedFields(def.Fields, def.Kind != ast.InputObject),
		Types:       sortedStrings(def.Types),
		EnumValues:  sortedEnumValues(def.EnumValues),
	}
}

func sortedStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// Introspection does not report deprecation of input fields.
func sortedFields(in ast.FieldList, keepDeprecation bool) ast.FieldList {
	out := make(ast.FieldList, 0, len(in))
	for _, f := range in {
		if IsBuiltinType(f.Name) {
			// __schema and __type are injected into the query root.
			continue
		}
		fd := &ast.FieldDefinition{
			Description:  f.Description,
			Name:         f.Name,
			Arguments:    sortedArguments(f.Arguments),
			DefaultValue: f.DefaultValue,
			Type:         f.Type,
		}
		if keepDeprecation {
			fd.Directives = deprecationOnly(f.Directives)
		}
		out = append(out, fd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedArguments(in ast.ArgumentDefinitionList) ast.ArgumentDefinitionList {
	if len(in) == 0 {
		return nil
	}
	out := make(ast.ArgumentDefinitionList, 0, len(in))
	for _, a := range in {
		out = append(out, &ast.ArgumentDefinition{
			Description:  a.Description,
			Name:         a.Name,
			DefaultValue: a.DefaultValue,
			Type:         a.Type,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedEnumValues(in ast.EnumValueList) ast.EnumValueList {
	if len(in) == 0 {
		return nil
	}
	out := make(ast.EnumValueList, 0, len(in))
	for _, v := range in {
		out = append(out, &ast.EnumValueDefinition{
			Description: v.Description,
			Name:        v.Name,
			Directives:  deprecationOnly(v.Directives),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// deprecationOnly keeps @deprecated, normalising the default reason to the
// bare form.
func deprecationOnly(in ast.DirectiveList) ast.DirectiveList {
	d := in.ForName("deprecated")
	if d == nil {
		return nil
	}
	reason := d.Arguments.ForName("reason")
	if reason == nil || reason.Value == nil || reason.Value.Raw == DefaultDeprecationReason {
		return ast.DirectiveList{{Name: "deprecated"}}
	}
	return ast.DirectiveList{{
		Name: "deprecated",
		Arguments: ast.ArgumentList{{
			Name:  "reason",
			Value: &ast.Value{Kind: ast.StringValue, Raw: reason.Value.Raw},
		}},
	}}
}
