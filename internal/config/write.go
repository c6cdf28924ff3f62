package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/graphql-cli/internal/store"
)

const DefaultFileName = ".graphqlconfig.yml"

const DefaultSchemaPath = "schema.graphql"

// AddEndpoint adds an endpoint to a project's endpoints extension in the
// config file at path, creating the file when it does not exist. Keys the
// CLI does not know about are preserved.
func AddEndpoint(path, project, name string, ep EndpointConfig) error {
	if name == "" || ep.URL == "" {
		return errors.New("endpoint name and url are required")
	}
	doc := map[string]any{}
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		doc, err = decodeDocument(path, raw)
		if err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		doc["schemaPath"] = DefaultSchemaPath
	default:
		return fmt.Errorf("read config %s: %w", path, err)
	}

	section, err := projectSection(path, doc, project)
	if err != nil {
		return err
	}
	endpoints := childMap(childMap(section, "extensions"), "endpoints")
	if _, exists := endpoints[name]; exists {
		return &Error{Path: path, Msg: fmt.Sprintf("endpoint %q already exists", name)}
	}
	if len(ep.Headers) == 0 {
		endpoints[name] = ep.URL
	} else {
		headers := make(map[string]any, len(ep.Headers))
		for k, v := range ep.Headers {
			headers[k] = v
		}
		endpoints[name] = map[string]any{"url": ep.URL, "headers": headers}
	}

	if err := validateDocument(path, doc); err != nil {
		return err
	}
	out, err := encodeDocument(path, doc)
	if err != nil {
		return err
	}
	return store.WriteFileAtomic(path, out, 0o644)
}

// projectSection mirrors File.Project on the raw document.
func projectSection(path string, doc map[string]any, project string) (map[string]any, error) {
	projects, _ := doc["projects"].(map[string]any)
	if project != "" {
		sec, ok := projects[project].(map[string]any)
		if !ok {
			return nil, &Error{Path: path, Msg: fmt.Sprintf("%q is not a valid project name", project)}
		}
		return sec, nil
	}
	if _, ok := doc["schemaPath"]; ok || len(projects) == 0 {
		return doc, nil
	}
	if len(projects) == 1 {
		for _, v := range projects {
			if sec, ok := v.(map[string]any); ok {
				return sec, nil
			}
		}
	}
	return nil, &Error{Path: path, Msg: "project name is required"}
}

func childMap(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

func encodeDocument(path string, doc map[string]any) ([]byte, error) {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return out, nil
	default:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return append(out, '\n'), nil
	}
}
