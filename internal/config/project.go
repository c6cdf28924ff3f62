package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/suessflorian/gqlfetch"

	"github.com/ogulcanaydogan/graphql-cli/internal/endpoint"
	"github.com/ogulcanaydogan/graphql-cli/internal/introspection"
	"github.com/ogulcanaydogan/graphql-cli/internal/sdl"
)

// EndpointNameEnv selects the endpoint when none is named explicitly.
const EndpointNameEnv = "GRAPHQL_CONFIG_ENDPOINT_NAME"

var envRef = regexp.MustCompile(`\$\{\s*env:\s*([^}\s]+)\s*\}`)

type Project struct {
	// Name is empty for the root project.
	Name       string
	ConfigPath string

	cfg ProjectConfig
}

// SchemaPath returns the configured schema file, resolved against the
// config file's directory.
func (p *Project) SchemaPath() string {
	if p.cfg.SchemaPath == "" {
		return ""
	}
	if filepath.IsAbs(p.cfg.SchemaPath) {
		return p.cfg.SchemaPath
	}
	return filepath.Join(filepath.Dir(p.ConfigPath), p.cfg.SchemaPath)
}

func (p *Project) HasEndpoints() bool {
	return len(p.cfg.Extensions.Endpoints) > 0
}

func (p *Project) EndpointNames() []string {
	return sortedKeys(p.cfg.Extensions.Endpoints)
}

// Endpoint resolves an endpoint by name. An empty name falls back to
// GRAPHQL_CONFIG_ENDPOINT_NAME and then to the only endpoint configured.
// ${env:VAR} references in the url and headers are expanded.
func (p *Project) Endpoint(name string, client *introspection.Client) (*endpoint.Endpoint, error) {
	eps := p.cfg.Extensions.Endpoints
	if name == "" {
		name = os.Getenv(EndpointNameEnv)
	}
	if name == "" {
		if len(eps) != 1 {
			return nil, &Error{Path: p.ConfigPath, Msg: "you have to specify endpoint name or define " + EndpointNameEnv + " environment variable"}
		}
		for n := range eps {
			name = n
		}
	}
	ec, ok := eps[name]
	if !ok {
		return nil, &Error{Path: p.ConfigPath, Msg: fmt.Sprintf("%q is not valid endpoint name. Valid endpoint names: %s", name, strings.Join(p.EndpointNames(), ", "))}
	}
	if ec.URL == "" {
		return nil, &Error{Path: p.ConfigPath, Msg: fmt.Sprintf("\"url\" is required but is not specified for %q endpoint", name)}
	}

	url, err := expandEnv(ec.URL)
	if err != nil {
		return nil, &Error{Path: p.ConfigPath, Msg: fmt.Sprintf("endpoint %q: %v", name, err)}
	}
	headers := make(map[string]string, len(ec.Headers))
	for k, v := range ec.Headers {
		hv, err := expandEnv(v)
		if err != nil {
			return nil, &Error{Path: p.ConfigPath, Msg: fmt.Sprintf("endpoint %q header %s: %v", name, k, err)}
		}
		headers[k] = hv
	}
	return endpoint.New(name, url, headers, client), nil
}

// StoredSchemaSDL reads the schema at SchemaPath and prints it canonically.
// A .json schema is read as an introspection result, anything else as SDL.
func (p *Project) StoredSchemaSDL() (string, error) {
	path := p.SchemaPath()
	if path == "" {
		return "", &Error{Path: p.ConfigPath, Msg: "no schemaPath configured"}
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("read schema %s: %w", path, err)
	}
	var src string
	if strings.EqualFold(filepath.Ext(path), ".json") {
		out, err := gqlfetch.BuildClientSchemaFromFile(context.Background(), path, true)
		if err != nil {
			return "", fmt.Errorf("load schema %s: %w", path, err)
		}
		src = out
	} else {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read schema %s: %w", path, err)
		}
		src = string(raw)
	}
	s, err := sdl.Parse(path, src)
	if err != nil {
		return "", err
	}
	return sdl.Print(s), nil
}

func expandEnv(s string) (string, error) {
	var missing string
	out := envRef.ReplaceAllStringFunc(s, func(m string) string {
		key := envRef.FindStringSubmatch(m)[1]
		v, ok := os.LookupEnv(key)
		if !ok && missing == "" {
			missing = key
		}
		return v
	})
	if missing != "" {
		return "", fmt.Errorf("environment variable %q is not defined", missing)
	}
	return out, nil
}
