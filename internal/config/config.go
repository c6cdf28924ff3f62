package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/graphql-cli/pkg/schema"
)

// FileNames are the config file names looked up in each directory, in order.
var FileNames = []string{".graphqlconfig", ".graphqlconfig.yml", ".graphqlconfig.yaml"}

// ErrConfigNotFound is returned when no config file exists in the directory
// or any of its parents.
var ErrConfigNotFound = errors.New("graphql config not found")

//go:embed graphqlconfig.schema.json
var configSchema []byte

// Error is a configuration problem the user has to fix.
type Error struct {
	Path string
	Msg  string
}

func (e *Error) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return e.Path + ": " + e.Msg
}

type ProjectConfig struct {
	SchemaPath string     `yaml:"schemaPath,omitempty"`
	Includes   []string   `yaml:"includes,omitempty"`
	Excludes   []string   `yaml:"excludes,omitempty"`
	Extensions Extensions `yaml:"extensions,omitempty"`
}

type Extensions struct {
	Endpoints map[string]EndpointConfig `yaml:"endpoints,omitempty"`
}

// EndpointConfig is an endpoint entry: either a bare URL or a mapping with
// url and headers.
type EndpointConfig struct {
	URL     string            `yaml:"url"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

func (e *EndpointConfig) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.URL = node.Value
		return nil
	}
	type plain EndpointConfig
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*e = EndpointConfig(p)
	return nil
}

type File struct {
	Path     string
	Root     ProjectConfig
	Projects map[string]ProjectConfig
}

type rawFile struct {
	ProjectConfig `yaml:",inline"`
	Projects      map[string]ProjectConfig `yaml:"projects,omitempty"`
}

// Find walks up from dir and returns the first config file found.
func Find(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	for cur := abs; ; {
		for _, name := range FileNames {
			p := filepath.Join(cur, name)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("%w: no .graphqlconfig file in %s or parent directories", ErrConfigNotFound, abs)
		}
		cur = parent
	}
}

// LoadConfig reads, validates and decodes the config file at path.
func LoadConfig(path string) (*File, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config %s: %w", path, err)
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, abs)
		}
		return nil, fmt.Errorf("read config %s: %w", abs, err)
	}
	doc, err := decodeDocument(abs, raw)
	if err != nil {
		return nil, err
	}
	if err := validateDocument(abs, doc); err != nil {
		return nil, err
	}

	// Normalize through YAML so both formats decode with the same tags.
	norm, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize config %s: %w", abs, err)
	}
	var rf rawFile
	if err := yaml.Unmarshal(norm, &rf); err != nil {
		return nil, &Error{Path: abs, Msg: fmt.Sprintf("parse config: %v", err)}
	}
	return &File{Path: abs, Root: rf.ProjectConfig, Projects: rf.Projects}, nil
}

func (f *File) Dir() string { return filepath.Dir(f.Path) }

// Project selects a project: the named one, else the root when it defines a
// schemaPath, else the only project.
func (f *File) Project(name string) (*Project, error) {
	if name != "" {
		pc, ok := f.Projects[name]
		if !ok {
			return nil, &Error{Path: f.Path, Msg: fmt.Sprintf("%q is not a valid project name. Valid project names: %s", name, strings.Join(sortedKeys(f.Projects), ", "))}
		}
		return &Project{Name: name, ConfigPath: f.Path, cfg: pc}, nil
	}
	if f.Root.SchemaPath != "" || len(f.Projects) == 0 {
		return &Project{ConfigPath: f.Path, cfg: f.Root}, nil
	}
	if len(f.Projects) == 1 {
		for n, pc := range f.Projects {
			return &Project{Name: n, ConfigPath: f.Path, cfg: pc}, nil
		}
	}
	return nil, &Error{Path: f.Path, Msg: fmt.Sprintf("project name is required. Valid project names: %s", strings.Join(sortedKeys(f.Projects), ", "))}
}

func decodeDocument(path string, raw []byte) (map[string]any, error) {
	doc := map[string]any{}
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, &Error{Path: path, Msg: fmt.Sprintf("parse config: %v", err)}
		}
	default:
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, &Error{Path: path, Msg: fmt.Sprintf("parse config: %v", err)}
		}
	}
	// A document of null or ~ decodes to a nil map.
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

var configValidator = sync.OnceValues(func() (*schema.Validator, error) {
	return schema.Compile(configSchema)
})

func validateDocument(path string, doc map[string]any) error {
	v, err := configValidator()
	if err != nil {
		return err
	}
	violations, err := v.Validate(doc)
	if err != nil {
		return err
	}
	if len(violations) == 0 {
		return nil
	}
	lines := make([]string, 0, len(violations))
	for _, vi := range violations {
		lines = append(lines, vi.String())
	}
	return &Error{Path: path, Msg: "invalid config:\n  " + strings.Join(lines, "\n  ")}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
