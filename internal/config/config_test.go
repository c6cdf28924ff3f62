package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFindWalksUpToParent(t *testing.T) {
	root := t.TempDir()
	cfg := filepath.Join(root, ".graphqlconfig.yml")
	writeFile(t, cfg, "schemaPath: schema.graphql\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got != cfg {
		t.Fatalf("Find = %q, want %q", got, cfg)
	}
}

func TestFindPrefersBareFileName(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".graphqlconfig"), `{"schemaPath":"a.graphql"}`)
	writeFile(t, filepath.Join(root, ".graphqlconfig.yml"), "schemaPath: b.graphql\n")

	got, err := Find(root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != ".graphqlconfig" {
		t.Fatalf("Find = %q", got)
	}
}

func TestFindNotFound(t *testing.T) {
	path, err := Find(t.TempDir())
	if err == nil {
		t.Skipf("config above the temp dir: %s", path)
	}
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".graphqlconfig")
	writeFile(t, path, `{
  "schemaPath": "schema.graphql",
  "extensions": {
    "endpoints": {
      "dev": "http://localhost:4000/graphql",
      "prod": {"url": "https://example.com/graphql", "headers": {"Authorization": "Bearer x"}}
    }
  }
}`)

	f, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	eps := f.Root.Extensions.Endpoints
	if eps["dev"].URL != "http://localhost:4000/graphql" {
		t.Fatalf("dev endpoint = %+v", eps["dev"])
	}
	if eps["prod"].Headers["Authorization"] != "Bearer x" {
		t.Fatalf("prod endpoint = %+v", eps["prod"])
	}
	if f.Dir() != dir {
		t.Fatalf("Dir = %q, want %q", f.Dir(), dir)
	}
}

func TestLoadYAMLProjects(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".graphqlconfig.yaml")
	writeFile(t, path, `projects:
  app:
    schemaPath: app/schema.graphql
    extensions:
      endpoints:
        default: http://localhost:4000/graphql
  db:
    schemaPath: db/schema.graphql
`)

	f, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p, err := f.Project("app")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "app", "schema.graphql"); p.SchemaPath() != want {
		t.Fatalf("SchemaPath = %q, want %q", p.SchemaPath(), want)
	}
	if !p.HasEndpoints() {
		t.Fatal("app project should have endpoints")
	}

	db, err := f.Project("db")
	if err != nil {
		t.Fatal(err)
	}
	if db.HasEndpoints() {
		t.Fatal("db project should have no endpoints")
	}
}

func TestLoadRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".graphqlconfig.yml")
	writeFile(t, path, "schemaPath: 42\nextensions:\n  endpoints:\n    dev:\n      headers: {}\n")

	_, err := LoadConfig(path)
	var cfgErr *Error
	if !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if !strings.Contains(cfgErr.Msg, "invalid config") {
		t.Fatalf("msg = %q", cfgErr.Msg)
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".graphqlconfig")
	writeFile(t, path, `{"schemaPath":`)

	var cfgErr *Error
	if _, err := LoadConfig(path); !errors.As(err, &cfgErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), ".graphqlconfig"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("err = %v, want ErrConfigNotFound", err)
	}
}

func TestProjectSelection(t *testing.T) {
	multi := &File{Path: "/x/.graphqlconfig", Projects: map[string]ProjectConfig{
		"a": {SchemaPath: "a.graphql"},
		"b": {SchemaPath: "b.graphql"},
	}}
	if _, err := multi.Project(""); err == nil {
		t.Fatal("expected error when several projects and no name")
	}
	if _, err := multi.Project("c"); err == nil || !strings.Contains(err.Error(), "a, b") {
		t.Fatalf("err = %v", err)
	}

	single := &File{Path: "/x/.graphqlconfig", Projects: map[string]ProjectConfig{
		"only": {SchemaPath: "only.graphql"},
	}}
	p, err := single.Project("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "only" {
		t.Fatalf("Name = %q", p.Name)
	}

	root := &File{Path: "/x/.graphqlconfig", Root: ProjectConfig{SchemaPath: "root.graphql"}, Projects: multi.Projects}
	p, err = root.Project("")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "" || p.SchemaPath() != filepath.Join("/x", "root.graphql") {
		t.Fatalf("project = %+v schemaPath=%q", p, p.SchemaPath())
	}
}

func TestEndpointSelection(t *testing.T) {
	p := &Project{ConfigPath: "/x/.graphqlconfig", cfg: ProjectConfig{
		Extensions: Extensions{Endpoints: map[string]EndpointConfig{
			"dev":  {URL: "http://dev/graphql"},
			"prod": {URL: "http://prod/graphql"},
		}},
	}}
	t.Setenv(EndpointNameEnv, "")

	if _, err := p.Endpoint("", nil); err == nil {
		t.Fatal("expected error without a name when several endpoints exist")
	}

	ep, err := p.Endpoint("prod", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ep.EndpointURL() != "http://prod/graphql" {
		t.Fatalf("url = %q", ep.EndpointURL())
	}

	t.Setenv(EndpointNameEnv, "dev")
	ep, err = p.Endpoint("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Name != "dev" {
		t.Fatalf("name = %q, want dev", ep.Name)
	}

	_, err = p.Endpoint("staging", nil)
	if err == nil || !strings.Contains(err.Error(), "Valid endpoint names: dev, prod") {
		t.Fatalf("err = %v", err)
	}
}

func TestEndpointSingleDefault(t *testing.T) {
	t.Setenv(EndpointNameEnv, "")
	p := &Project{cfg: ProjectConfig{Extensions: Extensions{Endpoints: map[string]EndpointConfig{
		"only": {URL: "http://only/graphql"},
	}}}}
	ep, err := p.Endpoint("", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ep.Name != "only" {
		t.Fatalf("name = %q", ep.Name)
	}
}

func TestEndpointMissingURL(t *testing.T) {
	p := &Project{cfg: ProjectConfig{Extensions: Extensions{Endpoints: map[string]EndpointConfig{
		"dev": {Headers: map[string]string{"X": "y"}},
	}}}}
	if _, err := p.Endpoint("dev", nil); err == nil || !strings.Contains(err.Error(), `"url" is required`) {
		t.Fatalf("err = %v", err)
	}
}

func TestEndpointExpandsEnv(t *testing.T) {
	t.Setenv("GQL_HOST", "api.example.com")
	t.Setenv("GQL_TOKEN", "secret")
	p := &Project{cfg: ProjectConfig{Extensions: Extensions{Endpoints: map[string]EndpointConfig{
		"dev": {
			URL:     "https://${env:GQL_HOST}/graphql",
			Headers: map[string]string{"Authorization": "Bearer ${env: GQL_TOKEN}"},
		},
	}}}}

	ep, err := p.Endpoint("dev", nil)
	if err != nil {
		t.Fatal(err)
	}
	if ep.URL != "https://api.example.com/graphql" {
		t.Fatalf("url = %q", ep.URL)
	}
	if ep.Headers["Authorization"] != "Bearer secret" {
		t.Fatalf("header = %q", ep.Headers["Authorization"])
	}
}

func TestEndpointUndefinedEnv(t *testing.T) {
	p := &Project{cfg: ProjectConfig{Extensions: Extensions{Endpoints: map[string]EndpointConfig{
		"dev": {URL: "https://${env:GQL_SURELY_UNDEFINED_VAR}/graphql"},
	}}}}
	if _, err := p.Endpoint("dev", nil); err == nil || !strings.Contains(err.Error(), "GQL_SURELY_UNDEFINED_VAR") {
		t.Fatalf("err = %v", err)
	}
}

const storedSDL = `type Query {
  b: String
  a(x: Int): Int @deprecated
}
`

func TestStoredSchemaSDLFromGraphQL(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), storedSDL)
	p := &Project{ConfigPath: filepath.Join(dir, ".graphqlconfig"), cfg: ProjectConfig{SchemaPath: "schema.graphql"}}

	got, err := p.StoredSchemaSDL()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(got, "a(") > strings.Index(got, "b:") {
		t.Fatalf("fields not sorted:\n%s", got)
	}
}

func TestStoredSchemaSDLFromJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "schema.graphql"), storedSDL)
	writeFile(t, filepath.Join(dir, "schema.json"), `{"data":{"__schema":{
  "queryType":{"name":"Query"},"mutationType":null,"subscriptionType":null,
  "types":[{"kind":"OBJECT","name":"Query","fields":[
    {"name":"b","args":[],"type":{"kind":"SCALAR","name":"String"},"isDeprecated":false},
    {"name":"a","args":[{"name":"x","type":{"kind":"SCALAR","name":"Int"}}],"type":{"kind":"SCALAR","name":"Int"},"isDeprecated":true,"deprecationReason":"No longer supported"}
  ],"interfaces":[]},
  {"kind":"SCALAR","name":"String"},{"kind":"SCALAR","name":"Int"}],
  "directives":[]}}}`)

	fromSDL := &Project{ConfigPath: filepath.Join(dir, ".graphqlconfig"), cfg: ProjectConfig{SchemaPath: "schema.graphql"}}
	fromJSON := &Project{ConfigPath: filepath.Join(dir, ".graphqlconfig"), cfg: ProjectConfig{SchemaPath: "schema.json"}}

	a, err := fromSDL.StoredSchemaSDL()
	if err != nil {
		t.Fatal(err)
	}
	b, err := fromJSON.StoredSchemaSDL()
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("canonical SDL differs:\nsdl:\n%s\njson:\n%s", a, b)
	}
}

func TestStoredSchemaSDLMissingFile(t *testing.T) {
	p := &Project{ConfigPath: filepath.Join(t.TempDir(), ".graphqlconfig"), cfg: ProjectConfig{SchemaPath: "nope.graphql"}}
	if _, err := p.StoredSchemaSDL(); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestLoadNullDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".graphqlconfig")
	writeFile(t, path, "null")

	f, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	p, err := f.Project("")
	if err != nil {
		t.Fatal(err)
	}
	if p.HasEndpoints() {
		t.Fatal("empty document should have no endpoints")
	}
}
