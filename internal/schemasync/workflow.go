// Package schemasync downloads an endpoint's schema and persists the raw
// introspection result when it differs from the stored schema.
package schemasync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/ogulcanaydogan/graphql-cli/internal/hash"
	"github.com/ogulcanaydogan/graphql-cli/internal/sdl"
	"github.com/ogulcanaydogan/graphql-cli/internal/store"
)

// ErrNoEndpoints is returned when the project has no endpoints extension.
var ErrNoEndpoints = errors.New("You don't have any endpoint in your .graphqlconfig.\n" +
	"Run graphql add-endpoint to add endpoint to your config")

type Endpoint interface {
	EndpointURL() string
	ResolveSchema(ctx context.Context) (*ast.Schema, error)
	FetchIntrospection(ctx context.Context) (string, error)
}

type Config interface {
	HasEndpoints() bool
	Endpoint(name string) (Endpoint, error)
	// StoredSchemaSDL returns the canonical SDL of the schema currently on
	// disk.
	StoredSchemaSDL() (string, error)
	SchemaPath() string
}

type Outcome int

const (
	NoChange Outcome = iota
	Created
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "no_change"
	}
}

func (o Outcome) Changed() bool { return o == Created || o == Updated }

// Result describes a finished cycle. Path and Digest are empty for NoChange.
type Result struct {
	Outcome Outcome
	Path    string
	Digest  string
}

type Workflow struct {
	Config       Config
	EndpointName string
	// WorkDir is the directory output paths are reported relative to.
	WorkDir string
	Logger  *slog.Logger
}

// Update runs one cycle, reporting progress through log.
func (w *Workflow) Update(ctx context.Context, log func(string)) (Result, error) {
	logger := w.logger()
	if !w.Config.HasEndpoints() {
		return Result{}, ErrNoEndpoints
	}
	ep, err := w.Config.Endpoint(w.EndpointName)
	if err != nil {
		return Result{}, err
	}

	log(fmt.Sprintf("Downloading introspection from %s", color.BlueString(ep.EndpointURL())))
	schema, err := ep.ResolveSchema(ctx)
	if err != nil {
		return Result{}, err
	}

	if stored, ok := w.storedSDL(logger); ok && sdl.Print(schema) == stored {
		log(color.GreenString("No changes"))
		return Result{Outcome: NoChange}, nil
	}

	raw, err := ep.FetchIntrospection(ctx)
	if err != nil {
		return Result{}, err
	}

	rel, err := DerivePath(w.Config.SchemaPath(), w.WorkDir)
	if err != nil {
		return Result{}, err
	}
	target := filepath.Join(w.WorkDir, rel)

	outcome := Updated
	if prev, _, err := hash.DigestFile(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return Result{}, err
		}
		outcome = Created
	} else {
		logger.Debug("replacing schema file", "path", rel, "previous_digest", prev)
	}

	if err := store.WriteFileAtomic(target, []byte(raw), 0o644); err != nil {
		return Result{}, fmt.Errorf("write schema file: %w", err)
	}
	digest := hash.Digest([]byte(raw))
	logger.Debug("schema file written", "path", rel, "digest", digest, "bytes", len(raw))

	log(color.GreenString("Schema file was %s: ", outcome) + color.BlueString(rel))
	return Result{Outcome: outcome, Path: rel, Digest: digest}, nil
}

// storedSDL reads the baseline schema. Any failure means "no baseline".
func (w *Workflow) storedSDL(logger *slog.Logger) (string, bool) {
	stored, err := w.Config.StoredSchemaSDL()
	if err != nil {
		logger.Debug("no stored schema to compare against", "error", err)
		return "", false
	}
	return stored, true
}

func (w *Workflow) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// DerivePath returns the output path for schemaPath: its extension replaced
// by ".json", relative to workDir.
func DerivePath(schemaPath, workDir string) (string, error) {
	if schemaPath == "" {
		return "", errors.New("no schemaPath configured")
	}
	target := strings.TrimSuffix(schemaPath, filepath.Ext(schemaPath)) + ".json"
	if !filepath.IsAbs(target) {
		target = filepath.Join(workDir, target)
	}
	rel, err := filepath.Rel(workDir, target)
	if err != nil {
		return "", fmt.Errorf("relativize schema path %s: %w", target, err)
	}
	return rel, nil
}
