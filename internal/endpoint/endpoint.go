package endpoint

import (
	"context"
	"fmt"
	"net/http"

	"github.com/suessflorian/gqlfetch"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/ogulcanaydogan/graphql-cli/internal/introspection"
	"github.com/ogulcanaydogan/graphql-cli/internal/sdl"
)

type Endpoint struct {
	Name    string
	URL     string
	Headers map[string]string

	client *introspection.Client
}

func New(name, url string, headers map[string]string, client *introspection.Client) *Endpoint {
	if client == nil {
		client = introspection.NewClient(introspection.DefaultTimeout)
	}
	return &Endpoint{Name: name, URL: url, Headers: headers, client: client}
}

func (e *Endpoint) EndpointURL() string { return e.URL }

// ResolveSchema introspects the endpoint through gqlfetch and loads the
// resulting SDL. Built-ins are left to the gqlparser prelude.
func (e *Endpoint) ResolveSchema(ctx context.Context) (*ast.Schema, error) {
	if t := e.client.Timeout(); t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	src, err := gqlfetch.BuildClientSchemaWithHeaders(ctx, e.URL, e.httpHeaders(), true)
	if err != nil {
		return nil, fmt.Errorf("introspect %s: %w", e.URL, err)
	}
	return sdl.Parse(e.URL, src)
}

func (e *Endpoint) FetchIntrospection(ctx context.Context) (string, error) {
	raw, err := e.client.Fetch(ctx, e.URL, e.Headers)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (e *Endpoint) httpHeaders() http.Header {
	h := make(http.Header, len(e.Headers))
	for k, v := range e.Headers {
		h.Set(k, v)
	}
	return h
}
