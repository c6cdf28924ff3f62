package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ogulcanaydogan/graphql-cli/internal/config"
	"github.com/ogulcanaydogan/graphql-cli/internal/introspection"
	"github.com/ogulcanaydogan/graphql-cli/internal/metrics"
	"github.com/ogulcanaydogan/graphql-cli/internal/schemasync"
	"github.com/ogulcanaydogan/graphql-cli/internal/status"
	"github.com/ogulcanaydogan/graphql-cli/internal/watch"
)

const (
	ExitError  = 1
	ExitConfig = 2
)

type cliError struct {
	code int
	err  error
}

func (e cliError) Error() string { return e.err.Error() }

func (e cliError) Unwrap() error { return e.err }

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		var ce cliError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ce.err)
			os.Exit(ce.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitError)
	}
}

var sleepFunc watch.SleepFunc = watch.Sleep

var newReporter = func(out io.Writer) watch.Reporter {
	return status.New(os.Stderr, out)
}

type rootOptions struct {
	configPath string
	project    string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "graphql",
		Short:         "GraphQL project CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default: discovered from the working directory)")
	root.PersistentFlags().StringVarP(&opts.project, "project", "p", "", "project name")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "write debug logs to stderr")

	root.AddCommand(newGetRawSchemaCommand(opts))
	root.AddCommand(newAddEndpointCommand(opts))
	return root
}

func newGetRawSchemaCommand(opts *rootOptions) *cobra.Command {
	var watchMode bool
	var timeout, interval time.Duration
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "get-raw-schema [endpoint]",
		Short: "Download the schema by introspection and save the raw result as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), opts.verbose)
			project, err := loadProject(opts)
			if err != nil {
				return commandError(err)
			}
			wd, err := os.Getwd()
			if err != nil {
				return commandError(err)
			}
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			logger.Debug("project loaded", "config", project.ConfigPath, "project", project.Name, "schema_path", project.SchemaPath())

			wf := &schemasync.Workflow{
				Config:       projectConfig{Project: project, client: introspection.NewClient(timeout)},
				EndpointName: name,
				WorkDir:      wd,
				Logger:       logger,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			if !watchMode {
				_, err := wf.Update(ctx, func(line string) { fmt.Fprintln(out, line) })
				return commandError(err)
			}

			m := metrics.New()
			if metricsAddr != "" {
				srv, err := serveMetrics(metricsAddr, m, logger)
				if err != nil {
					return commandError(err)
				}
				defer srv.Close()
			}
			loop := &watch.Loop{
				Reporter: newReporter(out),
				Interval: interval,
				Sleep:    sleepFunc,
				Cycle: func(ctx context.Context, log func(string)) (schemasync.Outcome, error) {
					start := time.Now()
					res, err := wf.Update(ctx, log)
					m.ObserveCycle(res.Outcome, err, time.Since(start), time.Now())
					return res.Outcome, err
				},
			}
			return commandError(loop.Run(ctx))
		},
	}
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "re-check the schema every interval")
	cmd.Flags().DurationVar(&timeout, "timeout", introspection.DefaultTimeout, "introspection request timeout")
	cmd.Flags().DurationVar(&interval, "interval", watch.DefaultInterval, "pause between checks in watch mode")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address in watch mode")
	return cmd
}

func newAddEndpointCommand(opts *rootOptions) *cobra.Command {
	var headers []string

	cmd := &cobra.Command{
		Use:   "add-endpoint <name> <url>",
		Short: "Add an endpoint to the project config",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hdrs, err := parseHeaders(headers)
			if err != nil {
				return err
			}
			path, err := configPathForWrite(opts)
			if err != nil {
				return commandError(err)
			}
			if err := config.AddEndpoint(path, opts.project, args[0], config.EndpointConfig{URL: args[1], Headers: hdrs}); err != nil {
				return commandError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", color.GreenString("Added endpoint %s to", args[0]), color.BlueString(path))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&headers, "header", nil, "request header as Key=Value (repeatable)")
	return cmd
}

// projectConfig adapts a config.Project to the workflow's view of it.
type projectConfig struct {
	*config.Project
	client *introspection.Client
}

func (p projectConfig) Endpoint(name string) (schemasync.Endpoint, error) {
	ep, err := p.Project.Endpoint(name, p.client)
	if err != nil {
		return nil, err
	}
	return ep, nil
}

func loadProject(opts *rootOptions) (*config.Project, error) {
	path := opts.configPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if path, err = config.Find(wd); err != nil {
			return nil, err
		}
	}
	f, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return f.Project(opts.project)
}

func configPathForWrite(opts *rootOptions) (string, error) {
	if opts.configPath != "" {
		return opts.configPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	path, err := config.Find(wd)
	if errors.Is(err, config.ErrConfigNotFound) {
		return filepath.Join(wd, config.DefaultFileName), nil
	}
	return path, err
}

func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		k, v, ok := strings.Cut(h, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, expected Key=Value", h)
		}
		out[k] = v
	}
	return out, nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func serveMetrics(addr string, m *metrics.Metrics, logger *slog.Logger) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Debug("serving metrics", "addr", ln.Addr().String())
	return srv, nil
}

// commandError maps err to an exit code. Cancellation by signal is a clean
// exit.
func commandError(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	var cfgErr *config.Error
	if errors.Is(err, config.ErrConfigNotFound) || errors.Is(err, schemasync.ErrNoEndpoints) || errors.As(err, &cfgErr) {
		return cliError{code: ExitConfig, err: err}
	}
	return cliError{code: ExitError, err: err}
}
