// Package main provides the semweave binary entry point.
// Semweave converts Markdown-LD notes into RDF and checks the
// constraints they declare against a triple store.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semweave/config"
	"github.com/c360studio/semweave/markdownld"
	"github.com/c360studio/semweave/metric"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/store"
)

const (
	// Version is the release reported by the version command.
	Version = "0.1.0"
	// BuildTime identifies the build; release builds override it.
	BuildTime = "dev"
	appName   = "semweave"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	metrics   *metric.Metrics
	converter *markdownld.Converter
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)
	a := &app{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Markdown-LD to RDF converter",
		Long: `Semweave reads Markdown notes annotated with Markdown-LD and produces RDF.

It provides:
- Conversion to Turtle, JSON-LD and N-Quads
- Constraint checking of embedded SPARQL constraints against a store
- A persistent SQLite triple store with ad-hoc SPARQL queries
- Watch mode that re-converts notes as they change`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath, logLevel)
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		convertCmd(a),
		validateCmd(a),
		loadCmd(a),
		queryCmd(a),
		jsonldToTurtleCmd(a),
		watchCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)

	return cmd
}

func (a *app) setup(configPath, logLevel string) error {
	a.logger = newLogger(logLevel)
	slog.SetDefault(a.logger)

	cfg, err := config.NewLoader(a.logger).Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	a.metrics = metric.NewMetrics()
	a.converter = a.newConverter(cfg.Validation.Concurrency)
	return nil
}

func (a *app) newConverter(concurrency int) *markdownld.Converter {
	cfg := a.cfg
	return markdownld.New(
		markdownld.WithNamespaces(cfg.Registry()),
		markdownld.WithMode(cfg.Mode()),
		markdownld.WithIDGenerator(func(scope string) rdf.IDGenerator {
			ids, err := cfg.NewIDGenerator(scope)
			if err != nil {
				return rdf.NewCounterGenerator(cfg.Reification.Prefix + scope + "-")
			}
			return ids
		}),
		markdownld.WithConcurrency(concurrency),
		markdownld.WithLogger(a.logger),
		markdownld.WithMetrics(a.metrics),
	)
}

// openStore opens the store at path, falling back to the configured one.
func (a *app) openStore(path string) (store.Store, error) {
	if path == "" {
		path = a.cfg.Store.Path
	}
	s, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return s, nil
}

func newLogger(logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
