// Package markdownld converts Markdown-LD documents to RDF. It wires the
// document parsers, the notation scanner and the graph builder into one
// call and exposes serialization and constraint evaluation on the result.
package markdownld

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/c360studio/semweave/builder"
	"github.com/c360studio/semweave/constraint"
	"github.com/c360studio/semweave/document"
	"github.com/c360studio/semweave/metric"
	"github.com/c360studio/semweave/namespace"
	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
	"github.com/c360studio/semweave/store"
)

// IDGeneratorFunc returns a fresh reification id generator for one
// conversion. scope is unique to the document, so ids qualified with it do
// not collide when several documents share a store.
type IDGeneratorFunc func(scope string) rdf.IDGenerator

// Scope returns eight hex digits of a hash over the document identifier.
// The identifier covers both file name and content.
func Scope(doc *document.Document) string {
	return document.ContentHash([]byte(doc.ID))[:8]
}

// Converter runs the Markdown-LD pipeline. It holds no per-document state
// and is safe for concurrent use.
type Converter struct {
	parsers    *document.Registry
	namespaces *namespace.Registry
	newIDs     IDGeneratorFunc
	mode       scanner.Mode
	evaluator  *constraint.Evaluator
	logger     *slog.Logger
	metrics    *metric.Metrics
}

// Option configures a Converter.
type Option func(*Converter)

// WithNamespaces sets the registry every conversion starts from. It is
// cloned, never mutated.
func WithNamespaces(r *namespace.Registry) Option {
	return func(c *Converter) { c.namespaces = r }
}

// WithIDGenerator sets the reification id factory.
func WithIDGenerator(f IDGeneratorFunc) Option {
	return func(c *Converter) { c.newIDs = f }
}

// WithMode sets the mode documents start in.
func WithMode(m scanner.Mode) Option {
	return func(c *Converter) { c.mode = m }
}

// WithParsers sets the document parser registry.
func WithParsers(r *document.Registry) Option {
	return func(c *Converter) { c.parsers = r }
}

// WithConcurrency bounds parallel constraint queries.
func WithConcurrency(n int) Option {
	return func(c *Converter) { c.evaluator.Concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithMetrics records pipeline metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(c *Converter) { c.metrics = m }
}

// New creates a converter. Defaults: the default prefix table, a
// "stmt-<scope>-" counter per document, standard mode.
func New(opts ...Option) *Converter {
	c := &Converter{
		parsers:    document.NewRegistry(),
		namespaces: namespace.NewWithDefaults(""),
		newIDs: func(scope string) rdf.IDGenerator {
			return rdf.NewCounterGenerator(builder.DefaultIDPrefix + scope + "-")
		},
		mode:      scanner.ModeStandard,
		evaluator: &constraint.Evaluator{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.evaluator.Logger = c.logger
	c.evaluator.Metrics = c.metrics
	return c
}

// Convert parses content as filename's type and converts it. Only a parse
// failure is an error.
func (c *Converter) Convert(filename string, content []byte) (*Result, error) {
	doc, err := c.parsers.Parse(filename, content)
	if err != nil {
		c.metrics.RecordConversion(false, 0, 0)
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return c.ConvertDocument(doc), nil
}

// ConvertFile reads and converts the file at path.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	res, err := c.Convert(filepath.Base(path), content)
	if err != nil {
		return nil, err
	}
	res.Path = path
	return res, nil
}

// ConvertDocument scans and builds an already parsed document.
func (c *Converter) ConvertDocument(doc *document.Document) *Result {
	start := time.Now()

	scanned := scanner.Scan(doc, scanner.WithMode(c.mode), scanner.WithLogger(c.logger))
	built := builder.New(c.namespaces, c.newIDs(Scope(doc)), c.logger).Build(scanned.Statements)

	res := &Result{
		Document:    doc,
		Statements:  scanned.Statements,
		Diagnostics: scanned.Diagnostics,
		Mode:        scanned.Mode,
		Graph:       built.Graph,
		Entities:    built.Entities,
		Registry:    built.Registry,
		Constraints: constraint.Extract(scanned.Statements),
	}

	for _, st := range res.Statements {
		c.metrics.RecordStatement(string(st.Kind))
	}
	for _, d := range res.Diagnostics {
		c.metrics.RecordDiagnostic(string(d.Kind))
		c.logger.Warn("Skipped construct",
			"document", doc.Filename, "line", d.Line, "kind", d.Kind, "message", d.Message)
	}
	c.metrics.RecordConversion(true, res.Graph.Len(), time.Since(start))

	c.logger.Debug("Converted document",
		"document", doc.Filename,
		"statements", len(res.Statements),
		"quads", res.Graph.Len(),
		"constraints", len(res.Constraints))

	return res
}

// Validate evaluates the constraints of res against target.
func (c *Converter) Validate(ctx context.Context, target constraint.Querier, res *Result) []constraint.Result {
	return c.evaluator.Evaluate(ctx, target, res.Constraints)
}

// LoadReport summarizes a LoadInto call.
type LoadReport struct {
	Loaded []string
	Quads  int
	Failed map[string]error
}

// LoadInto converts each file and adds its graph to s. Failures are
// recorded per file; only context cancellation stops the batch.
func (c *Converter) LoadInto(ctx context.Context, s store.Store, paths ...string) (*LoadReport, error) {
	report := &LoadReport{Failed: make(map[string]error)}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		res, err := c.ConvertFile(path)
		if err != nil {
			c.logger.Warn("Failed to convert document", "path", path, "error", err)
			report.Failed[path] = err
			continue
		}
		if err := store.AddGraph(ctx, s, res.Graph); err != nil {
			c.logger.Warn("Failed to load document", "path", path, "error", err)
			report.Failed[path] = err
			continue
		}
		report.Loaded = append(report.Loaded, path)
		report.Quads += res.Graph.Len()
	}
	c.logger.Info("Loaded documents",
		"loaded", len(report.Loaded), "failed", len(report.Failed), "quads", report.Quads)
	return report, nil
}
