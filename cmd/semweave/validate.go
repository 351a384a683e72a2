package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/semweave/constraint"
	"github.com/c360studio/semweave/markdownld"
	"github.com/c360studio/semweave/store"
)

// errConstraintsFailed makes the command exit non-zero.
var errConstraintsFailed = errors.New("constraints failed")

func validateCmd(a *app) *cobra.Command {
	var (
		data        []string
		dbPath      string
		skipDocs    bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "validate [files|dirs|globs...]",
		Short: "Evaluate the constraints declared in documents",
		Long: `Evaluate every "SHACL Constraint" block in the given documents against a store.

The store is the configured or --db SQLite store (in-memory when unset),
extended with --data files and, unless --skip-docs, the documents' own graphs.
Exits non-zero when any violation or constraint error is reported.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if concurrency > 0 {
				a.converter = a.newConverter(concurrency)
			}

			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := a.loadData(ctx, s, data); err != nil {
				return err
			}

			var docs []*markdownld.Result
			for _, path := range paths {
				res, err := a.converter.ConvertFile(path)
				if err != nil {
					return err
				}
				printDiagnostics(cmd.ErrOrStderr(), path, res)
				if !skipDocs {
					if err := store.AddGraph(ctx, s, res.Graph); err != nil {
						return fmt.Errorf("load %s: %w", path, err)
					}
				}
				docs = append(docs, res)
			}

			return a.validate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), s, docs)
		},
	}

	cmd.Flags().StringSliceVarP(&data, "data", "d", nil, "Data files to load (.ttl, .jsonld, .nq, .md)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default: config store.path)")
	cmd.Flags().BoolVar(&skipDocs, "skip-docs", false, "Do not add the documents' own graphs to the store")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", 0, "Constraint queries run in parallel (default: config validate.concurrency)")

	return cmd
}

func (a *app) validate(ctx context.Context, stdout, stderr io.Writer, s store.Store, docs []*markdownld.Result) error {
	var total constraint.Summary
	for _, doc := range docs {
		if len(doc.Constraints) == 0 {
			continue
		}
		results := a.converter.Validate(ctx, s, doc)
		for _, r := range results {
			if r.Failed() {
				fmt.Fprintf(stderr, "warning: %s: constraint %s could not run: %v\n", doc.Path, r.ConstraintID, r.Error)
				continue
			}
			fmt.Fprintf(stdout, "%s: %s\n", doc.Path, r.String())
		}
		sum := constraint.Summarize(len(doc.Constraints), results)
		total.Constraints += sum.Constraints
		total.Violations += sum.Violations
		total.Errors += sum.Errors
	}

	fmt.Fprintf(stdout, "%d constraints, %d violations, %d errors\n",
		total.Constraints, total.Violations, total.Errors)
	if !total.OK() {
		return errConstraintsFailed
	}
	return nil
}

// loadData adds data files to s. Markdown files are converted first.
func (a *app) loadData(ctx context.Context, s store.Store, files []string) error {
	if len(files) == 0 {
		return nil
	}
	paths, err := expandInputs(files)
	if err != nil {
		return err
	}

	var docs []string
	for _, path := range paths {
		if isMarkdown(path) {
			docs = append(docs, path)
			continue
		}
		n, err := store.LoadFile(ctx, s, path)
		if err != nil {
			return err
		}
		a.logger.Debug("Loaded data", "path", path, "quads", n)
	}

	if len(docs) > 0 {
		report, err := a.converter.LoadInto(ctx, s, docs...)
		if err != nil {
			return err
		}
		var errs []error
		for path, err := range report.Failed {
			errs = append(errs, fmt.Errorf("load %s: %w", path, err))
		}
		return errors.Join(errs...)
	}
	return nil
}

func isMarkdown(path string) bool {
	p := strings.ToLower(path)
	return strings.HasSuffix(p, ".md") || strings.HasSuffix(p, ".markdown")
}
