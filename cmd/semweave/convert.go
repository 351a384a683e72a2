package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/markdownld"
)

func convertCmd(a *app) *cobra.Command {
	var (
		format      string
		outDir      string
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "convert [files|dirs|globs...]",
		Short: "Convert Markdown-LD documents to RDF",
		Long: `Convert Markdown-LD documents to Turtle, JSON-LD or N-Quads.

Without --out the serialized graphs are written to stdout in input order.
With --out each document is written to DIR/<name><ext>.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				format = a.cfg.Output.Format
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = a.cfg.Output.Dir
			}
			paths, err := expandInputs(args)
			if err != nil {
				return err
			}
			return a.convertAll(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), paths, f, outDir, concurrency)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format ("+strings.Join(export.Formats(), ", ")+")")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: stdout)")
	cmd.Flags().IntVarP(&concurrency, "jobs", "j", 4, "Documents converted in parallel")

	return cmd
}

// convertAll converts paths in parallel and emits results in input order.
func (a *app) convertAll(ctx context.Context, stdout, stderr io.Writer, paths []string, f export.Format, outDir string, jobs int) error {
	results := make([]*markdownld.Result, len(paths))
	rendered := make([]string, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := a.converter.ConvertFile(path)
			if err != nil {
				return err
			}
			out, err := res.Serialize(f)
			if err != nil {
				return fmt.Errorf("serialize %s: %w", path, err)
			}
			results[i] = res
			rendered[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, res := range results {
		printDiagnostics(stderr, paths[i], res)
		if outDir == "" {
			if _, err := io.WriteString(stdout, rendered[i]); err != nil {
				return err
			}
			continue
		}
		dest, err := writeOutput(outDir, paths[i], f, rendered[i])
		if err != nil {
			return err
		}
		a.logger.Info("Converted document", "path", paths[i], "output", dest, "quads", res.Graph.Len())
	}
	return nil
}

// outputPath maps a source document to its output file.
func outputPath(outDir, src string, f export.Format) string {
	info, _ := export.GetFormatInfo(f)
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	return filepath.Join(outDir, base+info.Extension)
}

func writeOutput(outDir, src string, f export.Format, content string) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	dest := outputPath(outDir, src, f)
	if err := os.WriteFile(dest, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

func printDiagnostics(w io.Writer, path string, res *markdownld.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "warning: %s: %s\n", path, d.String())
	}
}
