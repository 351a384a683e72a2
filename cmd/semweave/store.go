package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/sparql"
)

func loadCmd(a *app) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "load [files|dirs|globs...]",
		Short: "Load RDF files and Markdown-LD documents into a SQLite store",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = a.cfg.Store.Path
			}
			if dbPath == "" {
				return fmt.Errorf("no store: pass --db or set store.path")
			}
			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := a.loadData(cmd.Context(), s, args); err != nil {
				return err
			}
			n, err := s.Len(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d quads\n", dbPath, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default: config store.path)")
	return cmd
}

func queryCmd(a *app) *cobra.Command {
	var (
		data    []string
		dbPath  string
		asJSON  bool
		fromArg string
	)

	cmd := &cobra.Command{
		Use:   "query QUERY",
		Short: "Run a SPARQL SELECT or ASK query against a store",
		Long: `Run a SPARQL SELECT or ASK query. The query is the argument, or the
contents of --file. Prefixes from the default namespace table may be used
without declaring them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var query string
			switch {
			case fromArg != "":
				b, err := os.ReadFile(fromArg)
				if err != nil {
					return fmt.Errorf("read query: %w", err)
				}
				query = string(b)
			case len(args) == 1:
				query = args[0]
			default:
				return fmt.Errorf("no query given")
			}

			s, err := a.openStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := a.loadData(cmd.Context(), s, data); err != nil {
				return err
			}

			engine := sparql.Engine{Source: s, Prefixes: a.cfg.Registry().Map()}
			res, err := engine.Query(cmd.Context(), query)
			if err != nil {
				return err
			}
			if asJSON {
				return writeResultJSON(cmd.OutOrStdout(), res)
			}
			return writeResultTable(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringSliceVarP(&data, "data", "d", nil, "Data files to load first (.ttl, .jsonld, .nq, .md)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite store path (default: config store.path)")
	cmd.Flags().StringVar(&fromArg, "file", "", "Read the query from a file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}

func writeResultTable(w io.Writer, res *sparql.Result) error {
	if res.Type == sparql.QueryTypeAsk {
		_, err := fmt.Fprintln(w, res.Boolean)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Vars, "\t"))
	for _, row := range res.Bindings {
		cells := make([]string, len(res.Vars))
		for i, v := range res.Vars {
			if t, ok := row[v]; ok {
				cells[i] = t.String()
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func writeResultJSON(w io.Writer, res *sparql.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if res.Type == sparql.QueryTypeAsk {
		return enc.Encode(map[string]any{"boolean": res.Boolean})
	}
	rows := make([]map[string]string, 0, len(res.Bindings))
	for _, row := range res.Bindings {
		out := make(map[string]string, len(row))
		for v, t := range row {
			out[v] = t.String()
		}
		rows = append(rows, out)
	}
	return enc.Encode(map[string]any{"vars": res.Vars, "bindings": rows})
}

func jsonldToTurtleCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "jsonld2ttl FILE",
		Short: "Convert a JSON-LD file to Turtle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			ttl, err := export.JSONLDToTurtle(data)
			if err != nil {
				return fmt.Errorf("convert %s: %w", args[0], err)
			}
			if out == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), ttl)
				return err
			}
			if err := os.WriteFile(out, []byte(ttl), 0644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			a.logger.Info("Converted JSON-LD", "input", args[0], "output", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}
