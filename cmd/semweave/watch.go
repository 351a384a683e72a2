package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/c360studio/semweave/export"
	"github.com/c360studio/semweave/metric"
	"github.com/c360studio/semweave/watch"
)

func watchCmd(a *app) *cobra.Command {
	var (
		format      string
		outDir      string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch DIR",
		Short: "Re-convert documents as they change",
		Long: `Convert every document under DIR, then keep converting documents that
are created or modified and remove the output of deleted ones.`,
		Args: cobra.ExactArgs(1),
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
			if outDir == "" {
				return fmt.Errorf("no output directory: pass --out or set output.dir")
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return a.watch(ctx, args[0], f, outDir, metricsAddr)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (default: config output.dir)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")

	return cmd
}

func (a *app) watch(ctx context.Context, root string, f export.Format, outDir, metricsAddr string) error {
	w, err := watch.New(root, watch.Options{
		Debounce:    a.cfg.Watch.Debounce,
		Extensions:  a.cfg.Watch.Extensions,
		ExcludeDirs: a.cfg.Watch.ExcludeDirs,
		Logger:      a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Stop()

	docs, err := w.Documents()
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}
	for _, path := range docs {
		content, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("Failed to read document", "path", path, "error", err)
			continue
		}
		w.Prime(path, content)
		a.rebuild(path, f, outDir)
	}

	g, ctx := errgroup.WithContext(ctx)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	if metricsAddr != "" {
		reg := prometheus.NewRegistry()
		if err := a.metrics.Register(reg); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
		srv := &http.Server{Addr: metricsAddr, Handler: metric.Handler(reg), ReadHeaderTimeout: 5 * time.Second}
		g.Go(func() error {
			a.logger.Info("Serving metrics", "addr", metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		for ev := range w.Events() {
			switch ev.Op {
			case watch.OpDelete:
				dest := outputPath(outDir, ev.AbsPath, f)
				if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
					a.logger.Warn("Failed to remove output", "path", dest, "error", err)
				} else {
					a.logger.Info("Removed output", "path", dest)
				}
			default:
				a.rebuild(ev.AbsPath, f, outDir)
			}
		}
		return nil
	})

	err = g.Wait()
	a.logger.Info("Watcher stopped", "dropped_events", w.Dropped())
	return err
}

// rebuild converts one document and writes its output. Failures are logged
// so one bad document does not stop the watcher.
func (a *app) rebuild(path string, f export.Format, outDir string) {
	res, err := a.converter.ConvertFile(path)
	if err != nil {
		a.logger.Warn("Failed to convert document", "path", path, "error", err)
		return
	}
	out, err := res.Serialize(f)
	if err != nil {
		a.logger.Warn("Failed to serialize document", "path", path, "error", err)
		return
	}
	dest, err := writeOutput(outDir, path, f, out)
	if err != nil {
		a.logger.Warn("Failed to write output", "path", path, "error", err)
		return
	}
	a.logger.Info("Converted document", "path", path, "output", dest, "quads", res.Graph.Len())
}
