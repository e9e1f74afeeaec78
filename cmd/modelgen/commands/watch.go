package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	mgerrors "git.home.luguber.info/inful/modelgen/internal/errors"
	"git.home.luguber.info/inful/modelgen/internal/logfields"
	"git.home.luguber.info/inful/modelgen/internal/metrics"
	"git.home.luguber.info/inful/modelgen/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce    time.Duration `default:"500ms" help:"Quiet period after the last change before re-running"`
	MetricsAddr string        `name:"metrics-addr" help:"Serve Prometheus metrics on this address (e.g. :9464)"`
}

func (w *WatchCmd) Run(ctx context.Context, global *Global, root *CLI) error {
	cfg, err := loadConfig(ctx, root)
	if err != nil {
		return err
	}
	version, err := toolchainVersion(ctx, root, cfg)
	if err != nil {
		return err
	}

	var registry *prom.Registry
	if w.MetricsAddr != "" {
		registry = prom.NewRegistry()
	}
	r, err := newRunner(cfg, registry)
	if err != nil {
		return err
	}

	rerun := func(ctx context.Context) error {
		_, rep, err := r.runOnce(ctx, version)
		fmt.Fprintln(global.Out, rep.Summary())
		return err
	}
	if err := rerun(ctx); err != nil {
		slog.Error("Initial run failed; waiting for changes", logfields.Error(err))
	}

	watcher, err := watch.New(cfg.Model.SourceDirectory, w.Debounce, rerun)
	if err != nil {
		return mgerrors.Wrap(err, mgerrors.CategoryFileSystem, mgerrors.SeverityFatal, "cannot watch model sources").
			WithContext("path", cfg.Model.SourceDirectory)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return watcher.Run(gctx) })
	if registry != nil {
		g.Go(func() error { return serveMetrics(gctx, w.MetricsAddr, registry) })
	}
	return g.Wait()
}

// serveMetrics serves /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, registry *prom.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(registry))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Serving metrics", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return mgerrors.Wrap(err, mgerrors.CategoryInternal, mgerrors.SeverityFatal, "metrics server failed").
			WithContext("addr", addr)
	}
	return nil
}
