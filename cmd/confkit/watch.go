package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/cli"
	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/refresh"
	"mercator-hq/confkit/pkg/telemetry/health"
)

var watchFlags struct {
	metricsAddr string
	debounce    time.Duration
	schedule    string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch configuration files and reload on change",
	Long: `Load the configuration, then watch every file source and reload when one
changes. Each reload is logged with the changed paths; secrets never appear
in the output.

With --metrics-addr the Prometheus metrics are served on /metrics next to
the /healthz, /readyz and /version probes. Readiness fails while the last
reload failed or the watcher has stopped. A cron
schedule (refresh.schedule in the manifest, or --schedule) additionally
reloads sources that cannot be watched, such as plugins.

The command runs until interrupted.

Examples:
  confkit watch
  confkit watch --metrics-addr 127.0.0.1:9464 --schedule "*/5 * * * *"`,
	Args: exactArgs(0),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchFlags.metricsAddr, "metrics-addr", "", "serve metrics and probes on this address (default metrics.addr when metrics are enabled)")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 0, "quiet period before a reload (default from manifest)")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron schedule for periodic reloads (default from manifest)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, false, watchFlags.metricsAddr != "")
	if err != nil {
		return err
	}
	defer a.close()

	addr := watchFlags.metricsAddr
	if addr == "" && a.manifest.Metrics.Enabled {
		addr = a.manifest.Metrics.Addr
	}

	schedule := a.manifest.Refresh.Schedule
	if watchFlags.schedule != "" {
		schedule = watchFlags.schedule
	}
	if schedule != "" {
		if err := refresh.ValidateSchedule(schedule); err != nil {
			return cli.NewUsageError("%v", err)
		}
	}

	ctx, stop := cli.SetupSignalHandler(a.ctx)
	defer stop()
	a.ctx = ctx

	cfg, err := a.load()
	if err != nil {
		return err
	}
	checker := health.New(2 * time.Second)
	subscribe(a, cfg, checker)

	watchOpts := a.manifest.WatchOptions()
	if watchFlags.debounce > 0 {
		watchOpts.Debounce = watchFlags.debounce
	}
	if err := cfg.Watch(ctx, watchOpts); err != nil {
		return fmt.Errorf("failed to start watching: %w", err)
	}
	defer cfg.Unwatch()

	if schedule != "" {
		opts := []refresh.Option{refresh.WithLogger(a.logger)}
		if a.collector != nil {
			opts = append(opts, refresh.WithMetrics(a.collector))
		}
		if a.opts.Secrets != nil {
			opts = append(opts, refresh.WithSecrets(a.opts.Secrets))
		}
		scheduler := refresh.NewScheduler(cfg, schedule, opts...)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	var server *http.Server
	if addr != "" && a.collector != nil {
		server = &http.Server{
			Addr:              addr,
			Handler:           serverMux(a, checker),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server failed", "error", err)
			}
		}()
		a.logger.Info("serving metrics", "addr", addr)
	}

	a.logger.InfoContext(ctx, "watching configuration", "profile", cfg.Profile(), "debounce", watchOpts.Debounce)
	<-ctx.Done()
	a.logger.Info("shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop metrics server: %w", err)
		}
	}
	return nil
}

func serverMux(a *app, checker *health.Checker) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.collector.Handler())
	checker.Mount(mux, health.VersionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
	return mux
}

// subscribe logs every event and feeds the readiness checks. Only paths
// are logged, never values.
func subscribe(a *app, cfg *config.Config, checker *health.Checker) {
	var lastErr atomic.Pointer[error]
	checker.RegisterCheck("config", func(context.Context) error {
		if p := lastErr.Load(); p != nil {
			return fmt.Errorf("last reload failed: %w", *p)
		}
		return nil
	})
	checker.RegisterCheck("watcher", func(context.Context) error {
		if !cfg.Watching() {
			return errors.New("file watcher is not running")
		}
		return nil
	})

	cfg.On(config.EventChange, func(ev config.Event) {
		a.logger.InfoContext(a.ctx, "configuration changed",
			"event_id", ev.ID,
			"changed", len(ev.ChangedPaths),
			"paths", ev.ChangedPaths,
		)
	})
	cfg.On(config.EventReload, func(ev config.Event) {
		lastErr.Store(nil)
		a.logger.DebugContext(a.ctx, "configuration reloaded", "event_id", ev.ID)
	})
	cfg.On(config.EventError, func(ev config.Event) {
		err := ev.Err
		lastErr.Store(&err)
		a.logger.ErrorContext(a.ctx, "configuration reload failed",
			"event_id", ev.ID,
			"source", ev.Source,
			"error", ev.Err,
		)
	})
}
