package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/cli"
	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/manifest"
	"mercator-hq/confkit/pkg/telemetry/logging"
	"mercator-hq/confkit/pkg/telemetry/metrics"
	"mercator-hq/confkit/pkg/telemetry/tracing"
)

// app holds what a command needs after the manifest has been read.
type app struct {
	manifest  *manifest.Manifest
	logger    *slog.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
	ctx       context.Context

	// opts are the loader options of the last load.
	opts config.Options
}

// loadManifest reads the manifest and applies environment and flag
// overrides. With optional set, a missing manifest file, given by flag or
// not, yields an empty one instead of an error.
func loadManifest(optional bool) (*manifest.Manifest, error) {
	settings, err := manifest.LoadSettings()
	if err != nil {
		return nil, err
	}

	path := manifestPath
	if path == "" {
		path = settings.Manifest
	}

	m, err := manifest.Load(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			m = &manifest.Manifest{}
			manifest.ApplyDefaults(m)
		} else {
			return nil, err
		}
	}

	settings.Apply(m)
	if profile != "" {
		m.Profile = profile
	}
	if logLevel != "" {
		m.Logging.Level = logLevel
	}
	if logFormat != "" {
		m.Logging.Format = logFormat
	}
	return m, nil
}

// newApp loads the manifest and builds the logger. withMetrics creates a
// Prometheus collector even when the manifest leaves metrics disabled.
func newApp(cmd *cobra.Command, optional, withMetrics bool) (*app, error) {
	m, err := loadManifest(optional)
	if err != nil {
		return nil, err
	}

	logger, err := m.Logger(cmd.ErrOrStderr())
	if err != nil {
		return nil, cli.NewUsageError("%v", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	tracer, err := m.Tracer(Version)
	if err != nil {
		return nil, err
	}

	a := &app{
		manifest: m,
		logger:   logger,
		tracer:   tracer,
		ctx:      logging.WithCommand(ctx, cmd.Name()),
	}
	if withMetrics || m.Metrics.Enabled {
		a.collector = metrics.NewCollector(metrics.Config{
			Enabled:   true,
			Namespace: m.Metrics.Namespace,
		}, nil)
	}
	return a, nil
}

// close flushes pending spans.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to flush traces", "error", err)
	}
}

// options converts the manifest into loader options.
func (a *app) options() (config.Options, error) {
	deps := manifest.Deps{Logger: a.logger, Tracer: a.tracer.Tracer()}
	if a.collector != nil {
		deps.Metrics = a.collector
	}
	return a.manifest.Options(deps)
}

// load runs the pipeline once.
func (a *app) load() (*config.Config, error) {
	opts, err := a.options()
	if err != nil {
		return nil, err
	}
	a.opts = opts
	cfg, err := config.Load(a.ctx, opts)
	if err != nil {
		return nil, err
	}
	a.ctx = logging.WithProfile(a.ctx, cfg.Profile())
	a.logger.DebugContext(a.ctx, "configuration loaded", "keys", len(cfg.All().Leaves()))
	return cfg, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return cli.NewUsageError("%s expects %d argument(s), got %d", cmd.Name(), n, len(args))
		}
		return nil
	}
}

func outputFormatter(format string) (cli.Formatter, error) {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return cli.NewFormatter(f)
}

var errNoKey = fmt.Errorf("no encryption key: pass --key, set %sENCRYPTION_KEY or configure encryption.key_file", config.KeyEnvPrefix)
