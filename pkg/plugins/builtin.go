package plugins

import (
	"fmt"
	"log/slog"
	"sort"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/plugins/git"
	"mercator-hq/confkit/pkg/plugins/nats"
	"mercator-hq/confkit/pkg/plugins/s3"
	"mercator-hq/confkit/pkg/plugins/sqlite"
	"mercator-hq/confkit/pkg/plugins/viper"
	"mercator-hq/confkit/pkg/source"
)

var builtins = map[string]func(*slog.Logger) source.Plugin{
	sqlite.Name: func(l *slog.Logger) source.Plugin { return sqlite.New(sqlite.WithLogger(l)) },
	git.Name:    func(l *slog.Logger) source.Plugin { return git.New(git.WithLogger(l)) },
	viper.Name:  func(l *slog.Logger) source.Plugin { return viper.New(viper.WithLogger(l)) },
	s3.Name:     func(l *slog.Logger) source.Plugin { return s3.New(s3.WithLogger(l)) },
	nats.Name:   func(l *slog.Logger) source.Plugin { return nats.New(nats.WithLogger(l)) },
}

// Names returns the bundled plugin names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin reports whether name is a bundled plugin.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

// Register adds the named bundled plugins to reg.
func Register(reg *plugin.Registry, logger *slog.Logger, names ...string) error {
	for _, name := range names {
		build, ok := builtins[name]
		if !ok {
			return fmt.Errorf("unknown built-in plugin %q", name)
		}
		reg.Register(build(logger))
	}
	return nil
}
