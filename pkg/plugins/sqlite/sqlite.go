// Package sqlite provides a source plugin that reads configuration keys from
// a SQLite table.
//
// The table holds one row per leaf:
//
//	CREATE TABLE config (
//		key     TEXT NOT NULL,
//		value   TEXT NOT NULL,
//		profile TEXT NOT NULL DEFAULT '',
//		PRIMARY KEY (profile, key)
//	);
//
// Keys are dot paths. Values are coerced the same way environment values
// are, so "8080" becomes an integer and '["a","b"]' becomes a list. Rows with
// an empty profile apply to every profile; rows whose profile matches the
// active one are applied afterwards and win.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"time"

	_ "github.com/mattn/go-sqlite3" // cgo driver, registered as "sqlite3"
	_ "modernc.org/sqlite"          // pure Go driver, registered as "sqlite"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/tree"
)

// Name is the name the plugin registers under.
const Name = "sqlite"

const (
	// DriverPureGo selects modernc.org/sqlite.
	DriverPureGo = "sqlite"

	// DriverCGO selects github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"

	// DefaultTable is the table read when none is configured.
	DefaultTable = "config"

	defaultBusyTimeout = 5 * time.Second
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Options are the plugin options accepted in a source definition.
type Options struct {
	// Path is the database file, resolved against the load directory.
	Path string `mapstructure:"path"`

	// Driver is DriverPureGo (default) or DriverCGO.
	Driver string `mapstructure:"driver"`

	// Table is the table to read. Default: "config".
	Table string `mapstructure:"table"`

	// Optional makes a missing database file load as an empty tree.
	Optional bool `mapstructure:"optional"`

	// BusyTimeout bounds how long a read waits on a locked database.
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
}

func (o *Options) applyDefaults() {
	if o.Driver == "" {
		o.Driver = DriverPureGo
	}
	if o.Table == "" {
		o.Table = DefaultTable
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = defaultBusyTimeout
	}
}

func (o *Options) validate() error {
	if o.Path == "" {
		return errors.New("sqlite: path is required")
	}
	if o.Driver != DriverPureGo && o.Driver != DriverCGO {
		return fmt.Errorf("sqlite: unsupported driver %q (want %q or %q)", o.Driver, DriverPureGo, DriverCGO)
	}
	if !identPattern.MatchString(o.Table) {
		return fmt.Errorf("sqlite: invalid table name %q", o.Table)
	}
	return nil
}

// Plugin loads configuration from a SQLite table.
type Plugin struct {
	logger *slog.Logger
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithLogger sets the plugin logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "plugins.sqlite")
	return p
}

// Name implements source.Plugin.
func (p *Plugin) Name() string { return Name }

// Load implements source.Plugin.
func (p *Plugin) Load(ctx context.Context, options map[string]any, lc source.LoadContext) (map[string]any, error) {
	var opts Options
	if err := plugin.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	path := opts.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(lc.Cwd, path)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if opts.Optional {
				p.logger.Debug("optional database missing", "path", path)
				return map[string]any{}, nil
			}
			return nil, &source.FileNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}

	db, err := open(opts.Driver, path, opts.BusyTimeout, true)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	data, rows, err := readTable(ctx, db, opts.Table, lc.Profile)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("loaded configuration rows",
		"path", path,
		"table", opts.Table,
		"profile", lc.Profile,
		"rows", rows,
	)
	return data, nil
}

func open(driver, path string, busyTimeout time.Duration, readOnly bool) (*sql.DB, error) {
	ms := busyTimeout.Milliseconds()
	var dsn string
	switch driver {
	case DriverCGO:
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d", path, ms)
		if readOnly {
			dsn += "&mode=ro"
		}
	default:
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, ms)
		if readOnly {
			dsn += "&mode=ro"
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

func readTable(ctx context.Context, db *sql.DB, table, profile string) (map[string]any, int, error) {
	// Base rows sort before profile rows so the active profile wins.
	query := fmt.Sprintf(
		`SELECT key, value FROM %s WHERE profile = '' OR profile = ? ORDER BY profile = '' DESC, key`,
		table,
	)
	rows, err := db.QueryContext(ctx, query, profile)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	data := make(map[string]any)
	count := 0
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, 0, fmt.Errorf("failed to scan row: %w", err)
		}
		if key == "" {
			continue
		}
		tree.Set(data, key, source.Coerce(value))
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read rows: %w", err)
	}
	return data, count, nil
}
