// Package nats provides a source plugin that reads configuration from a
// NATS JetStream key-value bucket.
//
// Every key in the bucket is a dot path. With a prefix set, only keys
// under the prefix are read and the prefix is stripped:
//
//	sources:
//	  - kind: plugin
//	    name: nats
//	    options: {url: nats://nats:4222, bucket: config, prefix: billing}
//
// maps the key billing.db.port to db.port. Values are coerced like
// environment variables.
package nats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/tree"
)

// Name is the name the plugin registers under.
const Name = "nats"

// DefaultTimeout bounds connecting and reading the bucket.
const DefaultTimeout = 5 * time.Second

var (
	// ErrBucketNotFound is returned by a Store when the bucket is missing.
	ErrBucketNotFound = errors.New("bucket not found")

	// ErrKeyNotFound is returned by Store.Get for a deleted key.
	ErrKeyNotFound = errors.New("key not found")
)

// Options are the plugin options accepted in a source definition.
type Options struct {
	URL       string        `mapstructure:"url"`
	Bucket    string        `mapstructure:"bucket"`
	Prefix    string        `mapstructure:"prefix"`
	Token     string        `mapstructure:"token"`
	TokenEnv  string        `mapstructure:"token_env"`
	CredsFile string        `mapstructure:"creds_file"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Optional  bool          `mapstructure:"optional"`
}

func (o *Options) applyDefaults() {
	if o.URL == "" {
		o.URL = natsgo.DefaultURL
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	o.Prefix = strings.TrimSuffix(o.Prefix, tree.Separator)
}

func (o *Options) validate() error {
	if o.Bucket == "" {
		return errors.New("nats: bucket is required")
	}
	return nil
}

func (o Options) uri() string {
	return fmt.Sprintf("nats://%s", o.Bucket)
}

// Store is the subset of a key-value bucket the plugin reads.
type Store interface {
	Keys(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Connector opens the bucket named in opts. The returned close function
// releases the connection.
type Connector func(ctx context.Context, opts Options, lc source.LoadContext) (Store, func(), error)

// Plugin loads configuration from NATS key-value buckets. It connects on
// every load and holds no connection between loads.
type Plugin struct {
	logger  *slog.Logger
	connect Connector
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

// WithConnector replaces the NATS connection logic.
func WithConnector(c Connector) Option {
	return func(p *Plugin) {
		if c != nil {
			p.connect = c
		}
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		connect: DefaultConnector,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "plugins.nats")
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

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	store, closeFn, err := p.connect(ctx, opts, lc)
	if err != nil {
		if errors.Is(err, ErrBucketNotFound) {
			if opts.Optional {
				p.logger.Debug("optional bucket missing", "bucket", opts.Bucket)
				return map[string]any{}, nil
			}
			return nil, &source.FileNotFoundError{Path: opts.uri()}
		}
		return nil, fmt.Errorf("failed to open %s: %w", opts.uri(), err)
	}
	defer closeFn()

	keys, err := store.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys in %s: %w", opts.uri(), err)
	}
	sort.Strings(keys)

	data := make(map[string]any)
	read := 0
	for _, key := range keys {
		path, ok := trimPrefix(key, opts.Prefix)
		if !ok {
			continue
		}
		value, err := store.Get(ctx, key)
		if errors.Is(err, ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get %s in %s: %w", key, opts.uri(), err)
		}
		tree.Set(data, path, source.Coerce(string(value)))
		read++
	}

	p.logger.Debug("loaded bucket", "bucket", opts.Bucket, "prefix", opts.Prefix, "keys", read)
	return data, nil
}

// trimPrefix strips prefix and its separator from key. An empty prefix
// matches every key. Keys outside the prefix yield "", false.
func trimPrefix(key, prefix string) (string, bool) {
	if prefix == "" {
		return key, key != ""
	}
	rest, ok := strings.CutPrefix(key, prefix+tree.Separator)
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// DefaultConnector connects with nats.go and opens the bucket through
// JetStream.
func DefaultConnector(ctx context.Context, opts Options, lc source.LoadContext) (Store, func(), error) {
	connOpts := []natsgo.Option{
		natsgo.Name("confkit"),
		natsgo.Timeout(opts.Timeout),
	}
	token := opts.Token
	if token == "" && opts.TokenEnv != "" {
		token, _ = lc.Lookup(opts.TokenEnv)
	}
	if token != "" {
		connOpts = append(connOpts, natsgo.Token(token))
	}
	if opts.CredsFile != "" {
		creds := opts.CredsFile
		if !filepath.IsAbs(creds) && lc.Cwd != "" {
			creds = filepath.Join(lc.Cwd, creds)
		}
		connOpts = append(connOpts, natsgo.UserCredentials(creds))
	}

	nc, err := natsgo.Connect(opts.URL, connOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to %s: %w", opts.URL, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	kv, err := js.KeyValue(ctx, opts.Bucket)
	if err != nil {
		nc.Close()
		if errors.Is(err, jetstream.ErrBucketNotFound) {
			return nil, nil, ErrBucketNotFound
		}
		return nil, nil, err
	}
	return &kvStore{kv: kv}, nc.Close, nil
}

type kvStore struct {
	kv jetstream.KeyValue
}

func (s *kvStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return nil, nil
	}
	return keys, err
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value(), nil
}
