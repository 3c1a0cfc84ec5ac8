// Package s3 provides a source plugin that reads a configuration object from
// an S3 bucket or an S3-compatible store.
//
// Credentials come from the default AWS chain (environment, shared config,
// instance role). Setting endpoint switches to path-style addressing for
// stores such as MinIO.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/source"
)

// Name is the name the plugin registers under.
const Name = "s3"

// maxObjectSize bounds how much of an object is read.
const maxObjectSize = 10 << 20

// Options are the plugin options accepted in a source definition.
type Options struct {
	Bucket   string `mapstructure:"bucket"`
	Key      string `mapstructure:"key"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
	Format   string `mapstructure:"format"`
	Optional bool   `mapstructure:"optional"`
}

func (o *Options) validate() error {
	if o.Bucket == "" {
		return errors.New("s3: bucket is required")
	}
	if o.Key == "" {
		return errors.New("s3: key is required")
	}
	return nil
}

func (o Options) uri() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// GetObjectAPI is the subset of the S3 client the plugin uses.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// ClientFactory builds a client for the given options.
type ClientFactory func(ctx context.Context, opts Options) (GetObjectAPI, error)

// Plugin loads configuration objects from S3.
//
// Plugin is thread-safe. Clients are built once per region and endpoint
// and reused across loads.
type Plugin struct {
	logger  *slog.Logger
	factory ClientFactory

	mu      sync.Mutex
	clients map[string]GetObjectAPI
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

// WithClientFactory replaces the AWS SDK client construction.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Plugin) {
		if f != nil {
			p.factory = f
		}
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		factory: DefaultClient,
		clients: make(map[string]GetObjectAPI),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "plugins.s3")
	return p
}

// DefaultClient builds an S3 client from the default AWS configuration.
func DefaultClient(ctx context.Context, opts Options) (GetObjectAPI, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Name implements source.Plugin.
func (p *Plugin) Name() string { return Name }

// Load implements source.Plugin.
func (p *Plugin) Load(ctx context.Context, options map[string]any, _ source.LoadContext) (map[string]any, error) {
	var opts Options
	if err := plugin.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	client, err := p.client(ctx, opts)
	if err != nil {
		return nil, err
	}

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(opts.Bucket),
		Key:    aws.String(opts.Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			if opts.Optional {
				p.logger.Debug("optional object missing", "uri", opts.uri())
				return map[string]any{}, nil
			}
			return nil, &source.FileNotFoundError{Path: opts.uri()}
		}
		return nil, fmt.Errorf("failed to get %s: %w", opts.uri(), err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(io.LimitReader(out.Body, maxObjectSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.uri(), err)
	}
	if len(body) > maxObjectSize {
		return nil, fmt.Errorf("object %s exceeds %d bytes", opts.uri(), maxObjectSize)
	}

	format := source.Format(opts.Format)
	if format == "" {
		format = source.FormatFromPath(opts.Key)
	}
	data, err := source.Parse(body, format)
	if err != nil {
		var pe *source.ParseError
		if errors.As(err, &pe) {
			pe.Path = opts.uri()
			return nil, pe
		}
		return nil, err
	}

	p.logger.Debug("loaded configuration object",
		"uri", opts.uri(),
		"etag", aws.ToString(out.ETag),
		"bytes", len(body),
	)
	return data, nil
}

func (p *Plugin) client(ctx context.Context, opts Options) (GetObjectAPI, error) {
	key := opts.Region + "|" + opts.Endpoint

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[key]; ok {
		return c, nil
	}
	c, err := p.factory(ctx, opts)
	if err != nil {
		return nil, err
	}
	p.clients[key] = c
	return c, nil
}
