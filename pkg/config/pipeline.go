package config

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mercator-hq/confkit/pkg/encryption"
	"mercator-hq/confkit/pkg/interpolate"
	"mercator-hq/confkit/pkg/provenance"
	"mercator-hq/confkit/pkg/secrets"
	"mercator-hq/confkit/pkg/source"
	"mercator-hq/confkit/pkg/tree"
)

// snapshot is one successful pipeline result. It is never modified after
// it is stored.
type snapshot struct {
	data       tree.Frozen
	provenance *provenance.Table
	context    source.LoadContext
	sources    []source.Source
	encrypted  []string
	loadedAt   time.Time
}

// loadContext builds the per-run loader context.
func (c *Config) loadContext() (source.LoadContext, error) {
	var env map[string]string
	if c.opts.Env != nil {
		env = maps.Clone(c.opts.Env)
	} else {
		env = source.EnvironSnapshot()
	}

	cwd := c.opts.Cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return source.LoadContext{}, fmt.Errorf("failed to determine working directory: %w", err)
		}
		cwd = wd
	}

	return source.LoadContext{
		Profile: c.opts.activeProfile(env),
		Cwd:     cwd,
		Env:     env,
	}, nil
}

// run executes the full pipeline: load, merge, interpolate, decrypt,
// validate.
func (c *Config) run(ctx context.Context) (snap *snapshot, err error) {
	ctx, span := c.tracer.Start(ctx, "confkit.load")
	defer func() { endSpan(span, err) }()

	lc, err := c.loadContext()
	if err != nil {
		return nil, err
	}
	sources := c.opts.activeSources(lc.Profile)
	span.SetAttributes(
		attribute.String("confkit.profile", lc.Profile),
		attribute.Int("confkit.sources", len(sources)),
	)

	merged := map[string]any{}
	prov := provenance.New()

	if p, ok := c.opts.Profiles[lc.Profile]; ok && len(p.Defaults) > 0 {
		defaults, _ := tree.Normalize(p.Defaults).(map[string]any)
		merged = tree.Merge(merged, defaults)
		prov.Record(defaults, "profile:"+lc.Profile, "profile")
	}

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		label := src.Resolve(lc).Label()
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("invalid source %d (%s): %w", i, label, err)
		}
		loader, err := source.LoaderFor(src.Kind, c.opts.Plugins)
		if err != nil {
			return nil, err
		}

		data, err := c.loadSource(ctx, loader, src, lc, label)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", label, err)
		}
		c.logger.Debug("loaded source", "source", label, "keys", len(data))

		merged = tree.Merge(merged, data)
		prov.Record(data, label, loader.Name())
	}

	iopts := interpolate.Options{MaxDepth: c.opts.InterpolationDepth}
	if c.opts.Secrets != nil {
		iopts.Secrets = c.opts.Secrets
	}
	expanded, err := interpolate.Interpolate(ctx, merged, lc.Env, iopts)
	if err != nil {
		return nil, fmt.Errorf("failed to interpolate configuration: %w", err)
	}

	decrypted, encrypted, err := c.decrypt(ctx, expanded, lc)
	if err != nil {
		return nil, err
	}

	validated, err := c.validate(decrypted, prov)
	if err != nil {
		return nil, err
	}
	values := 0
	tree.Walk(validated, func(string, any) { values++ })
	span.SetAttributes(
		attribute.Int("confkit.encrypted", len(encrypted)),
		attribute.Int("confkit.values", values),
	)

	return &snapshot{
		data:       tree.Freeze(validated),
		provenance: prov,
		context:    lc,
		sources:    sources,
		encrypted:  encrypted,
		loadedAt:   time.Now(),
	}, nil
}

func (c *Config) loadSource(ctx context.Context, loader source.Loader, src source.Source, lc source.LoadContext, label string) (data map[string]any, err error) {
	ctx, span := c.tracer.Start(ctx, "confkit.source", trace.WithAttributes(
		attribute.String("confkit.source", label),
		attribute.String("confkit.loader", loader.Name()),
	))
	defer func() { endSpan(span, err) }()

	data, err = loader.Load(ctx, src, lc)
	if err == nil {
		span.SetAttributes(attribute.Int("confkit.keys", len(data)))
	}
	return data, err
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// decrypt replaces envelopes with plaintext and returns the paths that were
// decrypted. Without a key the tree is returned unchanged.
func (c *Config) decrypt(ctx context.Context, data map[string]any, lc source.LoadContext) (map[string]any, []string, error) {
	if c.opts.DisableDecryption {
		return data, nil, nil
	}
	paths := encryption.EncryptedPaths(data)
	if len(paths) == 0 {
		return data, nil, nil
	}

	key, ok, err := c.encryptionKey(ctx, lc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}
	if !ok {
		c.logger.Warn("encrypted values present but no encryption key is configured",
			"count", len(paths),
			"env_var", KeyEnvPrefix+"ENCRYPTION_KEY",
		)
		return data, nil, nil
	}

	out, err := c.cipher.DecryptTree(data, key)
	if err != nil {
		return nil, nil, err
	}
	return out, paths, nil
}

// encryptionKey walks the key chain: explicit key, environment, key file,
// then the configured secrets manager.
func (c *Config) encryptionKey(ctx context.Context, lc source.LoadContext) (string, bool, error) {
	providers := []secrets.SecretProvider{
		secrets.NewStaticProvider(map[string]string{secrets.EncryptionKeyName: c.opts.EncryptionKey}),
		secrets.NewEnvProvider(KeyEnvPrefix, lc.Env),
	}
	if kf := c.opts.EncryptionKeyFile; kf != "" {
		if !filepath.IsAbs(kf) {
			kf = filepath.Join(lc.Cwd, kf)
		}
		providers = append(providers, secrets.NewKeyFileProvider(secrets.EncryptionKeyName, kf))
	}

	chain := secrets.NewManager(providers, secrets.CacheConfig{}, secrets.WithLogger(c.logger))
	key, ok, err := chain.Lookup(ctx, secrets.EncryptionKeyName)
	if err != nil || ok {
		return key, ok, err
	}
	if c.opts.Secrets != nil {
		return c.opts.Secrets.Lookup(ctx, secrets.EncryptionKeyName)
	}
	return "", false, nil
}

// validate runs the schema. Issues are attributed to their sources.
func (c *Config) validate(data map[string]any, prov *provenance.Table) (map[string]any, error) {
	if c.opts.Schema == nil {
		return data, nil
	}
	if issues := c.opts.Schema.Check(data); len(issues) > 0 {
		return nil, newValidationError(issues, prov)
	}
	out, err := c.opts.Schema.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return out, nil
}
