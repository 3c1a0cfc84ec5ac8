// Package git provides a source plugin that reads a configuration file from
// a Git repository at a given revision.
//
// Local repositories are opened in place. Remote repositories are cloned
// into memory on every load, so the plugin suits small configuration repos.
//
// Options:
//
//	repository      local path or remote URL (required)
//	file            path of the file inside the repository (required)
//	ref             revision: branch, tag, commit or expression such as HEAD~1 (default HEAD)
//	format          json, yaml or dotenv (default: inferred from file)
//	token           HTTPS token for remote repositories
//	token_env       environment variable holding the token
//	ssh_key         private key file for SSH remotes
//	ssh_passphrase  passphrase for ssh_key
//	timeout         clone timeout (default 30s)
package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"

	"mercator-hq/confkit/pkg/plugin"
	"mercator-hq/confkit/pkg/source"
)

// Name is the name the plugin registers under.
const Name = "git"

const defaultTimeout = 30 * time.Second

// Options are the plugin options accepted in a source definition.
type Options struct {
	Repository    string        `mapstructure:"repository"`
	File          string        `mapstructure:"file"`
	Ref           string        `mapstructure:"ref"`
	Format        string        `mapstructure:"format"`
	Token         string        `mapstructure:"token"`
	TokenEnv      string        `mapstructure:"token_env"`
	SSHKey        string        `mapstructure:"ssh_key"`
	SSHPassphrase string        `mapstructure:"ssh_passphrase"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

func (o *Options) applyDefaults() {
	if o.Ref == "" {
		o.Ref = "HEAD"
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
}

func (o *Options) validate() error {
	if o.Repository == "" {
		return errors.New("git: repository is required")
	}
	if o.File == "" {
		return errors.New("git: file is required")
	}
	return nil
}

// Plugin loads a configuration file from a Git repository.
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
	p.logger = p.logger.With("component", "plugins.git")
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

	repo, err := p.open(ctx, opts, lc)
	if err != nil {
		return nil, err
	}

	hash, err := repo.ResolveRevision(plumbing.Revision(opts.Ref))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ref %q: %w", opts.Ref, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}

	file, err := commit.File(filepath.ToSlash(opts.File))
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return nil, &source.FileNotFoundError{Path: location(opts, hash)}
		}
		return nil, fmt.Errorf("failed to read %s: %w", opts.File, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", opts.File, err)
	}

	format := source.Format(opts.Format)
	if format == "" {
		format = source.FormatFromPath(opts.File)
	}
	data, err := source.Parse([]byte(contents), format)
	if err != nil {
		var pe *source.ParseError
		if errors.As(err, &pe) {
			pe.Path = location(opts, hash)
			return nil, pe
		}
		return nil, err
	}

	p.logger.Debug("loaded configuration from git",
		"repository", opts.Repository,
		"file", opts.File,
		"ref", opts.Ref,
		"commit", hash.String(),
	)
	return data, nil
}

func (p *Plugin) open(ctx context.Context, opts Options, lc source.LoadContext) (*gogit.Repository, error) {
	if !isRemote(opts.Repository) {
		path := opts.Repository
		if !filepath.IsAbs(path) {
			path = filepath.Join(lc.Cwd, path)
		}
		repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
		if err != nil {
			return nil, fmt.Errorf("failed to open repository %s: %w", path, err)
		}
		return repo, nil
	}

	auth, err := authMethod(opts, lc)
	if err != nil {
		return nil, err
	}

	cloneCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	repo, err := gogit.CloneContext(cloneCtx, memory.NewStorage(), nil, &gogit.CloneOptions{
		URL:  opts.Repository,
		Auth: auth,
		Tags: gogit.AllTags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}
	return repo, nil
}

func isRemote(repository string) bool {
	return strings.Contains(repository, "://") || strings.HasPrefix(repository, "git@")
}

func location(opts Options, hash *plumbing.Hash) string {
	return fmt.Sprintf("%s:%s@%s", opts.Repository, opts.File, hash.String()[:7])
}
